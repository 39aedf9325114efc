package reconciler

import (
	"errors"
	"fmt"
	"strings"
)

// UnresolvedSubjectError предмет с таким названием не найден в хранилище.
// Создавать предметы может только синхронизация предметов.
type UnresolvedSubjectError struct {
	Name string
	Err  error
}

func (e *UnresolvedSubjectError) Error() string {
	return fmt.Sprintf("unresolved subject %q", e.Name)
}

func (e *UnresolvedSubjectError) Unwrap() error {
	return e.Err
}

// IsUnresolvedSubject сообщает, что ошибка вызвана неизвестным предметом.
func IsUnresolvedSubject(err error) bool {
	var target *UnresolvedSubjectError
	return errors.As(err, &target)
}

// ItemError ошибка конвертации одного элемента пакета.
type ItemError struct {
	Index int
	Err   error
}

// BatchError описывает неудачные элементы пакета.
type BatchError struct {
	Kind      string
	Total     int
	Failed    []ItemError
	Discarded bool
}

func (e *BatchError) Error() string {
	msgs := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		msgs = append(msgs, fmt.Sprintf("#%d: %v", f.Index, f.Err))
	}
	verb := "partially converted"
	if e.Discarded {
		verb = "discarded"
	}
	return fmt.Sprintf("%s batch %s: %d of %d failed: %s",
		e.Kind, verb, len(e.Failed), e.Total, strings.Join(msgs, "; "))
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f.Err)
	}
	return errs
}
