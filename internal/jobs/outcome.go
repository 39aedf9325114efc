// Package jobs запускает фоновые задачи синхронизации и следит,
// чтобы у каждого семейства был не больше одного активного запуска.
package jobs

import (
	"context"
	"errors"
	"net"

	"github.com/magabrotheeeer/diary-sync/internal/portal"
)

// Outcome итог одного запуска задачи.
type Outcome int

const (
	Success Outcome = iota
	Retry
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Retry:
		return "retry"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Classify сопоставляет ошибку запуска с итогом.
// Повторяются только таймауты. Ошибки авторизации требуют
// от пользователя заново ввести данные, повтор их не исправит.
func Classify(err error) Outcome {
	if err == nil {
		return Success
	}
	if portal.IsAuthError(err) {
		return Failure
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Retry
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Retry
	}
	return Failure
}
