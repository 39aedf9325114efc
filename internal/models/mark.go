// Package models содержит доменные типы синхронизации с электронным дневником:
// оценки, DTO, которые производят парсеры страниц портала, и сущности,
// которые сохраняются в хранилище.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMarkToken возвращается, когда в ячейке оценки встретился токен
// вне закрытого словаря. Обычно это означает, что портал поменял вёрстку.
var ErrInvalidMarkToken = errors.New("invalid mark token")

// Mark значение оценки из журнала.
type Mark int

const (
	MarkNone Mark = iota // Оценка не выставлена
	MarkOne
	MarkTwo
	MarkThree
	MarkFour
	MarkFive
	MarkAbsent // «Н»: не был на уроке
	MarkIll    // «Б»: болел
)

const (
	tokenAbsent = "Н"
	tokenIll    = "Б"
	tokenNone   = "—"
)

var markTokens = map[string]Mark{
	"1":         MarkOne,
	"2":         MarkTwo,
	"3":         MarkThree,
	"4":         MarkFour,
	"5":         MarkFive,
	tokenAbsent: MarkAbsent,
	tokenIll:    MarkIll,
	tokenNone:   MarkNone,
	"-":         MarkNone,
	"":          MarkNone,
}

// ParseMark разбирает текст ячейки в Mark. Пустая строка и прочерк означают
// отсутствие оценки и ошибкой не считаются.
func ParseMark(token string) (Mark, error) {
	m, ok := markTokens[strings.TrimSpace(token)]
	if !ok {
		return MarkNone, fmt.Errorf("%w: %q", ErrInvalidMarkToken, token)
	}
	return m, nil
}

// IsMarkToken сообщает, входит ли токен в словарь оценок.
func IsMarkToken(token string) bool {
	_, ok := markTokens[strings.TrimSpace(token)]
	return ok
}

// String возвращает канонический токен оценки, обратный ParseMark.
func (m Mark) String() string {
	switch m {
	case MarkOne, MarkTwo, MarkThree, MarkFour, MarkFive:
		return fmt.Sprintf("%d", int(m))
	case MarkAbsent:
		return tokenAbsent
	case MarkIll:
		return tokenIll
	default:
		return tokenNone
	}
}

// Value числовое значение оценки. Для «Н», «Б» и пустой оценки возвращает 0.
func (m Mark) Value() int {
	if m >= MarkOne && m <= MarkFive {
		return int(m)
	}
	return 0
}

// IsNone сообщает, что оценка не выставлена.
func (m Mark) IsNone() bool {
	return m == MarkNone
}

// MarshalText кодирует оценку каноническим токеном.
func (m Mark) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText разбирает канонический токен.
func (m *Mark) UnmarshalText(text []byte) error {
	parsed, err := ParseMark(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
