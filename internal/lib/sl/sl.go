// Package sl содержит вспомогательные функции для работы с логгером slog.
package sl

import (
	"log/slog"
	"time"
)

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to fetch page", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Job группирует атрибуты запуска фоновой задачи.
func Job(family, runID string, attempt int) slog.Attr {
	return slog.Group("job",
		slog.String("family", family),
		slog.String("run_id", runID),
		slog.Int("attempt", attempt),
	)
}

// Day форматирует день портала для логов.
func Day(t time.Time) slog.Attr {
	return slog.String("day", t.Format("2006-01-02"))
}
