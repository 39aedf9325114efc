// Package schedule синхронизирует расписание уроков на ближайшие дни
// и уведомляет об изменениях.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/magabrotheeeer/diary-sync/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/diary-sync/internal/lib/sl"
	"github.com/magabrotheeeer/diary-sync/internal/models"
	"github.com/magabrotheeeer/diary-sync/internal/parser"
	"github.com/magabrotheeeer/diary-sync/internal/portal"
	"github.com/magabrotheeeer/diary-sync/internal/reconciler"
)

type PageFetcher interface {
	Fetch(ctx context.Context, page portal.Page) (*goquery.Document, error)
}

type LessonStorage interface {
	GetLessonsForDate(ctx context.Context, date time.Time) ([]models.Lesson, error)
	ReplaceLessonsForDate(ctx context.Context, date time.Time, lessons []models.Lesson) error
}

type Notifier interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Notification сообщение об изменении расписания.
type Notification struct {
	Days reconciler.Diff `json:"days"`
}

type Service struct {
	fetcher   PageFetcher
	pages     portal.Pages
	mapper    *reconciler.Mapper
	storage   LessonStorage
	notifier  Notifier
	lookahead int
	log       *slog.Logger
	now       func() time.Time
}

func New(
	fetcher PageFetcher,
	pages portal.Pages,
	mapper *reconciler.Mapper,
	storage LessonStorage,
	notifier Notifier,
	lookaheadDays int,
	log *slog.Logger,
) *Service {
	return &Service{
		fetcher:   fetcher,
		pages:     pages,
		mapper:    mapper,
		storage:   storage,
		notifier:  notifier,
		lookahead: lookaheadDays,
		log:       log,
		now:       time.Now,
	}
}

// Sync загружает расписание на окно дней, сравнивает с сохранённым,
// заменяет сохранённое и публикует непустой diff.
func (s *Service) Sync(ctx context.Context) (reconciler.Diff, error) {
	const op = "services.schedule.Sync"

	window := reconciler.Window(s.now(), s.lookahead)
	fetched := make(map[string][]models.Lesson, len(window))
	persisted := make(map[string][]models.Lesson, len(window))
	synced := make([]time.Time, 0, len(window))
	var batchErrs []error

	for _, day := range window {
		doc, err := s.fetcher.Fetch(ctx, s.pages.Day(day))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entries, err := parser.ParseSchedule(doc, day)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		lessons, err := s.mapper.Lessons(ctx, entries)
		if err != nil {
			batchErrs = append(batchErrs, err)
			if len(lessons) == 0 {
				s.log.Warn("schedule day skipped", sl.Day(day), sl.Err(err))
				continue
			}
		}

		old, err := s.storage.GetLessonsForDate(ctx, day)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := s.storage.ReplaceLessonsForDate(ctx, day, lessons); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		key := reconciler.DayKey(day)
		fetched[key] = lessons
		persisted[key] = old
		synced = append(synced, day)
	}

	diff := reconciler.ComputeScheduleDiff(synced, fetched, persisted)
	s.log.Info("schedule synced",
		slog.Int("days", len(synced)),
		slog.Int("changed", len(diff)),
	)

	if len(diff) > 0 {
		if err := s.notifier.Publish(ctx, rabbitmq.RoutingKeySchedule, Notification{Days: diff}); err != nil {
			s.log.Error("failed to publish schedule diff", sl.Err(err))
		}
	}

	if len(batchErrs) > 0 {
		return diff, fmt.Errorf("%s: %w", op, errors.Join(batchErrs...))
	}
	return diff, nil
}
