// Package subjects синхронизирует список предметов и ведомости успеваемости.
// Это единственное место, где предметы создаются по названию с портала.
package subjects

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/magabrotheeeer/diary-sync/internal/models"
	"github.com/magabrotheeeer/diary-sync/internal/parser"
	"github.com/magabrotheeeer/diary-sync/internal/portal"
	"github.com/magabrotheeeer/diary-sync/internal/reconciler"
)

type PageFetcher interface {
	Fetch(ctx context.Context, page portal.Page) (*goquery.Document, error)
}

type Storage interface {
	CreateSubject(ctx context.Context, fullName string) (models.Subject, error)
	UpsertPerformances(ctx context.Context, items []models.EduPerformance) error
}

// Result итог синхронизации предметов.
type Result struct {
	Subjects     int
	Created      int
	Performances int
}

type Service struct {
	fetcher PageFetcher
	pages   portal.Pages
	mapper  *reconciler.Mapper
	storage Storage
	log     *slog.Logger
	now     func() time.Time
}

func New(fetcher PageFetcher, pages portal.Pages, mapper *reconciler.Mapper, storage Storage, log *slog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		pages:   pages,
		mapper:  mapper,
		storage: storage,
		log:     log,
		now:     time.Now,
	}
}

// Sync собирает предметы из ведомости текущей четверти, создаёт недостающие
// и сохраняет четвертную и годовую успеваемость.
func (s *Service) Sync(ctx context.Context) (Result, error) {
	const op = "services.subjects.Sync"

	var res Result
	term := models.TermForDate(s.now())

	termDoc, err := s.fetcher.Fetch(ctx, s.pages.Performance(term))
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	names, err := parser.ParseSubjectNames(termDoc)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	res.Subjects = len(names)

	for _, name := range names {
		created, err := s.ensureSubject(ctx, name)
		if err != nil {
			return res, fmt.Errorf("%s: %w", op, err)
		}
		if created {
			res.Created++
		}
	}

	var errs []error
	n, err := s.syncPerformance(ctx, termDoc, term)
	res.Performances += n
	if err != nil {
		errs = append(errs, err)
	}

	yearDoc, err := s.fetcher.Fetch(ctx, s.pages.Performance(models.PeriodYear))
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	n, err = s.syncPerformance(ctx, yearDoc, models.PeriodYear)
	res.Performances += n
	if err != nil {
		errs = append(errs, err)
	}

	s.log.Info("subjects synced",
		slog.String("term", string(term)),
		slog.Int("subjects", res.Subjects),
		slog.Int("created", res.Created),
		slog.Int("performances", res.Performances),
	)
	if len(errs) > 0 {
		return res, fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}
	return res, nil
}

func (s *Service) ensureSubject(ctx context.Context, name string) (bool, error) {
	_, err := s.mapper.ResolveSubject(ctx, name)
	if err == nil {
		return false, nil
	}
	if !reconciler.IsUnresolvedSubject(err) {
		return false, err
	}
	if _, err := s.storage.CreateSubject(ctx, name); err != nil {
		return false, err
	}
	s.log.Info("subject created", slog.String("subject", name))
	return true, nil
}

func (s *Service) syncPerformance(ctx context.Context, doc *goquery.Document, period models.Period) (int, error) {
	rows, err := parser.ParsePerformance(doc, period)
	if err != nil {
		return 0, err
	}
	items, convErr := s.mapper.Performances(ctx, rows)
	if len(items) > 0 {
		if err := s.storage.UpsertPerformances(ctx, items); err != nil {
			return 0, err
		}
	}
	return len(items), convErr
}
