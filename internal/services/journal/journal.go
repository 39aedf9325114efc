// Package journal синхронизирует оценки и домашние задания со страниц дней.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/magabrotheeeer/diary-sync/internal/lib/ids"
	"github.com/magabrotheeeer/diary-sync/internal/lib/sl"
	"github.com/magabrotheeeer/diary-sync/internal/models"
	"github.com/magabrotheeeer/diary-sync/internal/parser"
	"github.com/magabrotheeeer/diary-sync/internal/portal"
	"github.com/magabrotheeeer/diary-sync/internal/reconciler"
)

type PageFetcher interface {
	Fetch(ctx context.Context, page portal.Page) (*goquery.Document, error)
}

type Storage interface {
	UpsertGrades(ctx context.Context, grades []models.Grade) error
	UpsertTasks(ctx context.Context, tasks []models.Task) error
	UpsertTeacher(ctx context.Context, t models.Teacher, subjectIDs []int64) error
}

// Result итог синхронизации журнала.
type Result struct {
	Days     int
	Grades   int
	Tasks    int
	Teachers int
}

type Service struct {
	fetcher   PageFetcher
	pages     portal.Pages
	mapper    *reconciler.Mapper
	storage   Storage
	backfill  int
	lookahead int
	log       *slog.Logger
	now       func() time.Time
}

func New(
	fetcher PageFetcher,
	pages portal.Pages,
	mapper *reconciler.Mapper,
	storage Storage,
	backfillDays, lookaheadDays int,
	log *slog.Logger,
) *Service {
	return &Service{
		fetcher:   fetcher,
		pages:     pages,
		mapper:    mapper,
		storage:   storage,
		backfill:  backfillDays,
		lookahead: lookaheadDays,
		log:       log,
		now:       time.Now,
	}
}

// Sync проходит по дням от today-backfill до today+lookahead, начиная с сегодняшнего.
// Оценки и задания сохраняются upsert'ом по детерминированным ID,
// поэтому повторный проход по тем же дням не создаёт новых записей.
func (s *Service) Sync(ctx context.Context) (Result, error) {
	const op = "services.journal.Sync"

	var res Result
	var batchErrs []error

	for _, day := range s.days() {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("%s: %w", op, err)
		}

		doc, err := s.fetcher.Fetch(ctx, s.pages.Day(day))
		if err != nil {
			return res, fmt.Errorf("%s: %w", op, err)
		}
		dayRes, err := s.syncDay(ctx, doc, day)
		res.Grades += dayRes.Grades
		res.Tasks += dayRes.Tasks
		res.Teachers += dayRes.Teachers
		res.Days++
		if err != nil {
			var batchErr *reconciler.BatchError
			if !errors.As(err, &batchErr) {
				return res, fmt.Errorf("%s: %w", op, err)
			}
			s.log.Warn("journal day incomplete", sl.Day(day), sl.Err(err))
			batchErrs = append(batchErrs, err)
		}
	}

	s.log.Info("journal synced",
		slog.Int("days", res.Days),
		slog.Int("grades", res.Grades),
		slog.Int("tasks", res.Tasks),
	)
	if len(batchErrs) > 0 {
		return res, fmt.Errorf("%s: %w", op, errors.Join(batchErrs...))
	}
	return res, nil
}

// days сначала today..today+lookahead, затем прошедшие дни от вчера назад.
// При нехватке бюджета задачи недосинхронизированным останется дальний backfill.
func (s *Service) days() []time.Time {
	today := s.now()
	days := reconciler.Window(today, s.lookahead)
	for i := 1; i <= s.backfill; i++ {
		days = append(days, ids.Day(today.AddDate(0, 0, -i)))
	}
	return days
}

func (s *Service) syncDay(ctx context.Context, doc *goquery.Document, day time.Time) (Result, error) {
	var res Result
	var batchErrs []error

	graded, err := parser.ParseGrades(doc, day)
	if err != nil {
		return res, err
	}
	if res.Teachers, err = s.saveTeachers(ctx, graded.Teachers); err != nil {
		return res, err
	}

	grades, err := s.mapper.Grades(ctx, graded.Grades)
	if err != nil {
		batchErrs = append(batchErrs, err)
	}
	if len(grades) > 0 {
		if err := s.storage.UpsertGrades(ctx, grades); err != nil {
			return res, err
		}
		res.Grades = len(grades)
	}

	entries, err := parser.ParseSchedule(doc, day)
	if err != nil {
		return res, err
	}
	var dtos []models.TaskDTO
	seen := make(map[string]struct{})
	for _, e := range entries {
		if _, ok := seen[e.SubjectName]; ok {
			continue
		}
		seen[e.SubjectName] = struct{}{}
		subjectTasks, err := parser.ParseTasks(doc, day, e.SubjectName)
		if err != nil {
			return res, err
		}
		dtos = append(dtos, subjectTasks...)
	}

	tasks, err := s.mapper.Tasks(ctx, dtos)
	if err != nil {
		batchErrs = append(batchErrs, err)
	}
	if len(tasks) > 0 {
		if err := s.storage.UpsertTasks(ctx, tasks); err != nil {
			return res, err
		}
		res.Tasks = len(tasks)
	}

	return res, errors.Join(batchErrs...)
}

// saveTeachers сохраняет учителей вместе с известными предметами.
// Неизвестные предметы пропускаются: их создаст синхронизация предметов.
func (s *Service) saveTeachers(ctx context.Context, ts models.TeacherSubjects) (int, error) {
	saved := 0
	for _, teacher := range reconciler.Teachers(ts) {
		dto := models.TeacherDTO{LastName: teacher.LastName, FirstName: teacher.FirstName, Patronymic: teacher.Patronymic}
		var subjectIDs []int64
		for _, name := range ts.Subjects(dto) {
			subj, err := s.mapper.ResolveSubject(ctx, name)
			if reconciler.IsUnresolvedSubject(err) {
				s.log.Debug("teacher subject not yet known", slog.String("subject", name))
				continue
			}
			if err != nil {
				return saved, err
			}
			subjectIDs = append(subjectIDs, subj.ID)
		}
		if err := s.storage.UpsertTeacher(ctx, teacher, subjectIDs); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}
