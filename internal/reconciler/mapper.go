// Package reconciler превращает DTO со страниц портала в сохраняемые сущности
// и сравнивает свежее расписание с сохранённым.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/diary-sync/internal/lib/ids"
	"github.com/magabrotheeeer/diary-sync/internal/models"
	"github.com/magabrotheeeer/diary-sync/internal/storage/repository"
)

// SubjectGetter ищет предмет по точному названию.
type SubjectGetter interface {
	GetSubjectByName(ctx context.Context, name string) (models.Subject, error)
}

type Mapper struct {
	subjects       SubjectGetter
	policy         BatchPolicy
	lessonDuration time.Duration
	log            *slog.Logger
	now            func() time.Time
}

func NewMapper(subjects SubjectGetter, policy BatchPolicy, lessonDuration time.Duration, log *slog.Logger) *Mapper {
	return &Mapper{
		subjects:       subjects,
		policy:         policy,
		lessonDuration: lessonDuration,
		log:            log,
		now:            time.Now,
	}
}

// Policy возвращает политику обработки пакетов.
func (m *Mapper) Policy() BatchPolicy {
	return m.policy
}

// ResolveSubject находит предмет по названию.
// Если предмета нет, возвращает *UnresolvedSubjectError.
func (m *Mapper) ResolveSubject(ctx context.Context, name string) (models.Subject, error) {
	const op = "reconciler.ResolveSubject"

	s, err := m.subjects.GetSubjectByName(ctx, name)
	if errors.Is(err, repository.ErrSubjectNotFound) {
		return models.Subject{}, &UnresolvedSubjectError{Name: name, Err: err}
	}
	if err != nil {
		return models.Subject{}, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func (m *Mapper) GradeToEntity(ctx context.Context, dto models.GradeDTO) (models.Grade, error) {
	subject, err := m.ResolveSubject(ctx, dto.SubjectName)
	if err != nil {
		return models.Grade{}, err
	}
	return models.Grade{
		ID:            ids.GradeID(dto.Date, dto.MarkOrdinal, dto.LessonOrdinal),
		Mark:          dto.Mark,
		TypeOfWork:    dto.TypeOfWork,
		Date:          ids.Day(dto.Date),
		FetchedAt:     m.now(),
		SubjectID:     subject.ID,
		LessonOrdinal: dto.LessonOrdinal,
		MarkOrdinal:   dto.MarkOrdinal,
	}, nil
}

func (m *Mapper) TaskToEntity(ctx context.Context, dto models.TaskDTO) (models.Task, error) {
	subject, err := m.ResolveSubject(ctx, dto.SubjectName)
	if err != nil {
		return models.Task{}, err
	}
	return models.Task{
		ID:            ids.TaskID(dto.LessonOrdinal, subject.ID, dto.DueDate),
		Title:         dto.Title,
		DueDate:       ids.Day(dto.DueDate),
		SubjectID:     subject.ID,
		LessonOrdinal: dto.LessonOrdinal,
		IsFetched:     true,
	}, nil
}

func (m *Mapper) PerformanceToEntity(ctx context.Context, dto models.EduPerformanceDTO) (models.EduPerformance, error) {
	subject, err := m.ResolveSubject(ctx, dto.SubjectName)
	if err != nil {
		return models.EduPerformance{}, err
	}
	return models.EduPerformance{
		ID:        ids.PerformanceID(dto.SubjectName, dto.Period),
		SubjectID: subject.ID,
		Marks:     dto.TermMarks,
		FinalMark: dto.FinalMark,
		ExamMark:  dto.ExamMark,
		Period:    dto.Period,
	}, nil
}

func (m *Mapper) LessonToEntity(ctx context.Context, dto models.ScheduleEntryDTO) (models.Lesson, error) {
	subject, err := m.ResolveSubject(ctx, dto.SubjectName)
	if err != nil {
		return models.Lesson{}, err
	}
	return models.Lesson{
		ID:          ids.LessonID(dto.Date, dto.Ordinal),
		Date:        ids.Day(dto.Date),
		Ordinal:     dto.Ordinal,
		SubjectID:   subject.ID,
		SubjectName: dto.SubjectName,
		Duration:    m.lessonDuration,
	}, nil
}

func (m *Mapper) Grades(ctx context.Context, dtos []models.GradeDTO) ([]models.Grade, error) {
	return convertBatch(ctx, m, "grade", dtos, m.GradeToEntity)
}

func (m *Mapper) Tasks(ctx context.Context, dtos []models.TaskDTO) ([]models.Task, error) {
	return convertBatch(ctx, m, "task", dtos, m.TaskToEntity)
}

func (m *Mapper) Performances(ctx context.Context, dtos []models.EduPerformanceDTO) ([]models.EduPerformance, error) {
	return convertBatch(ctx, m, "performance", dtos, m.PerformanceToEntity)
}

func (m *Mapper) Lessons(ctx context.Context, dtos []models.ScheduleEntryDTO) ([]models.Lesson, error) {
	return convertBatch(ctx, m, "lesson", dtos, m.LessonToEntity)
}

// Teachers строит сущности учителей из карты, собранной парсером оценок.
func Teachers(ts models.TeacherSubjects) []models.Teacher {
	out := make([]models.Teacher, 0, len(ts))
	for t := range ts {
		out = append(out, models.Teacher{
			ID:         ids.TeacherID(t),
			LastName:   t.LastName,
			FirstName:  t.FirstName,
			Patronymic: t.Patronymic,
		})
	}
	return out
}
