package reconciler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/diary-sync/internal/lib/ids"
	"github.com/magabrotheeeer/diary-sync/internal/models"
	"github.com/magabrotheeeer/diary-sync/internal/storage/repository"
)

type MockSubjects struct {
	mock.Mock
}

func (m *MockSubjects) GetSubjectByName(ctx context.Context, name string) (models.Subject, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(models.Subject), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var (
	algebra = models.Subject{ID: 7, FullName: "Алгебра"}
	physics = models.Subject{ID: 9, FullName: "Физика"}
	day     = time.Date(2024, 9, 2, 0, 0, 0, 0, ids.PortalLocation)
)

func knownSubjects() *MockSubjects {
	m := new(MockSubjects)
	m.On("GetSubjectByName", mock.Anything, "Алгебра").Return(algebra, nil)
	m.On("GetSubjectByName", mock.Anything, "Физика").Return(physics, nil)
	m.On("GetSubjectByName", mock.Anything, mock.Anything).
		Return(models.Subject{}, repository.ErrSubjectNotFound)
	return m
}

func TestResolveSubject(t *testing.T) {
	mapper := NewMapper(knownSubjects(), PolicyAllOrNothing, 45*time.Minute, newNoopLogger())

	s, err := mapper.ResolveSubject(context.Background(), "Алгебра")
	require.NoError(t, err)
	assert.Equal(t, algebra, s)

	_, err = mapper.ResolveSubject(context.Background(), "Астрономия")
	var unresolved *UnresolvedSubjectError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "Астрономия", unresolved.Name)
	assert.ErrorIs(t, err, repository.ErrSubjectNotFound)
}

func TestResolveSubject_StorageError(t *testing.T) {
	subjects := new(MockSubjects)
	subjects.On("GetSubjectByName", mock.Anything, "Алгебра").
		Return(models.Subject{}, errors.New("connection reset"))
	mapper := NewMapper(subjects, PolicyAllOrNothing, 0, newNoopLogger())

	_, err := mapper.ResolveSubject(context.Background(), "Алгебра")
	require.Error(t, err)
	assert.False(t, IsUnresolvedSubject(err))
}

func TestGradeToEntity_IsIdempotent(t *testing.T) {
	mapper := NewMapper(knownSubjects(), PolicyAllOrNothing, 0, newNoopLogger())
	dto := models.GradeDTO{
		Mark: models.MarkFive, TypeOfWork: "Контрольная", Date: day,
		SubjectName: "Алгебра", MarkOrdinal: 1, LessonOrdinal: 2,
	}

	first, err := mapper.GradeToEntity(context.Background(), dto)
	require.NoError(t, err)
	second, err := mapper.GradeToEntity(context.Background(), dto)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, ids.GradeID(day, 1, 2), first.ID)
	assert.Equal(t, algebra.ID, first.SubjectID)
	assert.Equal(t, models.MarkFive, first.Mark)
}

func TestTaskAndPerformanceToEntity(t *testing.T) {
	mapper := NewMapper(knownSubjects(), PolicyAllOrNothing, 0, newNoopLogger())

	task, err := mapper.TaskToEntity(context.Background(), models.TaskDTO{
		Title: "№ 120", DueDate: day, SubjectName: "Физика", LessonOrdinal: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, ids.TaskID(3, physics.ID, day), task.ID)
	assert.True(t, task.IsFetched)

	final := models.MarkFour
	perf, err := mapper.PerformanceToEntity(context.Background(), models.EduPerformanceDTO{
		SubjectName: "Алгебра",
		TermMarks:   []models.Mark{models.MarkFive, models.MarkThree},
		FinalMark:   &final,
		Period:      models.PeriodSecond,
	})
	require.NoError(t, err)
	assert.Equal(t, "Алгебра_2", perf.ID)
	assert.Equal(t, algebra.ID, perf.SubjectID)
	assert.Equal(t, &final, perf.FinalMark)
}

func TestLessonToEntity_UsesConfiguredDuration(t *testing.T) {
	mapper := NewMapper(knownSubjects(), PolicyAllOrNothing, 40*time.Minute, newNoopLogger())

	lesson, err := mapper.LessonToEntity(context.Background(), models.ScheduleEntryDTO{
		Ordinal: 2, Date: day, SubjectName: "Алгебра",
	})
	require.NoError(t, err)
	assert.Equal(t, 40*time.Minute, lesson.Duration)
	assert.Equal(t, ids.LessonID(day, 2), lesson.ID)
	assert.Equal(t, algebra.ID, lesson.SubjectID)
}

func gradesWithUnknownSubject() []models.GradeDTO {
	return []models.GradeDTO{
		{Mark: models.MarkFive, Date: day, SubjectName: "Алгебра", MarkOrdinal: 0, LessonOrdinal: 0},
		{Mark: models.MarkFour, Date: day, SubjectName: "Астрономия", MarkOrdinal: 0, LessonOrdinal: 1},
		{Mark: models.MarkThree, Date: day, SubjectName: "Физика", MarkOrdinal: 0, LessonOrdinal: 2},
	}
}

func TestGrades_AllOrNothingDiscardsWholeBatch(t *testing.T) {
	mapper := NewMapper(knownSubjects(), PolicyAllOrNothing, 0, newNoopLogger())

	grades, err := mapper.Grades(context.Background(), gradesWithUnknownSubject())

	assert.Empty(t, grades)
	require.Error(t, err)
	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.True(t, batchErr.Discarded)
	require.Len(t, batchErr.Failed, 1)
	assert.Equal(t, 1, batchErr.Failed[0].Index)
	assert.True(t, IsUnresolvedSubject(err))
}

func TestGrades_PartialKeepsResolvedItems(t *testing.T) {
	mapper := NewMapper(knownSubjects(), PolicyPartial, 0, newNoopLogger())

	grades, err := mapper.Grades(context.Background(), gradesWithUnknownSubject())

	require.Len(t, grades, 2)
	assert.Equal(t, algebra.ID, grades[0].SubjectID)
	assert.Equal(t, physics.ID, grades[1].SubjectID)

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.False(t, batchErr.Discarded)
	assert.True(t, IsUnresolvedSubject(err))
}

func TestGrades_AllResolved(t *testing.T) {
	mapper := NewMapper(knownSubjects(), PolicyAllOrNothing, 0, newNoopLogger())

	grades, err := mapper.Grades(context.Background(), gradesWithUnknownSubject()[:1])
	require.NoError(t, err)
	assert.Len(t, grades, 1)
}

func TestParseBatchPolicy(t *testing.T) {
	assert.Equal(t, PolicyPartial, ParseBatchPolicy("partial"))
	assert.Equal(t, PolicyAllOrNothing, ParseBatchPolicy("all_or_nothing"))
	assert.Equal(t, PolicyAllOrNothing, ParseBatchPolicy(""))
}

func lesson(date time.Time, ordinal int, subject string) models.Lesson {
	return models.Lesson{ID: fmt.Sprintf("%d", ordinal), Date: date, Ordinal: ordinal, SubjectName: subject}
}

func TestComputeScheduleDiff(t *testing.T) {
	d1, d2, d3, d4 := day, day.AddDate(0, 0, 1), day.AddDate(0, 0, 2), day.AddDate(0, 0, 3)
	window := []time.Time{d1, d2, d3, d4}

	fetched := GroupByDay([]models.Lesson{
		lesson(d1, 0, "Алгебра"),
		lesson(d2, 0, "Алгебра"),
		lesson(d2, 1, "Физика"),
		lesson(d3, 0, "Физика"),
		lesson(d3, 1, "Алгебра"),
	})
	persisted := GroupByDay([]models.Lesson{
		lesson(d2, 1, "Физика"),
		lesson(d2, 0, "Алгебра"),
		lesson(d3, 0, "Физика"),
		lesson(d3, 1, "Химия"),
		lesson(d4, 0, "Алгебра"),
	})

	diff := ComputeScheduleDiff(window, fetched, persisted)

	require.Len(t, diff, 3)
	assert.Equal(t, DayDiff{Date: d1, IsNew: true}, diff[DayKey(d1)])
	assert.NotContains(t, diff, DayKey(d2))
	assert.Equal(t, DayDiff{Date: d3, IsNew: false}, diff[DayKey(d3)])
	// уроки пропали с портала
	assert.Equal(t, DayDiff{Date: d4, IsNew: false}, diff[DayKey(d4)])
}

func TestComputeScheduleDiff_EmptyWindow(t *testing.T) {
	diff := ComputeScheduleDiff(nil, map[string][]models.Lesson{}, nil)
	assert.Empty(t, diff)
}

func TestWindow(t *testing.T) {
	start := time.Date(2024, 8, 31, 22, 0, 0, 0, time.UTC) // 1 сентября по МСК
	days := Window(start, 2)

	require.Len(t, days, 3)
	assert.Equal(t, "2024-09-01", DayKey(days[0]))
	assert.Equal(t, "2024-09-03", DayKey(days[2]))
}

func TestTeachers(t *testing.T) {
	ts := models.TeacherSubjects{}
	teacher := models.TeacherDTO{LastName: "Иванов", FirstName: "И.", Patronymic: "И."}
	ts.Add(teacher, "Алгебра")

	out := Teachers(ts)
	require.Len(t, out, 1)
	assert.Equal(t, ids.TeacherID(teacher), out[0].ID)
	assert.Equal(t, "Иванов", out[0].LastName)
}
