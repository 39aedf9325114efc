package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/diary-sync/internal/models"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

var day = time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)

const dayPage = `<html><body>
<table class="journal">
<thead><tr><th>№</th><th>Предмет</th><th>Задание</th><th>Комментарий</th><th>Оценки</th></tr></thead>
<tbody>
<tr><td>1</td><td>Русский язык</td><td>Упр. 15</td><td></td><td></td></tr>
<tr><td>2</td><td>Алгебра</td><td>№ 120, 121</td><td></td><td>
	<span class="mark" title="Иванов И. И. - Контрольная">5</span>
	<span class="mark" title="Иванов И. И. - Контрольная">4</span>
</td></tr>
<tr><td>3</td><td>Физика</td><td></td><td>Не был</td><td></td></tr>
<tr><td>4</td><td></td><td></td><td></td><td></td></tr>
</tbody>
</table>
</body></html>`

func TestParseSchedule(t *testing.T) {
	entries, err := ParseSchedule(mustDoc(t, dayPage), day)
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, models.ScheduleEntryDTO{Ordinal: 0, Date: day, SubjectName: "Русский язык"}, entries[0])
	assert.Equal(t, "Алгебра", entries[1].SubjectName)
	assert.Equal(t, 1, entries[1].Ordinal)
	assert.Equal(t, "Физика", entries[2].SubjectName)
	assert.Equal(t, 2, entries[2].Ordinal)
}

func TestParseGrades_MarksWithTeacherTooltip(t *testing.T) {
	res, err := ParseGrades(mustDoc(t, dayPage), day)
	require.NoError(t, err)

	var algebra []models.GradeDTO
	for _, g := range res.Grades {
		if g.SubjectName == "Алгебра" {
			algebra = append(algebra, g)
		}
	}
	require.Len(t, algebra, 2)

	assert.Equal(t, models.GradeDTO{
		Mark: models.MarkFive, TypeOfWork: "Контрольная", Date: day,
		SubjectName: "Алгебра", MarkOrdinal: 0, LessonOrdinal: 1,
	}, algebra[0])
	assert.Equal(t, models.MarkFour, algebra[1].Mark)
	assert.Equal(t, 1, algebra[1].MarkOrdinal)
	assert.Equal(t, 1, algebra[1].LessonOrdinal)

	teacher := models.TeacherDTO{LastName: "Иванов", FirstName: "И.", Patronymic: "И."}
	require.Contains(t, res.Teachers, teacher)
	assert.Equal(t, "Иванов И. И.", teacher.FullName())
	assert.Equal(t, []string{"Алгебра"}, res.Teachers.Subjects(teacher))
	assert.Len(t, res.Teachers, 1)
}

func TestParseGrades_CommentFallback(t *testing.T) {
	res, err := ParseGrades(mustDoc(t, dayPage), day)
	require.NoError(t, err)

	var physics []models.GradeDTO
	for _, g := range res.Grades {
		if g.SubjectName == "Физика" {
			physics = append(physics, g)
		}
	}
	require.Len(t, physics, 1)
	assert.Equal(t, models.MarkAbsent, physics[0].Mark)
	assert.Equal(t, 0, physics[0].MarkOrdinal)
	assert.Equal(t, 2, physics[0].LessonOrdinal)

	// у русского языка нет ни оценок, ни комментария
	for _, g := range res.Grades {
		assert.NotEqual(t, "Русский язык", g.SubjectName)
	}
}

func TestCommentGrade(t *testing.T) {
	tests := []struct {
		comment  string
		wantOK   bool
		wantMark models.Mark
		wantWork string
	}{
		{comment: "Не был", wantOK: true, wantMark: models.MarkAbsent, wantWork: "Не был"},
		{comment: "Болел, справка", wantOK: true, wantMark: models.MarkIll, wantWork: "Болел, справка"},
		{comment: "Н", wantOK: true, wantMark: models.MarkAbsent},
		{comment: "Б", wantOK: true, wantMark: models.MarkIll},
		{comment: "Опоздал на 10 минут", wantOK: true, wantMark: models.MarkNone, wantWork: "Опоздал на 10 минут"},
		{comment: "—", wantOK: false},
		{comment: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.comment, func(t *testing.T) {
			g, ok := commentGrade(tt.comment)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantMark, g.Mark)
			assert.Equal(t, tt.wantWork, g.TypeOfWork)
			assert.Equal(t, 0, g.MarkOrdinal)
		})
	}
}

func TestParseGrades_InvalidToken(t *testing.T) {
	html := `<table class="journal"><tbody>
<tr><td>1</td><td>Алгебра</td><td></td><td></td><td><span class="mark">5+</span></td></tr>
</tbody></table>`

	_, err := ParseGrades(mustDoc(t, html), day)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidMarkToken)
}

func TestParseGrades_TooltipWithoutTeacher(t *testing.T) {
	html := `<table class="journal"><tbody>
<tr><td>1</td><td>Алгебра</td><td></td><td></td><td><span class="mark" title="Самостоятельная">3</span></td></tr>
</tbody></table>`

	res, err := ParseGrades(mustDoc(t, html), day)
	require.NoError(t, err)
	require.Len(t, res.Grades, 1)
	assert.Equal(t, "Самостоятельная", res.Grades[0].TypeOfWork)
	assert.Empty(t, res.Teachers)
}

func TestParsers_MalformedPage(t *testing.T) {
	doc := mustDoc(t, `<html><body><p>Технические работы</p></body></html>`)

	_, err := ParseSchedule(doc, day)
	assert.ErrorIs(t, err, ErrMalformedPage)

	_, err = ParseGrades(doc, day)
	assert.ErrorIs(t, err, ErrMalformedPage)

	_, err = ParseTasks(doc, day, "Алгебра")
	assert.ErrorIs(t, err, ErrMalformedPage)

	_, err = ParsePerformance(doc, models.PeriodFirst)
	assert.ErrorIs(t, err, ErrMalformedPage)

	_, err = ParseSubjectNames(doc)
	assert.ErrorIs(t, err, ErrMalformedPage)
}

func TestParseTasks(t *testing.T) {
	tasks, err := ParseTasks(mustDoc(t, dayPage), day, "Алгебра")
	require.NoError(t, err)

	require.Len(t, tasks, 1)
	assert.Equal(t, models.TaskDTO{
		Title: "№ 120, 121", DueDate: day, SubjectName: "Алгебра", LessonOrdinal: 1,
	}, tasks[0])

	tasks, err = ParseTasks(mustDoc(t, dayPage), day, "Физика")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

const termPage = `<table class="performance"><tbody>
<tr><td>Алгебра</td><td>5</td><td>4</td><td>5</td><td>4,67</td><td>▁▅▇</td><td></td><td>5</td></tr>
<tr><td>Физика</td><td>3</td><td>Н</td><td></td><td></td><td>—</td></tr>
<tr><td></td><td></td></tr>
<tr><td>Алгебра</td><td>5</td><td>5</td></tr>
<tr><td>ИТОГО</td><td>4,2</td><td></td></tr>
</tbody></table>`

func TestParsePerformance_Term(t *testing.T) {
	rows, err := ParsePerformance(mustDoc(t, termPage), models.PeriodFirst)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	algebra := rows[0]
	assert.Equal(t, "Алгебра", algebra.SubjectName)
	assert.Equal(t, []models.Mark{models.MarkFive, models.MarkFour, models.MarkFive}, algebra.TermMarks)
	require.NotNil(t, algebra.FinalMark)
	assert.Equal(t, models.MarkFive, *algebra.FinalMark)
	assert.Nil(t, algebra.ExamMark)
	assert.Equal(t, models.PeriodFirst, algebra.Period)

	physics := rows[1]
	assert.Equal(t, []models.Mark{models.MarkThree, models.MarkAbsent}, physics.TermMarks)
	assert.Nil(t, physics.FinalMark)
}

func TestParsePerformance_YearWithExam(t *testing.T) {
	html := `<table class="performance"><tbody>
<tr><td>Алгебра</td><td>5</td><td>4</td><td>4</td><td>5</td><td>3</td><td>4,2</td><td>5</td></tr>
<tr><td>Химия</td><td>4</td><td>4</td><td>5</td><td>5</td><td>4,5</td><td>5</td></tr>
</tbody></table>`

	rows, err := ParsePerformance(mustDoc(t, html), models.PeriodYear)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	algebra := rows[0]
	assert.Equal(t, []models.Mark{models.MarkFive, models.MarkFour, models.MarkFour, models.MarkFive}, algebra.TermMarks)
	require.NotNil(t, algebra.ExamMark)
	assert.Equal(t, models.MarkThree, *algebra.ExamMark)
	require.NotNil(t, algebra.FinalMark)
	assert.Equal(t, models.MarkFive, *algebra.FinalMark)

	chemistry := rows[1]
	assert.Len(t, chemistry.TermMarks, 4)
	assert.Nil(t, chemistry.ExamMark)
}

func TestParsePerformance_BlankCellsKeepPosition(t *testing.T) {
	html := `<table class="performance"><tbody>
<tr><td>Алгебра</td><td>5</td><td>—</td><td>4</td><td>5</td><td>3</td><td>4,2</td><td>5</td></tr>
<tr><td>Химия</td><td>4</td><td></td><td>5</td><td>5</td><td>4,67</td><td>5</td></tr>
</tbody></table>`

	rows, err := ParsePerformance(mustDoc(t, html), models.PeriodYear)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	algebra := rows[0]
	assert.Equal(t, []models.Mark{models.MarkFive, models.MarkNone, models.MarkFour, models.MarkFive}, algebra.TermMarks)
	require.NotNil(t, algebra.ExamMark)
	assert.Equal(t, models.MarkThree, *algebra.ExamMark)

	chemistry := rows[1]
	assert.Equal(t, []models.Mark{models.MarkFour, models.MarkNone, models.MarkFive, models.MarkFive}, chemistry.TermMarks)
	assert.Nil(t, chemistry.ExamMark)

	rows, err = ParsePerformance(mustDoc(t, `<table class="performance"><tbody>
<tr><td>Алгебра</td><td>5</td><td>—</td><td>4</td><td>4,5</td><td>4</td></tr>
</tbody></table>`), models.PeriodFirst)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []models.Mark{models.MarkFive, models.MarkNone, models.MarkFour}, rows[0].TermMarks)
}

func TestTrimFiller(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  []string
	}{
		{name: "decimal average", cells: []string{"5", "4", "4,67", "▁▅▇", ""}, want: []string{"5", "4"}},
		{name: "blank inside kept", cells: []string{"5", "—", "4", "4,5"}, want: []string{"5", "—", "4"}},
		{name: "only filler", cells: []string{"", "4,5"}, want: []string{}},
		{name: "whole average is taken as mark", cells: []string{"5", "5", "5"}, want: []string{"5", "5", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trimFiller(tt.cells))
		})
	}
}

func TestParsePerformance_InvalidFinalMark(t *testing.T) {
	html := `<table class="performance"><tbody><tr><td>Алгебра</td><td>5</td><td>отл</td></tr></tbody></table>`

	_, err := ParsePerformance(mustDoc(t, html), models.PeriodSecond)
	assert.ErrorIs(t, err, models.ErrInvalidMarkToken)
}

func TestHasExamMark(t *testing.T) {
	four := []models.Mark{models.MarkFive, models.MarkFive, models.MarkFive, models.MarkFive}
	assert.False(t, hasExamMark(four))
	assert.True(t, hasExamMark(append(four, models.MarkFour)))
	assert.False(t, hasExamMark(nil))
}

func TestParseSubjectNames(t *testing.T) {
	names, err := ParseSubjectNames(mustDoc(t, termPage))
	require.NoError(t, err)
	assert.Equal(t, []string{"Алгебра", "Физика"}, names)
}
