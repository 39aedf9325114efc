package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/magabrotheeeer/diary-sync/internal/models"
)

// GradeResult оценки дня и учителя, найденные в подсказках к ним.
type GradeResult struct {
	Grades   []models.GradeDTO
	Teachers models.TeacherSubjects
}

// ParseGrades разбирает колонку оценок. Если оценок в строке нет,
// используется комментарий (отметка об отсутствии или болезни).
func ParseGrades(doc *goquery.Document, date time.Time) (GradeResult, error) {
	const op = "parser.ParseGrades"

	sel, err := rows(doc, journalRows)
	if err != nil {
		return GradeResult{}, fmt.Errorf("%s: %w", op, err)
	}

	res := GradeResult{Teachers: models.TeacherSubjects{}}
	var parseErr error
	sel.EachWithBreak(func(i int, row *goquery.Selection) bool {
		subject := cellText(row, ColumnSubject)
		if subject == "" {
			return true
		}

		marks := cell(row, ColumnGrade).Find(markCell)
		if marks.Length() == 0 {
			if g, ok := commentGrade(cellText(row, ColumnComment)); ok {
				g.Date = date
				g.SubjectName = subject
				g.LessonOrdinal = i
				res.Grades = append(res.Grades, g)
			}
			return true
		}

		marks.EachWithBreak(func(j int, span *goquery.Selection) bool {
			mark, err := models.ParseMark(clean(span.Text()))
			if err != nil {
				parseErr = fmt.Errorf("row %d, mark %d: %w", i, j, err)
				return false
			}
			title, _ := span.Attr("title")
			teacher, typeOfWork := splitTooltip(title)
			if teacher.LastName != "" {
				res.Teachers.Add(teacher, subject)
			}
			res.Grades = append(res.Grades, models.GradeDTO{
				Mark:          mark,
				TypeOfWork:    typeOfWork,
				Date:          date,
				SubjectName:   subject,
				MarkOrdinal:   j,
				LessonOrdinal: i,
			})
			return true
		})
		return parseErr == nil
	})
	if parseErr != nil {
		return GradeResult{}, fmt.Errorf("%s: %w", op, parseErr)
	}
	return res, nil
}

// splitTooltip делит подсказку "Фамилия Имя Отчество - Вид работы".
func splitTooltip(title string) (models.TeacherDTO, string) {
	title = clean(title)
	name, work, found := strings.Cut(title, " - ")
	if !found {
		return models.TeacherDTO{}, title
	}
	return parseTeacher(name), strings.TrimSpace(work)
}

func parseTeacher(name string) models.TeacherDTO {
	fields := strings.Fields(name)
	var t models.TeacherDTO
	switch len(fields) {
	case 0:
	case 1:
		t.LastName = fields[0]
	case 2:
		t.LastName, t.FirstName = fields[0], fields[1]
	default:
		t.LastName, t.FirstName = fields[0], fields[1]
		t.Patronymic = strings.Join(fields[2:], " ")
	}
	return t
}

// commentGrade строит синтетическую оценку из комментария к уроку.
func commentGrade(comment string) (models.GradeDTO, bool) {
	if comment == "" {
		return models.GradeDTO{}, false
	}

	g := models.GradeDTO{MarkOrdinal: 0, TypeOfWork: comment}
	lower := strings.ToLower(comment)
	switch {
	case strings.HasPrefix(lower, "не был"):
		g.Mark = models.MarkAbsent
	case strings.HasPrefix(lower, "болел"):
		g.Mark = models.MarkIll
	case models.IsMarkToken(comment):
		g.Mark, _ = models.ParseMark(comment)
		if g.Mark.IsNone() {
			return models.GradeDTO{}, false
		}
		g.TypeOfWork = ""
	default:
		g.Mark = models.MarkNone
	}
	return g, true
}
