package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/magabrotheeeer/diary-sync/internal/models"
)

// termMarksInYear количество четвертных оценок в годовой ведомости.
const termMarksInYear = 4

// ParsePerformance разбирает ведомость успеваемости за период.
// Для годовой ведомости пятая оценка считается экзаменационной.
func ParsePerformance(doc *goquery.Document, period models.Period) ([]models.EduPerformanceDTO, error) {
	const op = "parser.ParsePerformance"

	sel, err := rows(doc, performanceRows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []models.EduPerformanceDTO
	var parseErr error
	sel.EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := rowCells(row)
		if len(cells) == 0 || skipSubject(cells[0]) {
			return true
		}

		dto, err := performanceRow(cells, period)
		if err != nil {
			parseErr = fmt.Errorf("row %d (%s): %w", i, cells[0], err)
			return false
		}
		result = append(result, dto)
		return true
	})
	if parseErr != nil {
		return nil, fmt.Errorf("%s: %w", op, parseErr)
	}
	return result, nil
}

func performanceRow(cells []string, period models.Period) (models.EduPerformanceDTO, error) {
	dto := models.EduPerformanceDTO{SubjectName: cells[0], Period: period}
	if len(cells) == 1 {
		return dto, nil
	}

	final, err := models.ParseMark(cells[len(cells)-1])
	if err != nil {
		return dto, err
	}
	if !final.IsNone() {
		dto.FinalMark = &final
	}

	// Пустые ячейки остаются на своих местах как MarkNone: позиция
	// оценки соответствует четверти.
	middle := trimFiller(cells[1 : len(cells)-1])
	for _, token := range middle {
		m, err := models.ParseMark(token)
		if err != nil {
			return dto, err
		}
		dto.TermMarks = append(dto.TermMarks, m)
	}

	if period.IsYear() && hasExamMark(dto.TermMarks) {
		last := len(dto.TermMarks) - 1
		exam := dto.TermMarks[last]
		dto.ExamMark = &exam
		dto.TermMarks = dto.TermMarks[:last]
	}
	return dto, nil
}

// hasExamMark эвристика по числу ячеек, включая пустые: в вёрстке нет явного
// признака экзамена.
func hasExamMark(marks []models.Mark) bool {
	return len(marks) > termMarksInYear
}

// trimFiller отбрасывает хвост из средней оценки, графика и пустых ячеек.
// Средний балл портал выводит с десятичной запятой («4,67»), поэтому он не
// совпадает с токеном оценки. Целый средний балл («5») будет принят за оценку.
func trimFiller(cells []string) []string {
	end := len(cells)
	for end > 0 {
		c := cells[end-1]
		if c != "" && models.IsMarkToken(c) {
			break
		}
		end--
	}
	return cells[:end]
}

func rowCells(row *goquery.Selection) []string {
	tds := row.Children().Filter("td")
	cells := make([]string, 0, tds.Length())
	tds.Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, clean(td.Text()))
	})
	return cells
}

func skipSubject(name string) bool {
	return name == "" || strings.EqualFold(name, totalRowTitle)
}
