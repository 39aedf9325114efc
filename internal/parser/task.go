package parser

import (
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/magabrotheeeer/diary-sync/internal/models"
)

// ParseTasks возвращает домашние задания по одному предмету.
func ParseTasks(doc *goquery.Document, dueDate time.Time, subjectName string) ([]models.TaskDTO, error) {
	const op = "parser.ParseTasks"

	sel, err := rows(doc, journalRows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var tasks []models.TaskDTO
	sel.Each(func(i int, row *goquery.Selection) {
		if cellText(row, ColumnSubject) != subjectName {
			return
		}
		title := cellText(row, ColumnTask)
		if title == "" {
			return
		}
		tasks = append(tasks, models.TaskDTO{
			Title:         title,
			DueDate:       dueDate,
			SubjectName:   subjectName,
			LessonOrdinal: i,
		})
	})
	return tasks, nil
}
