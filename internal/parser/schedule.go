package parser

import (
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/magabrotheeeer/diary-sync/internal/models"
)

// ParseSchedule возвращает уроки дня: по одному на строку с непустым предметом.
func ParseSchedule(doc *goquery.Document, date time.Time) ([]models.ScheduleEntryDTO, error) {
	const op = "parser.ParseSchedule"

	sel, err := rows(doc, journalRows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var entries []models.ScheduleEntryDTO
	sel.Each(func(i int, row *goquery.Selection) {
		subject := cellText(row, ColumnSubject)
		if subject == "" {
			return
		}
		entries = append(entries, models.ScheduleEntryDTO{
			Ordinal:     i,
			Date:        date,
			SubjectName: subject,
		})
	})
	return entries, nil
}
