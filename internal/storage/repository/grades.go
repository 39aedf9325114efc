package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/diary-sync/internal/lib/ids"
	"github.com/magabrotheeeer/diary-sync/internal/models"
)

// UpsertGrades сохраняет оценки. ID детерминирован, поэтому повторная
// синхронизация того же дня перезаписывает строки, а не добавляет их.
func (s *Storage) UpsertGrades(ctx context.Context, grades []models.Grade) error {
	const op = "storage.UpsertGrades"
	if len(grades) == 0 {
		return nil
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, g := range grades {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO grades (id, mark, type_of_work, date, fetched_at, subject_id, lesson_ordinal, mark_ordinal)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				 ON CONFLICT (id) DO UPDATE SET
				     mark = EXCLUDED.mark,
				     type_of_work = EXCLUDED.type_of_work,
				     fetched_at = EXCLUDED.fetched_at,
				     subject_id = EXCLUDED.subject_id`,
				g.ID, g.Mark.String(), g.TypeOfWork, ids.Day(g.Date), g.FetchedAt,
				g.SubjectID, g.LessonOrdinal, g.MarkOrdinal)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetGradesForDate возвращает оценки за день.
func (s *Storage) GetGradesForDate(ctx context.Context, date time.Time) ([]models.Grade, error) {
	const op = "storage.GetGradesForDate"

	day := ids.Day(date)
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, mark, type_of_work, fetched_at, subject_id, lesson_ordinal, mark_ordinal
		 FROM grades WHERE date = $1 ORDER BY lesson_ordinal, mark_ordinal`, day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.Grade
	for rows.Next() {
		g := models.Grade{Date: day}
		var token string
		if err := rows.Scan(&g.ID, &token, &g.TypeOfWork, &g.FetchedAt,
			&g.SubjectID, &g.LessonOrdinal, &g.MarkOrdinal); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if g.Mark, err = models.ParseMark(token); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
