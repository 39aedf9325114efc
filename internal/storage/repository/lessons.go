package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/diary-sync/internal/lib/ids"
	"github.com/magabrotheeeer/diary-sync/internal/models"
)

// GetLessonsForDate возвращает сохранённое расписание на день.
func (s *Storage) GetLessonsForDate(ctx context.Context, date time.Time) ([]models.Lesson, error) {
	const op = "storage.GetLessonsForDate"

	day := ids.Day(date)
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, ordinal, subject_id, subject_name, duration_seconds
		 FROM lessons WHERE date = $1 ORDER BY ordinal`, day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.Lesson
	for rows.Next() {
		l := models.Lesson{Date: day}
		var seconds int64
		if err := rows.Scan(&l.ID, &l.Ordinal, &l.SubjectID, &l.SubjectName, &seconds); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		l.Duration = time.Duration(seconds) * time.Second
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ReplaceLessonsForDate заменяет расписание дня целиком.
func (s *Storage) ReplaceLessonsForDate(ctx context.Context, date time.Time, lessons []models.Lesson) error {
	const op = "storage.ReplaceLessonsForDate"

	day := ids.Day(date)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM lessons WHERE date = $1`, day); err != nil {
			return err
		}
		for _, l := range lessons {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO lessons (id, date, ordinal, subject_id, subject_name, duration_seconds)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 ON CONFLICT (id) DO UPDATE SET
				     date = EXCLUDED.date,
				     ordinal = EXCLUDED.ordinal,
				     subject_id = EXCLUDED.subject_id,
				     subject_name = EXCLUDED.subject_name,
				     duration_seconds = EXCLUDED.duration_seconds`,
				l.ID, day, l.Ordinal, l.SubjectID, l.SubjectName, int64(l.Duration/time.Second))
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
