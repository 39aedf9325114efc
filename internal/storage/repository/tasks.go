package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/diary-sync/internal/lib/ids"
	"github.com/magabrotheeeer/diary-sync/internal/models"
)

// UpsertTasks сохраняет задания с портала.
func (s *Storage) UpsertTasks(ctx context.Context, tasks []models.Task) error {
	const op = "storage.UpsertTasks"
	if len(tasks) == 0 {
		return nil
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, t := range tasks {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO tasks (id, title, due_date, subject_id, lesson_ordinal, is_fetched)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 ON CONFLICT (id) DO UPDATE SET
				     title = EXCLUDED.title,
				     is_fetched = EXCLUDED.is_fetched`,
				t.ID, t.Title, ids.Day(t.DueDate), t.SubjectID, t.LessonOrdinal, t.IsFetched)
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

// GetTasksForDate возвращает задания с заданным сроком.
func (s *Storage) GetTasksForDate(ctx context.Context, date time.Time) ([]models.Task, error) {
	const op = "storage.GetTasksForDate"

	day := ids.Day(date)
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, title, subject_id, lesson_ordinal, is_fetched
		 FROM tasks WHERE due_date = $1 ORDER BY lesson_ordinal`, day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.Task
	for rows.Next() {
		t := models.Task{DueDate: day}
		if err := rows.Scan(&t.ID, &t.Title, &t.SubjectID, &t.LessonOrdinal, &t.IsFetched); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
