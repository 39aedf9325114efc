package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/diary-sync/internal/models"
)

// UpsertTeacher сохраняет учителя и связывает его с предметами.
func (s *Storage) UpsertTeacher(ctx context.Context, t models.Teacher, subjectIDs []int64) error {
	const op = "storage.UpsertTeacher"

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO teachers (id, last_name, first_name, patronymic)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET
			     last_name = EXCLUDED.last_name,
			     first_name = EXCLUDED.first_name,
			     patronymic = EXCLUDED.patronymic`,
			t.ID, t.LastName, t.FirstName, t.Patronymic)
		if err != nil {
			return err
		}
		for _, id := range subjectIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO teacher_subjects (teacher_id, subject_id) VALUES ($1, $2)
				 ON CONFLICT DO NOTHING`, t.ID, id); err != nil {
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

// GetTeacherSubjects возвращает ID предметов учителя.
func (s *Storage) GetTeacherSubjects(ctx context.Context, teacherID string) ([]int64, error) {
	const op = "storage.GetTeacherSubjects"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT subject_id FROM teacher_subjects WHERE teacher_id = $1 ORDER BY subject_id`, teacherID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
