package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/magabrotheeeer/diary-sync/internal/models"
)

// UpsertPerformances сохраняет строки ведомости успеваемости.
func (s *Storage) UpsertPerformances(ctx context.Context, items []models.EduPerformance) error {
	const op = "storage.UpsertPerformances"
	if len(items) == 0 {
		return nil
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, p := range items {
			marks, err := json.Marshal(nonNilMarks(p.Marks))
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO edu_performance (id, subject_id, marks, final_mark, exam_mark, period)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 ON CONFLICT (id) DO UPDATE SET
				     subject_id = EXCLUDED.subject_id,
				     marks = EXCLUDED.marks,
				     final_mark = EXCLUDED.final_mark,
				     exam_mark = EXCLUDED.exam_mark`,
				p.ID, p.SubjectID, string(marks), markToken(p.FinalMark), markToken(p.ExamMark), string(p.Period))
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

// GetPerformance возвращает ведомость за период.
func (s *Storage) GetPerformance(ctx context.Context, period models.Period) ([]models.EduPerformance, error) {
	const op = "storage.GetPerformance"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, subject_id, marks, final_mark, exam_mark
		 FROM edu_performance WHERE period = $1 ORDER BY id`, string(period))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.EduPerformance
	for rows.Next() {
		p := models.EduPerformance{Period: period}
		var marks []byte
		var final, exam sql.NullString
		if err := rows.Scan(&p.ID, &p.SubjectID, &marks, &final, &exam); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := json.Unmarshal(marks, &p.Marks); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if p.FinalMark, err = parseNullMark(final); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if p.ExamMark, err = parseNullMark(exam); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func nonNilMarks(marks []models.Mark) []models.Mark {
	if marks == nil {
		return []models.Mark{}
	}
	return marks
}

func markToken(m *models.Mark) sql.NullString {
	if m == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: m.String(), Valid: true}
}

func parseNullMark(s sql.NullString) (*models.Mark, error) {
	if !s.Valid {
		return nil, nil
	}
	m, err := models.ParseMark(s.String)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
