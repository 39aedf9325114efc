package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/diary-sync/internal/models"
)

// GetSubjectByName ищет предмет по точному названию.
func (s *Storage) GetSubjectByName(ctx context.Context, name string) (models.Subject, error) {
	const op = "storage.GetSubjectByName"

	var subj models.Subject
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, full_name, display_name FROM subjects WHERE full_name = $1`, name).
		Scan(&subj.ID, &subj.FullName, &subj.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subject{}, fmt.Errorf("%s: %q: %w", op, name, ErrSubjectNotFound)
	}
	if err != nil {
		return models.Subject{}, fmt.Errorf("%s: %w", op, err)
	}
	return subj, nil
}

// CreateSubject создаёт предмет, если его ещё нет, и возвращает его.
func (s *Storage) CreateSubject(ctx context.Context, fullName string) (models.Subject, error) {
	const op = "storage.CreateSubject"

	query := `INSERT INTO subjects (full_name) VALUES ($1)
			  ON CONFLICT (full_name) DO UPDATE SET full_name = EXCLUDED.full_name
			  RETURNING id, full_name, display_name`
	var subj models.Subject
	if err := s.DB.QueryRowContext(ctx, query, fullName).
		Scan(&subj.ID, &subj.FullName, &subj.DisplayName); err != nil {
		return models.Subject{}, fmt.Errorf("%s: %w", op, err)
	}
	return subj, nil
}

// ListSubjects возвращает все предметы по алфавиту.
func (s *Storage) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	const op = "storage.ListSubjects"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, full_name, display_name FROM subjects ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.Subject
	for rows.Next() {
		var subj models.Subject
		if err := rows.Scan(&subj.ID, &subj.FullName, &subj.DisplayName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, subj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
