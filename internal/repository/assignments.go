package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/reliefops/volunteer-match/internal/models"
)

func (s *SQLiteDB) AddAssignments(ctx context.Context, assignments []models.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignments tx: %w", err)
	}
	defer tx.Rollback()

	for _, a := range assignments {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO task_assignments (id, task_id, volunteer_id, status, match_score, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.TaskID, a.VolunteerID, a.Status, a.MatchScore, a.CreatedAt, a.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert assignment %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteDB) ListAssignmentsByVolunteer(ctx context.Context, volunteerID string) ([]models.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, volunteer_id, status, match_score, created_at, updated_at
		FROM task_assignments
		WHERE volunteer_id = ?
		ORDER BY created_at DESC`, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	assignments := []models.Assignment{}
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.VolunteerID, &a.Status, &a.MatchScore, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (s *SQLiteDB) SetAssignmentStatus(ctx context.Context, id, volunteerID, status string) (*models.Assignment, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE task_assignments SET status = ?, updated_at = ?
		WHERE id = ? AND volunteer_id = ?`,
		status, time.Now().UTC(), id, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("set assignment status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	var a models.Assignment
	err = s.db.QueryRowContext(ctx, `
		SELECT id, task_id, volunteer_id, status, match_score, created_at, updated_at
		FROM task_assignments WHERE id = ?`, id).
		Scan(&a.ID, &a.TaskID, &a.VolunteerID, &a.Status, &a.MatchScore, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &a, nil
}
