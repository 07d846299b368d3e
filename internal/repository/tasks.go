package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/reliefops/volunteer-match/internal/models"
)

const taskColumns = `id, disaster_id, title, description, required_skills,
	priority, status, address, latitude, longitude, created_by, created_at, updated_at`

func (s *SQLiteDB) AddTask(ctx context.Context, t *models.Task) error {
	skills, err := marshalStrings(t.RequiredSkills)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.DisasterID, t.Title, t.Description, skills,
		t.Priority, t.Status, t.Address, nullFloat(t.Latitude), nullFloat(t.Longitude),
		t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetTask(ctx context.Context, id string) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

func (s *SQLiteDB) ListTasks(ctx context.Context, opts TaskFilter) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	var args []any

	if opts.DisasterID != nil {
		query += ` AND disaster_id = ?`
		args = append(args, *opts.DisasterID)
	}
	if opts.Status != nil {
		query += ` AND status = ?`
		args = append(args, *opts.Status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteDB) SetTaskStatus(ctx context.Context, id, status string) (*models.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("set task status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetTask(ctx, id)
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t           models.Task
		skills      string
		description sql.NullString
		address     sql.NullString
		createdBy   sql.NullString
		lat         sql.NullFloat64
		lng         sql.NullFloat64
	)

	err := row.Scan(&t.ID, &t.DisasterID, &t.Title, &description, &skills,
		&t.Priority, &t.Status, &address, &lat, &lng, &createdBy, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}

	t.RequiredSkills, err = unmarshalStrings(skills)
	if err != nil {
		return nil, err
	}
	t.Description = description.String
	t.Address = address.String
	t.CreatedBy = createdBy.String
	t.Latitude = floatPtr(lat)
	t.Longitude = floatPtr(lng)

	return &t, nil
}
