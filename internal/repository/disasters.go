package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/reliefops/volunteer-match/internal/models"
)

const disasterColumns = `id, name, description, disaster_type, urgency,
	city, state, country, latitude, longitude, status, created_by, created_at, updated_at`

func (s *SQLiteDB) AddDisaster(ctx context.Context, d *models.Disaster) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO disasters (`+disasterColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Description, d.DisasterType, string(d.Urgency),
		d.City, d.State, d.Country, nullFloat(d.Latitude), nullFloat(d.Longitude),
		d.Status, d.CreatedBy, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert disaster: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetDisaster(ctx context.Context, id string) (*models.Disaster, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+disasterColumns+` FROM disasters WHERE id = ?`, id)
	return scanDisaster(row)
}

func (s *SQLiteDB) ListDisasters(ctx context.Context, opts DisasterFilter) ([]models.Disaster, error) {
	query := `SELECT ` + disasterColumns + ` FROM disasters`
	var args []any

	if opts.Status != nil {
		query += ` WHERE status = ?`
		args = append(args, *opts.Status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list disasters: %w", err)
	}
	defer rows.Close()

	disasters := []models.Disaster{}
	for rows.Next() {
		d, err := scanDisaster(rows)
		if err != nil {
			return nil, err
		}
		disasters = append(disasters, *d)
	}
	return disasters, rows.Err()
}

func (s *SQLiteDB) SetDisasterStatus(ctx context.Context, id, status string) (*models.Disaster, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE disasters SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("set disaster status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetDisaster(ctx, id)
}

func (s *SQLiteDB) DeleteDisaster(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM disasters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete disaster: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDisaster(row rowScanner) (*models.Disaster, error) {
	var (
		d           models.Disaster
		urgency     string
		description sql.NullString
		city        sql.NullString
		state       sql.NullString
		country     sql.NullString
		createdBy   sql.NullString
		lat         sql.NullFloat64
		lng         sql.NullFloat64
	)

	err := row.Scan(&d.ID, &d.Name, &description, &d.DisasterType, &urgency,
		&city, &state, &country, &lat, &lng, &d.Status, &createdBy, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan disaster: %w", err)
	}

	d.Urgency = models.Urgency(urgency)
	d.Description = description.String
	d.City = city.String
	d.State = state.String
	d.Country = country.String
	d.CreatedBy = createdBy.String
	d.Latitude = floatPtr(lat)
	d.Longitude = floatPtr(lng)

	return &d, nil
}
