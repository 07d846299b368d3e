package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/reliefops/volunteer-match/internal/models"
)

const volunteerColumns = `id, profile_id, name, email, phone, skills, availability,
	city, state, country, latitude, longitude,
	completed_tasks, total_assigned_tasks, reliability_score, created_at, updated_at`

func (s *SQLiteDB) AddVolunteer(ctx context.Context, v *models.Volunteer) error {
	skills, err := marshalStrings(v.Skills)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO volunteers (`+volunteerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.ProfileID, v.Name, v.Email, v.Phone, skills, string(v.Availability),
		v.City, v.State, v.Country, nullFloat(v.Latitude), nullFloat(v.Longitude),
		v.CompletedTasks, v.TotalAssignedTasks, nullFloat(v.ReliabilityScore),
		v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert volunteer: %w", err)
	}
	return nil
}

func (s *SQLiteDB) UpdateVolunteer(ctx context.Context, v *models.Volunteer) error {
	skills, err := marshalStrings(v.Skills)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE volunteers
		SET name = ?, email = ?, phone = ?, skills = ?, availability = ?,
			city = ?, state = ?, country = ?, latitude = ?, longitude = ?, updated_at = ?
		WHERE profile_id = ?`,
		v.Name, v.Email, v.Phone, skills, string(v.Availability),
		v.City, v.State, v.Country, nullFloat(v.Latitude), nullFloat(v.Longitude),
		v.UpdatedAt, v.ProfileID,
	)
	if err != nil {
		return fmt.Errorf("update volunteer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteDB) GetVolunteer(ctx context.Context, id string) (*models.Volunteer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+volunteerColumns+` FROM volunteers WHERE id = ?`, id)
	return scanVolunteer(row)
}

func (s *SQLiteDB) GetVolunteerByProfile(ctx context.Context, profileID string) (*models.Volunteer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+volunteerColumns+` FROM volunteers WHERE profile_id = ?`, profileID)
	return scanVolunteer(row)
}

func (s *SQLiteDB) ListVolunteers(ctx context.Context, opts VolunteerFilter) ([]models.Volunteer, error) {
	query := `SELECT ` + volunteerColumns + ` FROM volunteers`
	var args []any

	if opts.Availability != nil {
		query += ` WHERE availability = ?`
		args = append(args, string(*opts.Availability))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list volunteers: %w", err)
	}
	defer rows.Close()

	volunteers := []models.Volunteer{}
	for rows.Next() {
		v, err := scanVolunteer(rows)
		if err != nil {
			return nil, err
		}
		volunteers = append(volunteers, *v)
	}
	return volunteers, rows.Err()
}

func (s *SQLiteDB) SetAvailability(ctx context.Context, profileID string, a models.Availability) (*models.Volunteer, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE volunteers SET availability = ?, updated_at = ? WHERE profile_id = ?`,
		string(a), time.Now().UTC(), profileID)
	if err != nil {
		return nil, fmt.Errorf("set availability: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetVolunteerByProfile(ctx, profileID)
}

func (s *SQLiteDB) IncrementAssigned(ctx context.Context, volunteerID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE volunteers SET total_assigned_tasks = total_assigned_tasks + 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), volunteerID)
	if err != nil {
		return fmt.Errorf("increment assigned: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteDB) RecordCompletion(ctx context.Context, volunteerID string, delta float64) error {
	// Missing reliability means the default 100 before the delta applies.
	res, err := s.db.ExecContext(ctx, `
		UPDATE volunteers
		SET completed_tasks = completed_tasks + 1,
			reliability_score = COALESCE(reliability_score, 100) + ?,
			updated_at = ?
		WHERE id = ?`,
		delta, time.Now().UTC(), volunteerID)
	if err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVolunteer(row rowScanner) (*models.Volunteer, error) {
	var (
		v           models.Volunteer
		skills      string
		avail       string
		phone       sql.NullString
		city        sql.NullString
		state       sql.NullString
		country     sql.NullString
		lat         sql.NullFloat64
		lng         sql.NullFloat64
		reliability sql.NullFloat64
	)

	err := row.Scan(&v.ID, &v.ProfileID, &v.Name, &v.Email, &phone, &skills, &avail,
		&city, &state, &country, &lat, &lng,
		&v.CompletedTasks, &v.TotalAssignedTasks, &reliability, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan volunteer: %w", err)
	}

	v.Skills, err = unmarshalStrings(skills)
	if err != nil {
		return nil, err
	}
	v.Availability = models.Availability(avail)
	v.Phone = phone.String
	v.City = city.String
	v.State = state.String
	v.Country = country.String
	v.Latitude = floatPtr(lat)
	v.Longitude = floatPtr(lng)
	v.ReliabilityScore = floatPtr(reliability)

	return &v, nil
}
