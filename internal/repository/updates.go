package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/reliefops/volunteer-match/internal/models"
)

func (s *SQLiteDB) AddUpdate(ctx context.Context, u *models.Update) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO updates (id, title, message, priority, category, disaster_id, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Title, u.Message, u.Priority, u.Category, u.DisasterID, u.CreatedBy, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert update: %w", err)
	}
	return nil
}

func (s *SQLiteDB) ListUpdates(ctx context.Context, opts UpdateFilter) ([]models.Update, error) {
	query := `SELECT id, title, message, priority, category, disaster_id, created_by, created_at
		FROM updates WHERE 1=1`
	var args []any

	if opts.Priority != nil {
		query += ` AND priority = ?`
		args = append(args, *opts.Priority)
	}
	if opts.Category != nil {
		query += ` AND category = ?`
		args = append(args, *opts.Category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}
	defer rows.Close()

	updates := []models.Update{}
	for rows.Next() {
		var (
			u          models.Update
			disasterID sql.NullString
			createdBy  sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Title, &u.Message, &u.Priority, &u.Category, &disasterID, &createdBy, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan update: %w", err)
		}
		u.DisasterID = disasterID.String
		u.CreatedBy = createdBy.String
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

func (s *SQLiteDB) DeleteUpdate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM updates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
