package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/model"
)

const profileColumns = "id, first_name, last_name, full_name, role, avatar_url, created_at"

// UpsertProfile inserts or updates a profile row. Generates a UUID if ID
// is empty.
func (s *SQLStore) UpsertProfile(ctx context.Context, p model.Profile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name  = excluded.last_name,
			full_name  = excluded.full_name,
			role       = excluded.role,
			avatar_url = excluded.avatar_url`),
		p.ID, p.FirstName, p.LastName, p.FullName, p.Role, p.AvatarURL,
		p.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting profile %s: %w", p.ID, err)
	}
	return nil
}

// GetProfile retrieves a single profile by ID.
func (s *SQLStore) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	row := s.db.QueryRowxContext(ctx, s.rebind(
		"SELECT "+profileColumns+" FROM profiles WHERE id = ?"), id)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile %s: %w", id, err)
	}
	return &p, nil
}

// ListProfiles retrieves all profiles ordered by name.
func (s *SQLStore) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT "+profileColumns+" FROM profiles ORDER BY first_name, last_name, full_name")
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// scanProfile scans a profile row from either sqlx.Rows or sqlx.Row.
func scanProfile(row interface{ Scan(dest ...interface{}) error }) (model.Profile, error) {
	var p model.Profile
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.FullName, &p.Role,
		&p.AvatarURL, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, err
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("scanning profile row: %w", err)
	}
	return p, nil
}
