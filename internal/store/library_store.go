package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/model"
)

const materialColumns = "id, name, supplier, reference, notes, image_url, created_by, created_at, updated_at"
const labelColumns = "id, name, kind, notes, image_url, created_by, created_at, updated_at"

// CreateMaterial inserts a new material record. Generates a UUID if ID is empty.
func (s *SQLStore) CreateMaterial(ctx context.Context, m model.Material) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("material name must not be empty")
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO materials (`+materialColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		m.ID, m.Name, m.Supplier, m.Reference, m.Notes, m.ImageURL,
		m.CreatedBy, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating material: %w", err)
	}
	return nil
}

// UpdateMaterial updates an existing material by ID.
func (s *SQLStore) UpdateMaterial(ctx context.Context, m model.Material) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("material name must not be empty")
	}

	result, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE materials SET name = ?, supplier = ?, reference = ?, notes = ?,
			image_url = ?, updated_at = ?
		WHERE id = ?`),
		m.Name, m.Supplier, m.Reference, m.Notes, m.ImageURL,
		time.Now().UTC(), m.ID,
	)
	if err != nil {
		return fmt.Errorf("updating material %s: %w", m.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMaterial removes a material by ID.
func (s *SQLStore) DeleteMaterial(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM materials WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting material %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListMaterials retrieves all materials ordered by name.
func (s *SQLStore) ListMaterials(ctx context.Context) ([]model.Material, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT "+materialColumns+" FROM materials ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying materials: %w", err)
	}
	defer rows.Close()

	var materials []model.Material
	for rows.Next() {
		var m model.Material
		err := rows.Scan(
			&m.ID, &m.Name, &m.Supplier, &m.Reference, &m.Notes,
			&m.ImageURL, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning material row: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

// CreateLabel inserts a new label record. Generates a UUID if ID is empty.
func (s *SQLStore) CreateLabel(ctx context.Context, l model.Label) error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("label name must not be empty")
	}
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO labels (`+labelColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		l.ID, l.Name, l.Kind, l.Notes, l.ImageURL,
		l.CreatedBy, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating label: %w", err)
	}
	return nil
}

// UpdateLabel updates an existing label by ID.
func (s *SQLStore) UpdateLabel(ctx context.Context, l model.Label) error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("label name must not be empty")
	}

	result, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE labels SET name = ?, kind = ?, notes = ?, image_url = ?, updated_at = ?
		WHERE id = ?`),
		l.Name, l.Kind, l.Notes, l.ImageURL, time.Now().UTC(), l.ID,
	)
	if err != nil {
		return fmt.Errorf("updating label %s: %w", l.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteLabel removes a label by ID.
func (s *SQLStore) DeleteLabel(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM labels WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting label %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListLabels retrieves all labels ordered by name.
func (s *SQLStore) ListLabels(ctx context.Context) ([]model.Label, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT "+labelColumns+" FROM labels ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying labels: %w", err)
	}
	defer rows.Close()

	var labels []model.Label
	for rows.Next() {
		var l model.Label
		err := rows.Scan(
			&l.ID, &l.Name, &l.Kind, &l.Notes, &l.ImageURL,
			&l.CreatedBy, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning label row: %w", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}
