package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/model"
)

const moodboardColumns = "id, name, season, created_by, created_at"
const moodboardItemColumns = "id, board_id, source, title, image_url, source_url, created_by, created_at"

// CreateMoodboard inserts a new board. Generates a UUID if ID is empty.
func (s *SQLStore) CreateMoodboard(ctx context.Context, b model.Moodboard) error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("moodboard name must not be empty")
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO moodboards (`+moodboardColumns+`)
		VALUES (?, ?, ?, ?, ?)`),
		b.ID, b.Name, b.Season, b.CreatedBy, b.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating moodboard: %w", err)
	}
	return nil
}

// ListMoodboards retrieves all boards, newest first.
func (s *SQLStore) ListMoodboards(ctx context.Context) ([]model.Moodboard, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT "+moodboardColumns+" FROM moodboards ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("querying moodboards: %w", err)
	}
	defer rows.Close()

	var boards []model.Moodboard
	for rows.Next() {
		var b model.Moodboard
		if err := rows.Scan(&b.ID, &b.Name, &b.Season, &b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning moodboard row: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// CreateMoodboardItem inserts a new item onto a board. Generates a UUID if
// ID is empty.
func (s *SQLStore) CreateMoodboardItem(ctx context.Context, it model.MoodboardItem) error {
	if it.BoardID == "" {
		return fmt.Errorf("moodboard item requires a board id")
	}
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	if it.Source == "" {
		it.Source = model.MoodboardSourceUpload
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO moodboard_items (`+moodboardItemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		it.ID, it.BoardID, it.Source, it.Title, it.ImageURL, it.SourceURL,
		it.CreatedBy, it.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating moodboard item: %w", err)
	}
	return nil
}

// ListMoodboardItems retrieves all items on a board, newest first.
func (s *SQLStore) ListMoodboardItems(ctx context.Context, boardID string) ([]model.MoodboardItem, error) {
	rows, err := s.db.QueryxContext(ctx, s.rebind(
		"SELECT "+moodboardItemColumns+" FROM moodboard_items WHERE board_id = ? ORDER BY created_at DESC"),
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying moodboard items: %w", err)
	}
	defer rows.Close()

	var items []model.MoodboardItem
	for rows.Next() {
		var it model.MoodboardItem
		err := rows.Scan(
			&it.ID, &it.BoardID, &it.Source, &it.Title, &it.ImageURL,
			&it.SourceURL, &it.CreatedBy, &it.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning moodboard item row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// DeleteMoodboardItem removes an item by ID.
func (s *SQLStore) DeleteMoodboardItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind(
		"DELETE FROM moodboard_items WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting moodboard item %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
