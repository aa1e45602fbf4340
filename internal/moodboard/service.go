// Package moodboard manages boards and their items. Items enter a board
// either as an uploaded image or as a URL import that pulls remote page
// metadata for a title and preview.
package moodboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/access"
	"github.com/atelierhq/atelier/internal/linkmeta"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/session"
	"github.com/atelierhq/atelier/internal/store"
)

// ErrPermissionDenied is returned when the actor's role cannot modify
// moodboards.
var ErrPermissionDenied = errors.New("permission denied")

// Uploader is the slice of object storage the service needs.
type Uploader interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, bucket string, paths []string) error
}

// MetaFetcher pulls page metadata for URL imports.
type MetaFetcher interface {
	Fetch(ctx context.Context, url string) (linkmeta.Meta, error)
}

// BoardInput is a validated board create payload.
type BoardInput struct {
	Name   string `validate:"required,max=200"`
	Season string `validate:"max=100"`
}

// ImportInput is a validated URL import payload.
type ImportInput struct {
	BoardID string `validate:"required"`
	URL     string `validate:"required,url"`
}

// Service drives moodboards against the store and object storage.
type Service struct {
	store    store.Store
	objects  Uploader
	meta     MetaFetcher
	bucket   string
	validate *validator.Validate
}

// NewService creates a moodboard service.
func NewService(st store.Store, objects Uploader, meta MetaFetcher, bucket string) *Service {
	return &Service{
		store:    st,
		objects:  objects,
		meta:     meta,
		bucket:   bucket,
		validate: validator.New(),
	}
}

// CreateBoard validates and stores a new board.
func (s *Service) CreateBoard(ctx context.Context, actor *session.Session, in BoardInput) error {
	if !access.Can(actor.Role, access.FeatureEditContent) {
		return ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("validating board: %w", err)
	}
	return s.store.CreateMoodboard(ctx, model.Moodboard{
		Name:      in.Name,
		Season:    in.Season,
		CreatedBy: actor.UserID,
	})
}

// Boards lists all boards.
func (s *Service) Boards(ctx context.Context) ([]model.Moodboard, error) {
	return s.store.ListMoodboards(ctx)
}

// UploadItem stores image bytes in object storage and pins the resulting
// public URL to the board.
func (s *Service) UploadItem(ctx context.Context, actor *session.Session, boardID, filename string, data []byte, contentType string) error {
	if !access.Can(actor.Role, access.FeatureEditContent) {
		return ErrPermissionDenied
	}
	if boardID == "" {
		return fmt.Errorf("upload requires a board id")
	}
	if len(data) == 0 {
		return fmt.Errorf("upload is empty")
	}
	if s.objects == nil {
		return fmt.Errorf("object storage is not configured")
	}

	objectPath := path.Join("moodboards", boardID, uuid.New().String()+path.Ext(filename))
	url, err := s.objects.Upload(ctx, s.bucket, objectPath, data, contentType)
	if err != nil {
		return fmt.Errorf("uploading moodboard image: %w", err)
	}

	return s.store.CreateMoodboardItem(ctx, model.MoodboardItem{
		BoardID:   boardID,
		Source:    model.MoodboardSourceUpload,
		Title:     filename,
		ImageURL:  url,
		CreatedBy: actor.UserID,
	})
}

// ImportURL pins a remote page to the board. Metadata fetch failures are
// logged and the item is created with placeholders; the import itself
// never fails on a slow or broken remote page.
func (s *Service) ImportURL(ctx context.Context, actor *session.Session, in ImportInput) error {
	if !access.Can(actor.Role, access.FeatureEditContent) {
		return ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("validating import: %w", err)
	}

	meta, err := s.meta.Fetch(ctx, in.URL)
	if err != nil {
		log.Printf("moodboard: metadata fetch for %s failed: %v", in.URL, err)
		meta = linkmeta.Meta{}
	}
	title := meta.Title
	if title == "" {
		title = in.URL
	}

	return s.store.CreateMoodboardItem(ctx, model.MoodboardItem{
		BoardID:   in.BoardID,
		Source:    model.MoodboardSourceURL,
		Title:     title,
		ImageURL:  meta.ImageURL,
		SourceURL: in.URL,
		CreatedBy: actor.UserID,
	})
}

// Items lists a board's items, newest first.
func (s *Service) Items(ctx context.Context, boardID string) ([]model.MoodboardItem, error) {
	return s.store.ListMoodboardItems(ctx, boardID)
}

// RemoveItem unpins an item from its board.
func (s *Service) RemoveItem(ctx context.Context, actor *session.Session, id string) error {
	if !access.Can(actor.Role, access.FeatureEditContent) {
		return ErrPermissionDenied
	}
	return s.store.DeleteMoodboardItem(ctx, id)
}
