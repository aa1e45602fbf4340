// Package library manages the material and label libraries: thin,
// validated CRUD over the store.
package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/atelierhq/atelier/internal/access"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/session"
	"github.com/atelierhq/atelier/internal/store"
)

// ErrPermissionDenied is returned when the actor's role cannot modify
// library content.
var ErrPermissionDenied = errors.New("permission denied")

// MaterialInput is a validated material create/update payload.
type MaterialInput struct {
	Name      string `validate:"required,max=200"`
	Supplier  string `validate:"max=200"`
	Reference string `validate:"max=100"`
	Notes     string `validate:"max=2000"`
	ImageURL  string `validate:"omitempty,url"`
}

// LabelInput is a validated label create/update payload.
type LabelInput struct {
	Name     string `validate:"required,max=200"`
	Kind     string `validate:"max=100"`
	Notes    string `validate:"max=2000"`
	ImageURL string `validate:"omitempty,url"`
}

// Service drives the libraries against the store.
type Service struct {
	store    store.Store
	validate *validator.Validate
}

// NewService creates a library service.
func NewService(st store.Store) *Service {
	return &Service{store: st, validate: validator.New()}
}

// CreateMaterial validates and stores a new material.
func (s *Service) CreateMaterial(ctx context.Context, actor *session.Session, in MaterialInput) error {
	if !access.Can(actor.Role, access.FeatureEditContent) {
		return ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("validating material: %w", err)
	}
	return s.store.CreateMaterial(ctx, model.Material{
		Name:      in.Name,
		Supplier:  in.Supplier,
		Reference: in.Reference,
		Notes:     in.Notes,
		ImageURL:  in.ImageURL,
		CreatedBy: actor.UserID,
	})
}

// UpdateMaterial validates and applies changes to an existing material.
func (s *Service) UpdateMaterial(ctx context.Context, actor *session.Session, id string, in MaterialInput) error {
	if !access.Can(actor.Role, access.FeatureEditContent) {
		return ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("validating material: %w", err)
	}
	return s.store.UpdateMaterial(ctx, model.Material{
		ID:        id,
		Name:      in.Name,
		Supplier:  in.Supplier,
		Reference: in.Reference,
		Notes:     in.Notes,
		ImageURL:  in.ImageURL,
	})
}

// DeleteMaterial removes a material.
func (s *Service) DeleteMaterial(ctx context.Context, actor *session.Session, id string) error {
	if !access.Can(actor.Role, access.FeatureEditContent) {
		return ErrPermissionDenied
	}
	return s.store.DeleteMaterial(ctx, id)
}

// Materials lists the material library.
func (s *Service) Materials(ctx context.Context) ([]model.Material, error) {
	return s.store.ListMaterials(ctx)
}

// CreateLabel validates and stores a new label.
func (s *Service) CreateLabel(ctx context.Context, actor *session.Session, in LabelInput) error {
	if !access.Can(actor.Role, access.FeatureEditContent) {
		return ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("validating label: %w", err)
	}
	return s.store.CreateLabel(ctx, model.Label{
		Name:      in.Name,
		Kind:      in.Kind,
		Notes:     in.Notes,
		ImageURL:  in.ImageURL,
		CreatedBy: actor.UserID,
	})
}

// UpdateLabel validates and applies changes to an existing label.
func (s *Service) UpdateLabel(ctx context.Context, actor *session.Session, id string, in LabelInput) error {
	if !access.Can(actor.Role, access.FeatureEditContent) {
		return ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("validating label: %w", err)
	}
	return s.store.UpdateLabel(ctx, model.Label{
		ID:       id,
		Name:     in.Name,
		Kind:     in.Kind,
		Notes:    in.Notes,
		ImageURL: in.ImageURL,
	})
}

// DeleteLabel removes a label.
func (s *Service) DeleteLabel(ctx context.Context, actor *session.Session, id string) error {
	if !access.Can(actor.Role, access.FeatureEditContent) {
		return ErrPermissionDenied
	}
	return s.store.DeleteLabel(ctx, id)
}

// Labels lists the label library.
func (s *Service) Labels(ctx context.Context) ([]model.Label, error) {
	return s.store.ListLabels(ctx)
}
