package library

import (
	"context"
	"errors"
	"testing"

	"github.com/atelierhq/atelier/internal/access"
	"github.com/atelierhq/atelier/internal/session"
	"github.com/atelierhq/atelier/tests/testutil"
)

func actor(role access.Role) *session.Session {
	return &session.Session{UserID: "u1", DisplayName: "Anna", Role: role}
}

func TestMaterialCRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewTestStore(t))
	staff := actor(access.RoleStaff)

	err := svc.CreateMaterial(ctx, staff, MaterialInput{
		Name:     "Linen 220g",
		Supplier: "Libeco",
		ImageURL: "https://cdn.example/linen.jpg",
	})
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}

	materials, err := svc.Materials(ctx)
	if err != nil {
		t.Fatalf("Materials: %v", err)
	}
	if len(materials) != 1 || materials[0].CreatedBy != "u1" {
		t.Fatalf("materials = %+v", materials)
	}

	err = svc.UpdateMaterial(ctx, staff, materials[0].ID, MaterialInput{
		Name:     "Linen 220g washed",
		Supplier: "Libeco",
	})
	if err != nil {
		t.Fatalf("UpdateMaterial: %v", err)
	}

	if err := svc.DeleteMaterial(ctx, staff, materials[0].ID); err != nil {
		t.Fatalf("DeleteMaterial: %v", err)
	}
	materials, _ = svc.Materials(ctx)
	if len(materials) != 0 {
		t.Errorf("materials left after delete: %d", len(materials))
	}
}

func TestMaterialValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewTestStore(t))
	staff := actor(access.RoleStaff)

	if err := svc.CreateMaterial(ctx, staff, MaterialInput{}); err == nil {
		t.Error("missing name accepted")
	}
	err := svc.CreateMaterial(ctx, staff, MaterialInput{Name: "x", ImageURL: "not a url"})
	if err == nil {
		t.Error("malformed image url accepted")
	}
}

func TestViewerCannotModify(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewTestStore(t))
	viewer := actor(access.RoleViewer)

	if err := svc.CreateMaterial(ctx, viewer, MaterialInput{Name: "x"}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("CreateMaterial as viewer: %v", err)
	}
	if err := svc.CreateLabel(ctx, viewer, LabelInput{Name: "x"}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("CreateLabel as viewer: %v", err)
	}
	if err := svc.DeleteLabel(ctx, viewer, "any"); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("DeleteLabel as viewer: %v", err)
	}
}

func TestLabelCRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewTestStore(t))
	staff := actor(access.RoleStaff)

	if err := svc.CreateLabel(ctx, staff, LabelInput{Name: "Care label FW26", Kind: "care"}); err != nil {
		t.Fatalf("CreateLabel: %v", err)
	}

	labels, err := svc.Labels(ctx)
	if err != nil {
		t.Fatalf("Labels: %v", err)
	}
	if len(labels) != 1 || labels[0].Kind != "care" {
		t.Fatalf("labels = %+v", labels)
	}
}
