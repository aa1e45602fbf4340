package session

import (
	"context"
	"errors"
	"testing"

	"github.com/atelierhq/atelier/internal/access"
	"github.com/atelierhq/atelier/internal/credential"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/tests/testutil"
)

type fakeCreds struct {
	values  map[string]string
	deleted []string
}

func (f *fakeCreds) Get(key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (f *fakeCreds) Delete(key string) error {
	delete(f.values, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func TestEstablish(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewTestStore(t)

	err := st.UpsertProfile(ctx, model.Profile{
		ID:        "u1",
		FirstName: "Anna",
		LastName:  "Bergström",
		Role:      "manager",
	})
	if err != nil {
		t.Fatalf("seeding profile: %v", err)
	}

	creds := &fakeCreds{values: map[string]string{credential.KeyUserID: "u1"}}
	sess, err := Establish(ctx, creds, st)
	if err != nil {
		t.Fatalf("Establish: %v", err)
	}

	if sess.UserID != "u1" {
		t.Errorf("UserID = %q", sess.UserID)
	}
	if sess.DisplayName != "Anna Bergström" {
		t.Errorf("DisplayName = %q", sess.DisplayName)
	}
	if sess.Role != access.RoleManager {
		t.Errorf("Role = %q", sess.Role)
	}
}

func TestEstablishSignedOut(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewTestStore(t)

	_, err := Establish(ctx, &fakeCreds{values: map[string]string{}}, st)
	if !errors.Is(err, ErrSignedOut) {
		t.Errorf("expected ErrSignedOut with empty keyring, got %v", err)
	}

	// A stored id without a matching profile is also signed out.
	creds := &fakeCreds{values: map[string]string{credential.KeyUserID: "ghost"}}
	_, err = Establish(ctx, creds, st)
	if !errors.Is(err, ErrSignedOut) {
		t.Errorf("expected ErrSignedOut for missing profile, got %v", err)
	}
}

func TestSignOut(t *testing.T) {
	creds := &fakeCreds{values: map[string]string{
		credential.KeyUserID: "u1",
		credential.KeyToken:  "tok",
	}}

	if err := SignOut(creds); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if len(creds.values) != 0 {
		t.Errorf("credentials left behind: %v", creds.values)
	}
}
