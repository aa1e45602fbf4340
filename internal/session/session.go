// Package session builds the signed-in user context. The Session is an
// explicitly constructed object passed to the components that need it;
// there is no package-level current-user state.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/atelierhq/atelier/internal/access"
	"github.com/atelierhq/atelier/internal/credential"
	"github.com/atelierhq/atelier/internal/store"
)

// ErrSignedOut indicates no usable sign-in state exists in the keyring.
var ErrSignedOut = errors.New("not signed in")

// Credentials abstracts the system keyring so session logic is testable
// without one.
type Credentials interface {
	Get(key string) (string, error)
	Delete(key string) error
}

// Keyring is the production Credentials backed by the system keyring.
type Keyring struct{}

func (Keyring) Get(key string) (string, error) { return credential.Get(key) }
func (Keyring) Delete(key string) error        { return credential.Delete(key) }

// Session is the resolved identity and role of the signed-in user.
type Session struct {
	UserID      string
	DisplayName string
	Role        access.Role
}

// Establish resolves the stored user id into a full session by loading the
// matching profile. It returns ErrSignedOut when no user id is stored.
func Establish(ctx context.Context, creds Credentials, st store.Store) (*Session, error) {
	userID, err := creds.Get(credential.KeyUserID)
	if err != nil || userID == "" {
		return nil, ErrSignedOut
	}

	p, err := st.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("stored user %s has no profile: %w", userID, ErrSignedOut)
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	return &Session{
		UserID:      p.ID,
		DisplayName: p.DisplayName(),
		Role:        access.ParseRole(p.Role),
	}, nil
}

// SignOut removes the stored credentials. Both keys are attempted even if
// the first removal fails.
func SignOut(creds Credentials) error {
	idErr := creds.Delete(credential.KeyUserID)
	tokenErr := creds.Delete(credential.KeyToken)
	if idErr != nil {
		return fmt.Errorf("clearing user id: %w", idErr)
	}
	if tokenErr != nil {
		return fmt.Errorf("clearing token: %w", tokenErr)
	}
	return nil
}
