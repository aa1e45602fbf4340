package model

import (
	"strings"
	"time"
)

// Profile is a team member record used for sign-in context, mention
// candidates, and task assignment.
type Profile struct {
	// ID is the opaque unique identifier assigned by the backend.
	ID string `json:"id" db:"id"`

	// FirstName and LastName are the split name fields; either may be empty.
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`

	// FullName is the fallback display form when the split fields are absent.
	FullName string `json:"full_name" db:"full_name"`

	// Role is the coarse permission role (see internal/access).
	Role string `json:"role" db:"role"`

	// AvatarURL points at the profile image in object storage, if any.
	AvatarURL string `json:"avatar_url,omitempty" db:"avatar_url"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DisplayName returns "First Last" when both parts are present, the full
// name otherwise, and a placeholder when the profile has no usable name.
func (p Profile) DisplayName() string {
	first := strings.TrimSpace(p.FirstName)
	last := strings.TrimSpace(p.LastName)
	if first != "" && last != "" {
		return first + " " + last
	}
	if full := strings.TrimSpace(p.FullName); full != "" {
		return full
	}
	return "Unknown member"
}
