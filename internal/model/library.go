package model

import "time"

// Material is a fabric/trim record in the material library.
type Material struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Supplier  string    `json:"supplier" db:"supplier"`
	Reference string    `json:"reference" db:"reference"`
	Notes     string    `json:"notes" db:"notes"`
	ImageURL  string    `json:"image_url,omitempty" db:"image_url"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Label is a care/brand label record in the label library.
type Label struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Kind      string    `json:"kind" db:"kind"`
	Notes     string    `json:"notes" db:"notes"`
	ImageURL  string    `json:"image_url,omitempty" db:"image_url"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
