package model

import "time"

// MoodboardItem source kinds.
const (
	MoodboardSourceUpload = "upload"
	MoodboardSourceURL    = "url"
)

// MoodboardItem is a single image or link pinned to a board.
type MoodboardItem struct {
	ID      string `json:"id" db:"id"`
	BoardID string `json:"board_id" db:"board_id"`

	// Source records how the item entered the board (upload vs URL import).
	Source string `json:"source" db:"source"`

	// Title is either user-entered or fetched page metadata.
	Title string `json:"title" db:"title"`

	// ImageURL is the public object-storage URL or the imported remote image.
	ImageURL string `json:"image_url" db:"image_url"`

	// SourceURL is the original page for URL imports, empty for uploads.
	SourceURL string `json:"source_url,omitempty" db:"source_url"`

	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Moodboard groups items around a theme or season.
type Moodboard struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Season    string    `json:"season" db:"season"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
