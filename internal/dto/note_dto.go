package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

// UpdateNoteRequest carries partial fields; nil pointers are left
// untouched by the update.
type UpdateNoteRequest struct {
	Id      uuid.UUID
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
}

type NoteResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NoteListResponse struct {
	Notes    []*NoteResponse `json:"notes"`
	Selected *uuid.UUID      `json:"selected,omitempty"`
}

type SelectNoteRequest struct {
	Id uuid.UUID `json:"id" validate:"required"`
}
