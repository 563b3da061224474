package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultNoteTitle is the placeholder assigned when a note is created
// without an explicit title.
const DefaultNoteTitle = "Untitled Note"

type Note struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string
	Content   string
	Tags      []string
	UserId    uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
