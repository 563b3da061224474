package store

import (
	"context"
	"encoding/json"
	"time"

	"cardionote-be/internal/apperror"
	"cardionote-be/internal/entity"
	"cardionote-be/internal/repository/specification"
	"cardionote-be/internal/repository/unitofwork"
	"cardionote-be/pkg/changefeed"
	"cardionote-be/pkg/events"
	"cardionote-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const notesCollection = "notes"

// NotePersistence is the remote side of the notes store: rows live in
// Postgres, row changes go out on the in-process feed (which triggers
// store reloads) and on NATS (which reaches the owner's browser tabs).
type NotePersistence struct {
	uowFactory unitofwork.RepositoryFactory
	feed       *changefeed.Feed
	publisher  *nats.Publisher
}

func NewNotePersistence(uowFactory unitofwork.RepositoryFactory, feed *changefeed.Feed, publisher *nats.Publisher) *NotePersistence {
	return &NotePersistence{
		uowFactory: uowFactory,
		feed:       feed,
		publisher:  publisher,
	}
}

func (p *NotePersistence) List(ctx context.Context, ownerID uuid.UUID) ([]entity.Note, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)

	rows, err := uow.NoteRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: ownerID},
		specification.UpdatedDesc(),
	)
	if err != nil {
		return nil, apperror.NewPersistenceError("list", err)
	}

	notes := make([]entity.Note, len(rows))
	for i, row := range rows {
		notes[i] = *row
	}
	return notes, nil
}

func (p *NotePersistence) Insert(ctx context.Context, ownerID uuid.UUID, defaults map[string]interface{}) (entity.Note, error) {
	note := entity.Note{
		Id:     uuid.New(),
		Title:  entity.DefaultNoteTitle,
		UserId: ownerID,
	}
	if title, ok := defaults["title"].(string); ok && title != "" {
		note.Title = title
	}
	if content, ok := defaults["content"].(string); ok {
		note.Content = content
	}

	uow := p.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return entity.Note{}, apperror.NewPersistenceError("insert", err)
	}

	p.announce(ctx, changefeed.KindInsert, ownerID, note.Id)
	return note, nil
}

func (p *NotePersistence) Update(ctx context.Context, ownerID uuid.UUID, id uuid.UUID, fields map[string]interface{}) error {
	uow := p.uowFactory.NewUnitOfWork(ctx)

	// Ownership check before the write; UpdateFields itself is keyed by
	// id only.
	owned, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: ownerID},
	)
	if err != nil {
		return apperror.NewPersistenceError("update", err)
	}
	if owned == nil {
		return apperror.NewPersistenceError("update", gorm.ErrRecordNotFound)
	}

	if err := uow.NoteRepository().UpdateFields(ctx, id, columnizeNoteFields(fields)); err != nil {
		return apperror.NewPersistenceError("update", err)
	}

	p.announce(ctx, changefeed.KindUpdate, ownerID, id)
	return nil
}

func (p *NotePersistence) Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error {
	uow := p.uowFactory.NewUnitOfWork(ctx)

	owned, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: ownerID},
	)
	if err != nil {
		return apperror.NewPersistenceError("delete", err)
	}
	if owned == nil {
		return apperror.NewPersistenceError("delete", gorm.ErrRecordNotFound)
	}

	if err := uow.NoteRepository().Delete(ctx, id); err != nil {
		return apperror.NewPersistenceError("delete", err)
	}

	p.announce(ctx, changefeed.KindDelete, ownerID, id)
	return nil
}

func (p *NotePersistence) Subscribe(ownerID uuid.UUID, onChange func()) (func(), error) {
	cancel, err := p.feed.Subscribe(notesCollection, ownerID, func(changefeed.Change) {
		onChange()
	})
	if err != nil {
		return nil, apperror.NewPersistenceError("subscribe", err)
	}
	return cancel, nil
}

// announce publishes the row change on both channels. The NATS publish
// is best effort; a down bus must not fail the write that already
// committed.
func (p *NotePersistence) announce(ctx context.Context, kind changefeed.Kind, ownerID, entityID uuid.UUID) {
	_ = p.feed.Publish(notesCollection, changefeed.Change{
		Kind:     kind,
		OwnerID:  ownerID,
		EntityID: entityID,
		At:       time.Now(),
	})

	if p.publisher != nil {
		_ = p.publisher.Publish(ctx, events.BaseEvent{
			Type: events.TypeNoteChanged,
			Data: map[string]interface{}{
				"kind":      string(kind),
				"user_id":   ownerID.String(),
				"entity_id": entityID.String(),
			},
			OccurredAt: time.Now(),
		})
	}
}

// columnizeNoteFields maps API field names onto database columns. Tags
// arrive as []string and must be re-encoded for the jsonb column.
func columnizeNoteFields(fields map[string]interface{}) map[string]interface{} {
	columns := make(map[string]interface{}, len(fields))
	for name, value := range fields {
		switch name {
		case "title", "content":
			columns[name] = value
		case "tags":
			if tags, ok := value.([]string); ok {
				if raw, err := json.Marshal(tags); err == nil {
					columns["tags"] = datatypes.JSON(raw)
				}
			}
		}
	}
	return columns
}
