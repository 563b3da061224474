package service

import (
	"context"

	"cardionote-be/internal/dto"
	"cardionote-be/internal/entity"
	"cardionote-be/internal/store"

	"github.com/google/uuid"
)

type INoteService interface {
	List(ctx context.Context, userID uuid.UUID) (*dto.NoteListResponse, error)
	Create(ctx context.Context, userID uuid.UUID) (*dto.CreateNoteResponse, error)
	Update(ctx context.Context, userID uuid.UUID, req *dto.UpdateNoteRequest) error
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
	Select(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
	Cleanup(userID uuid.UUID)
}

// noteService fronts the synchronized notes collection. Every request
// works against the owner's store; the store keeps itself reconciled
// with the database through the change feed.
type noteService struct {
	stores *store.Manager[entity.Note]
}

func NewNoteService(stores *store.Manager[entity.Note]) INoteService {
	return &noteService{stores: stores}
}

func (c *noteService) List(ctx context.Context, userID uuid.UUID) (*dto.NoteListResponse, error) {
	s := c.stores.For(userID)
	if s.State() == store.StateIdle {
		if err := s.Load(ctx); err != nil {
			return nil, err
		}
	}

	items := s.Items()
	notes := make([]*dto.NoteResponse, len(items))
	for i, note := range items {
		notes[i] = toNoteResponse(note)
	}

	resp := &dto.NoteListResponse{Notes: notes}
	if selected := s.Selected(); selected != uuid.Nil {
		resp.Selected = &selected
	}
	return resp, nil
}

func (c *noteService) Create(ctx context.Context, userID uuid.UUID) (*dto.CreateNoteResponse, error) {
	id, err := c.stores.For(userID).Create(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &dto.CreateNoteResponse{Id: id}, nil
}

func (c *noteService) Update(ctx context.Context, userID uuid.UUID, req *dto.UpdateNoteRequest) error {
	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Content != nil {
		fields["content"] = *req.Content
	}
	if req.Tags != nil {
		fields["tags"] = *req.Tags
	}
	if len(fields) == 0 {
		return nil
	}

	return c.stores.For(userID).Update(ctx, req.Id, fields)
}

func (c *noteService) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	return c.stores.For(userID).Delete(ctx, id)
}

func (c *noteService) Select(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	c.stores.For(userID).Select(id)
	return nil
}

// Cleanup releases the owner's store on session end.
func (c *noteService) Cleanup(userID uuid.UUID) {
	c.stores.Drop(userID)
}

func toNoteResponse(note entity.Note) *dto.NoteResponse {
	return &dto.NoteResponse{
		Id:        note.Id,
		Title:     note.Title,
		Content:   note.Content,
		Tags:      note.Tags,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}
