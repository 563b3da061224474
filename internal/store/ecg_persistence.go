package store

import (
	"context"
	"time"

	"cardionote-be/internal/apperror"
	"cardionote-be/internal/entity"
	"cardionote-be/internal/repository/specification"
	"cardionote-be/internal/repository/unitofwork"
	"cardionote-be/pkg/changefeed"
	"cardionote-be/pkg/events"
	"cardionote-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const ecgResultsCollection = "ecg_results"

// ECGResultPersistence mirrors NotePersistence for the analysis results
// collection. Inserts are seeded with the webhook's raw analysis; the
// later pipeline stages arrive as partial updates.
type ECGResultPersistence struct {
	uowFactory unitofwork.RepositoryFactory
	feed       *changefeed.Feed
	publisher  *nats.Publisher
}

func NewECGResultPersistence(uowFactory unitofwork.RepositoryFactory, feed *changefeed.Feed, publisher *nats.Publisher) *ECGResultPersistence {
	return &ECGResultPersistence{
		uowFactory: uowFactory,
		feed:       feed,
		publisher:  publisher,
	}
}

func (p *ECGResultPersistence) List(ctx context.Context, ownerID uuid.UUID) ([]entity.ECGResult, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)

	rows, err := uow.ECGResultRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: ownerID},
		specification.UpdatedDesc(),
	)
	if err != nil {
		return nil, apperror.NewPersistenceError("list", err)
	}

	results := make([]entity.ECGResult, len(rows))
	for i, row := range rows {
		results[i] = *row
	}
	return results, nil
}

func (p *ECGResultPersistence) Insert(ctx context.Context, ownerID uuid.UUID, defaults map[string]interface{}) (entity.ECGResult, error) {
	result := entity.ECGResult{
		Id:     uuid.New(),
		UserId: ownerID,
	}
	if raw, ok := defaults["raw_analysis"].(string); ok {
		result.RawAnalysis = raw
	}
	if imageURL, ok := defaults["image_url"].(string); ok && imageURL != "" {
		result.ImageURL = &imageURL
	}

	uow := p.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ECGResultRepository().Create(ctx, &result); err != nil {
		return entity.ECGResult{}, apperror.NewPersistenceError("insert", err)
	}

	p.announce(ctx, changefeed.KindInsert, ownerID, result.Id)
	return result, nil
}

func (p *ECGResultPersistence) Update(ctx context.Context, ownerID uuid.UUID, id uuid.UUID, fields map[string]interface{}) error {
	uow := p.uowFactory.NewUnitOfWork(ctx)

	owned, err := uow.ECGResultRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: ownerID},
	)
	if err != nil {
		return apperror.NewPersistenceError("update", err)
	}
	if owned == nil {
		return apperror.NewPersistenceError("update", gorm.ErrRecordNotFound)
	}

	columns := make(map[string]interface{}, len(fields))
	for name, value := range fields {
		switch name {
		case "interpretation", "action_plan", "image_url", "raw_analysis":
			columns[name] = value
		}
	}

	if err := uow.ECGResultRepository().UpdateFields(ctx, id, columns); err != nil {
		return apperror.NewPersistenceError("update", err)
	}

	p.announce(ctx, changefeed.KindUpdate, ownerID, id)
	return nil
}

func (p *ECGResultPersistence) Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error {
	uow := p.uowFactory.NewUnitOfWork(ctx)

	owned, err := uow.ECGResultRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: ownerID},
	)
	if err != nil {
		return apperror.NewPersistenceError("delete", err)
	}
	if owned == nil {
		return apperror.NewPersistenceError("delete", gorm.ErrRecordNotFound)
	}

	if err := uow.ECGResultRepository().Delete(ctx, id); err != nil {
		return apperror.NewPersistenceError("delete", err)
	}

	p.announce(ctx, changefeed.KindDelete, ownerID, id)
	return nil
}

func (p *ECGResultPersistence) Subscribe(ownerID uuid.UUID, onChange func()) (func(), error) {
	cancel, err := p.feed.Subscribe(ecgResultsCollection, ownerID, func(changefeed.Change) {
		onChange()
	})
	if err != nil {
		return nil, apperror.NewPersistenceError("subscribe", err)
	}
	return cancel, nil
}

func (p *ECGResultPersistence) announce(ctx context.Context, kind changefeed.Kind, ownerID, entityID uuid.UUID) {
	_ = p.feed.Publish(ecgResultsCollection, changefeed.Change{
		Kind:     kind,
		OwnerID:  ownerID,
		EntityID: entityID,
		At:       time.Now(),
	})

	if p.publisher != nil {
		_ = p.publisher.Publish(ctx, events.BaseEvent{
			Type: events.TypeECGResultChanged,
			Data: map[string]interface{}{
				"kind":      string(kind),
				"user_id":   ownerID.String(),
				"entity_id": entityID.String(),
			},
			OccurredAt: time.Now(),
		})
	}
}
