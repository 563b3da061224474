package contract

import (
	"context"

	"cardionote-be/internal/entity"
	"cardionote-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ECGResultRepository interface {
	Create(ctx context.Context, result *entity.ECGResult) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ECGResult, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ECGResult, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
