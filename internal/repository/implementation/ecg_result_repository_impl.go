package implementation

import (
	"context"
	"errors"

	"cardionote-be/internal/entity"
	"cardionote-be/internal/mapper"
	"cardionote-be/internal/model"
	"cardionote-be/internal/repository/contract"
	"cardionote-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ECGResultRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ECGResultMapper
}

func NewECGResultRepository(db *gorm.DB) contract.ECGResultRepository {
	return &ECGResultRepositoryImpl{
		db:     db,
		mapper: mapper.NewECGResultMapper(),
	}
}

func (r *ECGResultRepositoryImpl) Create(ctx context.Context, result *entity.ECGResult) error {
	m := r.mapper.ToModel(result)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*result = *r.mapper.ToEntity(m)
	return nil
}

func (r *ECGResultRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.ECGResult{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ECGResultRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ECGResult{}, id).Error
}

func (r *ECGResultRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ECGResult, error) {
	var m model.ECGResult
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ECGResultRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ECGResult, error) {
	var models []*model.ECGResult
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ECGResultRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.ECGResult{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
