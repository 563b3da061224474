package mapper

import (
	"cardionote-be/internal/entity"
	"cardionote-be/internal/model"
)

type ECGResultMapper struct{}

func NewECGResultMapper() *ECGResultMapper {
	return &ECGResultMapper{}
}

func (m *ECGResultMapper) ToEntity(r *model.ECGResult) *entity.ECGResult {
	if r == nil {
		return nil
	}

	return &entity.ECGResult{
		Id:             r.Id,
		RawAnalysis:    r.RawAnalysis,
		Interpretation: r.Interpretation,
		ActionPlan:     r.ActionPlan,
		ImageURL:       r.ImageURL,
		UserId:         r.UserId,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (m *ECGResultMapper) ToModel(r *entity.ECGResult) *model.ECGResult {
	if r == nil {
		return nil
	}

	return &model.ECGResult{
		Id:             r.Id,
		RawAnalysis:    r.RawAnalysis,
		Interpretation: r.Interpretation,
		ActionPlan:     r.ActionPlan,
		ImageURL:       r.ImageURL,
		UserId:         r.UserId,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (m *ECGResultMapper) ToEntities(results []*model.ECGResult) []*entity.ECGResult {
	entities := make([]*entity.ECGResult, len(results))
	for i, r := range results {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
