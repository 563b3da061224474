package dto

import (
	"time"

	"github.com/google/uuid"
)

type AnalyzeECGResponse struct {
	Id          uuid.UUID `json:"id"`
	RawAnalysis string    `json:"raw_analysis"`
	RenderedRaw string    `json:"rendered_raw"` // HTML rendering of the analysis text
}

type ECGResultResponse struct {
	Id             uuid.UUID `json:"id"`
	RawAnalysis    string    `json:"raw_analysis"`
	Interpretation *string   `json:"interpretation"`
	ActionPlan     *string   `json:"action_plan"`
	ImageURL       *string   `json:"image_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ECGResultListResponse struct {
	Results  []*ECGResultResponse `json:"results"`
	Selected *uuid.UUID           `json:"selected,omitempty"`
}

type InterpretECGResponse struct {
	Id             uuid.UUID `json:"id"`
	Interpretation string    `json:"interpretation"`
}

type PlanActionECGResponse struct {
	Id         uuid.UUID `json:"id"`
	ActionPlan string    `json:"action_plan"`
}
