package entity

import (
	"time"

	"github.com/google/uuid"
)

// ECGResult holds one analysis pipeline run. RawAnalysis is filled at
// submission time; Interpretation and ActionPlan are filled by later
// stages. The stage ordering (raw -> interpretation -> action plan) is a
// workflow convention checked at the service layer, not by the schema.
type ECGResult struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	RawAnalysis    string
	Interpretation *string
	ActionPlan     *string
	ImageURL       *string
	UserId         uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
