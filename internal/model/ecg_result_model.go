package model

import (
	"time"

	"github.com/google/uuid"
)

type ECGResult struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RawAnalysis    string    `gorm:"type:text;not null"`
	Interpretation *string   `gorm:"type:text"`
	ActionPlan     *string   `gorm:"type:text"`
	ImageURL       *string   `gorm:"type:varchar(2048)"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime;index"`
}

func (ECGResult) TableName() string {
	return "ecg_results"
}
