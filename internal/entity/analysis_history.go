package entity

import (
	"time"

	"gorm.io/datatypes"
)

// AnalysisHistory is one saved analysis result.
type AnalysisHistory struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Symbol         string         `gorm:"not null;index:idx_analysis_histories_symbol_analyzed_at,priority:1" json:"symbol"`
	Market         string         `gorm:"not null" json:"market"`
	Name           string         `json:"name"`
	CurrentPrice   float64        `json:"current_price"`
	OverallScore   float64        `gorm:"not null" json:"overall_score"`
	Recommendation string         `gorm:"not null" json:"recommendation"`
	PriceInfo      datatypes.JSON `gorm:"type:jsonb" json:"price_info"`
	Scores         datatypes.JSON `gorm:"type:jsonb" json:"scores"`
	Technical      datatypes.JSON `gorm:"type:jsonb" json:"technical"`
	Fundamental    datatypes.JSON `gorm:"type:jsonb" json:"fundamental"`
	Sentiment      datatypes.JSON `gorm:"type:jsonb" json:"sentiment"`
	DataQuality    datatypes.JSON `gorm:"type:jsonb" json:"data_quality"`
	Narrative      *string        `json:"narrative,omitempty"`
	AIProvider     string         `json:"ai_provider"`
	AIModel        string         `json:"ai_model"`
	AnalyzedAt     time.Time      `gorm:"not null;index:idx_analysis_histories_symbol_analyzed_at,priority:2" json:"analyzed_at"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the AnalysisHistory model.
func (AnalysisHistory) TableName() string {
	return "analysis_histories"
}
