package entity

import (
	"time"

	"github.com/lib/pq"
)

// BatchRun is the summary row written when a batch task finishes.
type BatchRun struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TaskID        string         `gorm:"unique;not null" json:"task_id"`
	Status        string         `gorm:"not null" json:"status"`
	Symbols       pq.StringArray `gorm:"type:text[]" json:"symbols"`
	FailedSymbols pq.StringArray `gorm:"type:text[]" json:"failed_symbols"`
	Total         int            `json:"total"`
	Completed     int            `json:"completed"`
	Failed        int            `json:"failed"`
	StartedAt     *time.Time     `json:"started_at,omitempty"`
	FinishedAt    *time.Time     `json:"finished_at,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the BatchRun model.
func (BatchRun) TableName() string {
	return "batch_runs"
}
