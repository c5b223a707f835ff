package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/entity"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type batchRunRepository struct {
	db *gorm.DB
}

// NewBatchRunRepository creates a new GORM-based batch run repository.
func NewBatchRunRepository(db *gorm.DB) BatchRunRepository {
	return &batchRunRepository{db: db}
}

// Save upserts the summary row of a finished task.
func (r *batchRunRepository) Save(ctx context.Context, task dto.BatchTask) error {
	run := toBatchRun(task)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "task_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "failed_symbols", "completed", "failed", "finished_at"}),
	}).Create(run).Error
	if err != nil {
		return dto.NewError(dto.KindSink, "", "", fmt.Errorf("failed to save batch run %s: %w", task.TaskID, err))
	}
	return nil
}

// GetByTaskID retrieves the summary row of a finished task. A missing row
// is reported as dto.ErrTaskNotFound.
func (r *batchRunRepository) GetByTaskID(ctx context.Context, taskID string) (*entity.BatchRun, error) {
	var run entity.BatchRun
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dto.ErrTaskNotFound
		}
		return nil, dto.NewError(dto.KindSink, "", "", fmt.Errorf("failed to get batch run %s: %w", taskID, err))
	}
	return &run, nil
}

func toBatchRun(task dto.BatchTask) *entity.BatchRun {
	failed := make([]string, 0, task.Failed)
	for symbol, status := range task.Statuses {
		if status.State == dto.SymbolFailed {
			failed = append(failed, symbol)
		}
	}
	sort.Strings(failed)

	return &entity.BatchRun{
		TaskID:        task.TaskID,
		Status:        string(task.Status),
		Symbols:       pq.StringArray(append([]string(nil), task.Symbols...)),
		FailedSymbols: pq.StringArray(failed),
		Total:         task.Total(),
		Completed:     task.Completed,
		Failed:        task.Failed,
		StartedAt:     task.StartedAt,
		FinishedAt:    task.FinishedAt,
	}
}
