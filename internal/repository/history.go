package repository

import (
	"backsync/internal/model"

	"gorm.io/gorm"
)

// HistoryRepository is the append-only run log: one row per execution,
// keyed by job name and start time. The latest view stays in the JSON
// status document; this table is the audit trail.
type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Append(result model.RunResult) error {
	run := model.Run{
		JobName:     result.Name,
		Source:      result.Source,
		Destination: result.Destination,
		State:       result.State,
		Success:     result.Success,
		ReturnCode:  result.ReturnCode,
		Duration:    result.Duration,
		ErrMsg:      result.Error,
		StartedAt:   result.StartedAt,
	}

	return r.db.Create(&run).Error
}

type Stats struct {
	Total   int64
	Success int64
	Failed  int64
}

func (r *HistoryRepository) GetStats() (Stats, error) {
	var stats Stats
	if err := r.db.Model(&model.Run{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	if err := r.db.Model(&model.Run{}).
		Where("success = ?", true).
		Count(&stats.Success).Error; err != nil {
		return stats, err
	}

	stats.Failed = stats.Total - stats.Success
	return stats, nil
}

func (r *HistoryRepository) GetRecent(limit int) ([]model.Run, error) {
	var runs []model.Run
	result := r.db.
		Order("started_at desc").
		Limit(limit).
		Find(&runs)

	return runs, result.Error
}

func (r *HistoryRepository) GetByJob(name string, limit int) ([]model.Run, error) {
	var runs []model.Run
	result := r.db.
		Where("job_name = ?", name).
		Order("started_at desc").
		Limit(limit).
		Find(&runs)

	return runs, result.Error
}
