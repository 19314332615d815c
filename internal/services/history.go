package services

import (
	"gorm.io/gorm"

	"pdfcmd/internal/common"
	"pdfcmd/internal/models"
)

// HistoryService stores and queries merge jobs
type HistoryService struct {
	db *gorm.DB
}

// NewHistoryService creates a new history service
func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Record stores a job
func (s *HistoryService) Record(job *models.MergeJob) error {
	if job.ID == "" {
		job.ID = common.GenerateUUID()
	}
	return s.db.Create(job).Error
}

// Recent returns up to limit jobs, newest first
func (s *HistoryService) Recent(limit int) ([]models.MergeJob, error) {
	if limit <= 0 {
		limit = common.DefaultHistoryLimit
	}

	var jobs []models.MergeJob
	err := s.db.Order("created_at DESC").Limit(limit).Find(&jobs).Error
	return jobs, err
}

// Stats aggregates the whole history
func (s *HistoryService) Stats() (*AppStats, error) {
	stats := &AppStats{}

	if err := s.db.Model(&models.MergeJob{}).Count(&stats.TotalJobs).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.MergeJob{}).
		Where("status = ?", models.JobStatusError).
		Count(&stats.FailedJobs).Error; err != nil {
		return nil, err
	}

	var row struct {
		Files      int64
		Pages      int64
		Compressed int64
		Saved      int64
	}
	err := s.db.Model(&models.MergeJob{}).
		Select(`COALESCE(SUM(input_count), 0) AS files,
			COALESCE(SUM(page_count), 0) AS pages,
			COALESCE(SUM(CASE WHEN compressed THEN 1 ELSE 0 END), 0) AS compressed,
			COALESCE(SUM(CASE WHEN compressed THEN merged_size - output_size ELSE 0 END), 0) AS saved`).
		Where("status = ?", models.JobStatusCompleted).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats.TotalFilesMerged = row.Files
	stats.TotalPagesWritten = row.Pages
	stats.CompressedJobs = row.Compressed
	stats.TotalDataSaved = row.Saved
	return stats, nil
}
