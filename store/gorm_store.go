package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"handwriting-dataset-api/models"
)

// GormStore implements SampleStore on MySQL via GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open GORM connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Create persists a new sample in the pending state.
func (s *GormStore) Create(sample *models.Sample) error {
	if strings.TrimSpace(sample.ImageKey) == "" {
		return ErrMissingImageKey
	}
	if strings.TrimSpace(sample.CorrectedText) == "" {
		return ErrEmptyText
	}
	if sample.SampleID == "" {
		sample.SampleID = uuid.NewString()
	}
	if sample.Status == "" {
		sample.Status = models.StatusPending
	}
	now := time.Now()
	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = now
	}
	sample.UpdatedAt = now
	return s.db.Create(sample).Error
}

// GetByID fetches one sample.
func (s *GormStore) GetByID(id string) (*models.Sample, error) {
	var sample models.Sample
	if err := s.db.Where("sample_id = ?", id).First(&sample).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSampleNotFound
		}
		return nil, err
	}
	return &sample, nil
}

// UpdateText overwrites corrected_text for an existing sample.
func (s *GormStore) UpdateText(id, text string) (*models.Sample, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	res := s.db.Model(&models.Sample{}).
		Where("sample_id = ?", id).
		Updates(map[string]interface{}{
			"corrected_text": text,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrSampleNotFound
	}
	return s.GetByID(id)
}

// Transition performs the pending -> terminal state change as a single
// conditional UPDATE keyed on the current status, so concurrent reviewers
// cannot double-count a decision.
func (s *GormStore) Transition(id string, to models.SampleStatus, reviewerID int, at time.Time) (*models.Sample, error) {
	if !to.Terminal() {
		return nil, fmt.Errorf("invalid target status %q", to)
	}

	query := s.db.Model(&models.Sample{}).
		Where("sample_id = ? AND status = ?", id, models.StatusPending)
	if to == models.StatusApproved {
		query = query.Where("corrected_text <> ''")
	}

	res := query.Updates(map[string]interface{}{
		"status":      to,
		"reviewer_id": reviewerID,
		"reviewed_at": at,
		"updated_at":  at,
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Zero rows means unknown id, a terminal sample, or an approval
		// against empty text. Fetch to tell the three apart.
		current, err := s.GetByID(id)
		if err != nil {
			return nil, err
		}
		if current.Status != models.StatusPending {
			return nil, &InvalidTransitionError{SampleID: id, Current: current.Status}
		}
		return nil, ErrEmptyText
	}
	return s.GetByID(id)
}

// List returns one page of samples newest-first plus the total match count.
func (s *GormStore) List(q ListQuery) ([]models.Sample, int64, error) {
	query := s.db
	if q.Filter != "" && q.Filter != FilterAll {
		query = query.Where("status = ?", string(q.Filter))
	}
	if q.ContributorID != 0 {
		query = query.Where("contributor_id = ?", q.ContributorID)
	}

	var total int64
	if err := query.Model(&models.Sample{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var samples []models.Sample
	if err := query.
		Order("created_at DESC, sample_id DESC").
		Offset(q.Page * q.PageSize).
		Limit(q.PageSize).
		Find(&samples).Error; err != nil {
		return nil, 0, err
	}
	return samples, total, nil
}

// ListApproved returns every approved sample in export order.
func (s *GormStore) ListApproved() ([]models.Sample, error) {
	var samples []models.Sample
	if err := s.db.
		Where("status = ?", models.StatusApproved).
		Order("created_at ASC, sample_id ASC").
		Find(&samples).Error; err != nil {
		return nil, err
	}
	return samples, nil
}

// RecordReview appends a reviewer decision audit row.
func (s *GormStore) RecordReview(review *models.SampleReview) error {
	return s.db.Create(review).Error
}

// Stats aggregates community-wide counts.
func (s *GormStore) Stats() (CommunityStats, error) {
	var stats CommunityStats
	if err := s.db.Model(&models.Sample{}).Count(&stats.TotalSamples).Error; err != nil {
		return CommunityStats{}, err
	}
	if err := s.db.Model(&models.Sample{}).
		Where("status = ?", models.StatusApproved).
		Count(&stats.ApprovedSamples).Error; err != nil {
		return CommunityStats{}, err
	}
	if err := s.db.Model(&models.Sample{}).
		Distinct("contributor_id").
		Count(&stats.Contributors).Error; err != nil {
		return CommunityStats{}, err
	}
	return stats, nil
}

// ContributorStats counts one contributor's samples by status.
func (s *GormStore) ContributorStats(contributorID int) (ContributorCounts, error) {
	type row struct {
		Status models.SampleStatus
		N      int64
	}
	var rows []row
	if err := s.db.Model(&models.Sample{}).
		Select("status, COUNT(*) AS n").
		Where("contributor_id = ?", contributorID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return ContributorCounts{}, err
	}

	var counts ContributorCounts
	for _, r := range rows {
		counts.Total += r.N
		switch r.Status {
		case models.StatusPending:
			counts.Pending = r.N
		case models.StatusApproved:
			counts.Approved = r.N
		case models.StatusRejected:
			counts.Rejected = r.N
		}
	}
	return counts, nil
}
