package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"handwriting-dataset-api/models"
)

// MemoryStore keeps samples in-process. The mutex serializes every mutation,
// which gives Transition the same one-winner guarantee as the conditional
// UPDATE in GormStore. Used by tests and available as a DB-less mode.
type MemoryStore struct {
	mu      sync.RWMutex
	samples map[string]models.Sample
	reviews []models.SampleReview
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		samples: make(map[string]models.Sample),
	}
}

func (m *MemoryStore) Create(sample *models.Sample) error {
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

	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples[sample.SampleID] = *sample
	return nil
}

func (m *MemoryStore) GetByID(id string) (*models.Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sample, ok := m.samples[id]
	if !ok {
		return nil, ErrSampleNotFound
	}
	return &sample, nil
}

func (m *MemoryStore) UpdateText(id, text string) (*models.Sample, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sample, ok := m.samples[id]
	if !ok {
		return nil, ErrSampleNotFound
	}
	sample.CorrectedText = text
	sample.UpdatedAt = time.Now()
	m.samples[id] = sample
	return &sample, nil
}

func (m *MemoryStore) Transition(id string, to models.SampleStatus, reviewerID int, at time.Time) (*models.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sample, ok := m.samples[id]
	if !ok {
		return nil, ErrSampleNotFound
	}
	if sample.Status != models.StatusPending {
		return nil, &InvalidTransitionError{SampleID: id, Current: sample.Status}
	}
	if to == models.StatusApproved && strings.TrimSpace(sample.CorrectedText) == "" {
		return nil, ErrEmptyText
	}
	reviewer := reviewerID
	reviewedAt := at
	sample.Status = to
	sample.ReviewerID = &reviewer
	sample.ReviewedAt = &reviewedAt
	sample.UpdatedAt = at
	m.samples[id] = sample
	return &sample, nil
}

func (m *MemoryStore) List(q ListQuery) ([]models.Sample, int64, error) {
	m.mu.RLock()
	matched := make([]models.Sample, 0, len(m.samples))
	for _, sample := range m.samples {
		if q.Filter != "" && q.Filter != FilterAll && sample.Status != models.SampleStatus(q.Filter) {
			continue
		}
		if q.ContributorID != 0 && sample.ContributorID != q.ContributorID {
			continue
		}
		matched = append(matched, sample)
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].SampleID > matched[j].SampleID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := q.Page * q.PageSize
	if start >= len(matched) || q.PageSize <= 0 {
		return []models.Sample{}, total, nil
	}
	end := start + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *MemoryStore) ListApproved() ([]models.Sample, error) {
	m.mu.RLock()
	approved := make([]models.Sample, 0, len(m.samples))
	for _, sample := range m.samples {
		if sample.Status == models.StatusApproved {
			approved = append(approved, sample)
		}
	}
	m.mu.RUnlock()

	sort.Slice(approved, func(i, j int) bool {
		if approved[i].CreatedAt.Equal(approved[j].CreatedAt) {
			return approved[i].SampleID < approved[j].SampleID
		}
		return approved[i].CreatedAt.Before(approved[j].CreatedAt)
	})
	return approved, nil
}

func (m *MemoryStore) RecordReview(review *models.SampleReview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	review.ReviewID = len(m.reviews) + 1
	m.reviews = append(m.reviews, *review)
	return nil
}

// Reviews returns the recorded audit rows, oldest first.
func (m *MemoryStore) Reviews() []models.SampleReview {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.SampleReview, len(m.reviews))
	copy(out, m.reviews)
	return out
}

func (m *MemoryStore) Stats() (CommunityStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var stats CommunityStats
	contributors := make(map[int]bool)
	for _, sample := range m.samples {
		stats.TotalSamples++
		if sample.Status == models.StatusApproved {
			stats.ApprovedSamples++
		}
		contributors[sample.ContributorID] = true
	}
	stats.Contributors = int64(len(contributors))
	return stats, nil
}

func (m *MemoryStore) ContributorStats(contributorID int) (ContributorCounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var counts ContributorCounts
	for _, sample := range m.samples {
		if sample.ContributorID != contributorID {
			continue
		}
		counts.Total++
		switch sample.Status {
		case models.StatusPending:
			counts.Pending++
		case models.StatusApproved:
			counts.Approved++
		case models.StatusRejected:
			counts.Rejected++
		}
	}
	return counts, nil
}
