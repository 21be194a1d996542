package store

import (
	"errors"
	"fmt"
	"time"

	"handwriting-dataset-api/models"
)

// Errors returned by SampleStore implementations.
var (
	ErrSampleNotFound  = errors.New("sample not found")
	ErrMissingImageKey = errors.New("image reference is required")
	ErrEmptyText       = errors.New("corrected text must not be empty")
)

// InvalidTransitionError reports a status change attempted against a sample
// that already left the pending state. Current tells the caller what the
// sample looks like now so the UI can resync.
type InvalidTransitionError struct {
	SampleID string
	Current  models.SampleStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("sample %s already %s", e.SampleID, e.Current)
}

// ReviewFilter selects which lifecycle states a listing includes.
type ReviewFilter string

const (
	FilterAll      ReviewFilter = "all"
	FilterPending  ReviewFilter = "pending"
	FilterApproved ReviewFilter = "approved"
	FilterRejected ReviewFilter = "rejected"
)

// ParseReviewFilter validates a filter string from the query surface.
// An empty string defaults to "all".
func ParseReviewFilter(s string) (ReviewFilter, bool) {
	switch ReviewFilter(s) {
	case "":
		return FilterAll, true
	case FilterAll, FilterPending, FilterApproved, FilterRejected:
		return ReviewFilter(s), true
	}
	return "", false
}

// ListQuery describes one listing call. Page is zero-based.
type ListQuery struct {
	Filter        ReviewFilter
	ContributorID int // 0 = any contributor
	Page          int
	PageSize      int
}

// CommunityStats are aggregate counts over the whole dataset.
type CommunityStats struct {
	TotalSamples    int64 `json:"total_samples"`
	ApprovedSamples int64 `json:"approved_samples"`
	Contributors    int64 `json:"total_contributors"`
}

// ContributorCounts are per-contributor sample counts by status.
type ContributorCounts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// SampleStore defines persistence for handwriting samples and review audit
// records. Status transitions must be atomic: two concurrent Transition calls
// against the same pending sample yield exactly one success and one
// InvalidTransitionError.
type SampleStore interface {
	Create(sample *models.Sample) error
	GetByID(id string) (*models.Sample, error)

	// UpdateText overwrites corrected_text regardless of status.
	UpdateText(id, text string) (*models.Sample, error)

	// Transition moves a pending sample to a terminal state, recording the
	// reviewer and review time exactly once. Approval additionally requires a
	// non-empty corrected_text.
	Transition(id string, to models.SampleStatus, reviewerID int, at time.Time) (*models.Sample, error)

	// List returns one page ordered by created_at descending, plus the total
	// match count for the filter.
	List(q ListQuery) ([]models.Sample, int64, error)

	// ListApproved returns every approved sample in a stable order
	// (created_at ascending, id as tiebreak) for export.
	ListApproved() ([]models.Sample, error)

	RecordReview(review *models.SampleReview) error

	Stats() (CommunityStats, error)
	ContributorStats(contributorID int) (ContributorCounts, error)
}
