package services

import (
	"log"
	"time"

	"handwriting-dataset-api/models"
	"handwriting-dataset-api/store"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ReviewService drives the sample lifecycle: pending samples are approved or
// rejected exactly once, and corrected text may be edited at any point.
type ReviewService struct {
	store  store.SampleStore
	notify func(sample models.Sample, decision models.SampleStatus)
}

// NewReviewService wires the workflow over a sample store. notify, when
// non-nil, is called after each successful decision (best-effort, async).
func NewReviewService(st store.SampleStore, notify func(sample models.Sample, decision models.SampleStatus)) *ReviewService {
	return &ReviewService{store: st, notify: notify}
}

// List returns one page of samples for the given filter, newest first,
// along with the total match count. page is zero-based.
func (s *ReviewService) List(filter store.ReviewFilter, page, pageSize int) ([]models.Sample, int64, error) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return s.store.List(store.ListQuery{Filter: filter, Page: page, PageSize: pageSize})
}

// Approve moves a pending sample to approved. The sample must still have a
// non-empty corrected text.
func (s *ReviewService) Approve(id string, reviewerID int) (*models.Sample, error) {
	return s.decide(id, reviewerID, models.StatusApproved)
}

// Reject moves a pending sample to rejected.
func (s *ReviewService) Reject(id string, reviewerID int) (*models.Sample, error) {
	return s.decide(id, reviewerID, models.StatusRejected)
}

func (s *ReviewService) decide(id string, reviewerID int, to models.SampleStatus) (*models.Sample, error) {
	now := time.Now()
	sample, err := s.store.Transition(id, to, reviewerID, now)
	if err != nil {
		return nil, err
	}

	audit := &models.SampleReview{
		SampleID:   sample.SampleID,
		ReviewerID: reviewerID,
		Decision:   to,
		ReviewedAt: now,
	}
	if err := s.store.RecordReview(audit); err != nil {
		log.Printf("Warning: failed to record review audit for sample %s: %v", sample.SampleID, err)
	}

	if s.notify != nil {
		go s.notify(*sample, to)
	}
	return sample, nil
}

// EditText overwrites the corrected transcription regardless of status.
// Empty text is rejected.
func (s *ReviewService) EditText(id, text string) (*models.Sample, error) {
	return s.store.UpdateText(id, text)
}
