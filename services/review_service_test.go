package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"handwriting-dataset-api/models"
	"handwriting-dataset-api/store"
)

func seedSample(t *testing.T, m *store.MemoryStore, text string, createdAt time.Time) *models.Sample {
	t.Helper()
	sample := &models.Sample{
		ImageKey:      fmt.Sprintf("samples/%d.png", createdAt.UnixNano()),
		CorrectedText: text,
		ContributorID: 1,
		CreatedAt:     createdAt,
	}
	if err := m.Create(sample); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return sample
}

func TestApproveSetsReviewerAndAudit(t *testing.T) {
	m := store.NewMemoryStore()
	svc := NewReviewService(m, nil)
	sample := seedSample(t, m, "text-a", time.Now())

	approved, err := svc.Approve(sample.SampleID, 42)
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	if approved.Status != models.StatusApproved {
		t.Fatalf("expected approved, got %q", approved.Status)
	}
	if approved.ReviewerID == nil || *approved.ReviewerID != 42 {
		t.Fatalf("expected reviewer 42, got %v", approved.ReviewerID)
	}
	if approved.ReviewedAt == nil {
		t.Fatal("expected reviewed_at to be set")
	}

	reviews := m.Reviews()
	if len(reviews) != 1 {
		t.Fatalf("expected one audit row, got %d", len(reviews))
	}
	if reviews[0].SampleID != sample.SampleID || reviews[0].Decision != models.StatusApproved || reviews[0].ReviewerID != 42 {
		t.Fatalf("unexpected audit row: %+v", reviews[0])
	}
}

func TestRejectThenApproveFails(t *testing.T) {
	m := store.NewMemoryStore()
	svc := NewReviewService(m, nil)
	sample := seedSample(t, m, "text-a", time.Now())

	rejected, err := svc.Reject(sample.SampleID, 7)
	if err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}
	if rejected.Status != models.StatusRejected {
		t.Fatalf("expected rejected, got %q", rejected.Status)
	}

	_, err = svc.Approve(sample.SampleID, 8)
	var invalid *store.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if invalid.Current != models.StatusRejected {
		t.Fatalf("expected current rejected, got %q", invalid.Current)
	}

	final, _ := m.GetByID(sample.SampleID)
	if final.Status != models.StatusRejected || *final.ReviewerID != 7 {
		t.Fatalf("terminal state mutated: %+v", final)
	}
}

func TestApproveUnknownSample(t *testing.T) {
	svc := NewReviewService(store.NewMemoryStore(), nil)
	if _, err := svc.Approve("missing", 1); !errors.Is(err, store.ErrSampleNotFound) {
		t.Fatalf("expected ErrSampleNotFound, got %v", err)
	}
}

func TestEditTextRejectsEmpty(t *testing.T) {
	m := store.NewMemoryStore()
	svc := NewReviewService(m, nil)
	sample := seedSample(t, m, "text-a", time.Now())

	if _, err := svc.EditText(sample.SampleID, ""); !errors.Is(err, store.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	current, _ := m.GetByID(sample.SampleID)
	if current.CorrectedText != "text-a" {
		t.Fatalf("corrected text changed after rejected edit: %q", current.CorrectedText)
	}

	updated, err := svc.EditText(sample.SampleID, "text-b")
	if err != nil {
		t.Fatalf("EditText returned error: %v", err)
	}
	if updated.CorrectedText != "text-b" {
		t.Fatalf("expected text-b, got %q", updated.CorrectedText)
	}
}

func TestListDefaultsAndClamps(t *testing.T) {
	m := store.NewMemoryStore()
	svc := NewReviewService(m, nil)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		seedSample(t, m, fmt.Sprintf("text-%d", i), base.Add(time.Duration(i)*time.Minute))
	}

	list, total, err := svc.List(store.FilterPending, -5, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 12 {
		t.Fatalf("expected total 12, got %d", total)
	}
	if len(list) != DefaultPageSize {
		t.Fatalf("expected default page size %d, got %d", DefaultPageSize, len(list))
	}

	list, _, err = svc.List(store.FilterPending, 0, 10_000)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 12 {
		t.Fatalf("expected clamped page to hold all 12, got %d", len(list))
	}
}

func TestDecisionNotifies(t *testing.T) {
	m := store.NewMemoryStore()
	notified := make(chan models.SampleStatus, 1)
	svc := NewReviewService(m, func(sample models.Sample, decision models.SampleStatus) {
		notified <- decision
	})
	sample := seedSample(t, m, "text-a", time.Now())

	if _, err := svc.Approve(sample.SampleID, 1); err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}

	select {
	case decision := <-notified:
		if decision != models.StatusApproved {
			t.Fatalf("expected approved notification, got %q", decision)
		}
	case <-time.After(time.Second):
		t.Fatal("notification was not sent")
	}
}
