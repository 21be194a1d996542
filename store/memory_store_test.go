package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"handwriting-dataset-api/models"
)

func newPendingSample(t *testing.T, m *MemoryStore, contributorID int, text string, createdAt time.Time) *models.Sample {
	t.Helper()
	sample := &models.Sample{
		ImageKey:      fmt.Sprintf("samples/%d-%d.png", contributorID, createdAt.UnixNano()),
		CorrectedText: text,
		ContributorID: contributorID,
		CreatedAt:     createdAt,
	}
	if err := m.Create(sample); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return sample
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	m := NewMemoryStore()

	err := m.Create(&models.Sample{CorrectedText: "text-a"})
	if !errors.Is(err, ErrMissingImageKey) {
		t.Fatalf("expected ErrMissingImageKey, got %v", err)
	}

	err = m.Create(&models.Sample{ImageKey: "samples/a.png"})
	if !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}

	sample := &models.Sample{ImageKey: "samples/a.png", CorrectedText: "text-a"}
	if err := m.Create(sample); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if sample.SampleID == "" {
		t.Fatal("expected a generated sample id")
	}
	if sample.Status != models.StatusPending {
		t.Fatalf("expected initial status pending, got %q", sample.Status)
	}
}

func TestTransitionLifecycle(t *testing.T) {
	m := NewMemoryStore()
	sample := newPendingSample(t, m, 1, "text-a", time.Now())

	reviewedAt := time.Now()
	rejected, err := m.Transition(sample.SampleID, models.StatusRejected, 9, reviewedAt)
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if rejected.Status != models.StatusRejected {
		t.Fatalf("expected rejected, got %q", rejected.Status)
	}
	if rejected.ReviewerID == nil || *rejected.ReviewerID != 9 {
		t.Fatalf("expected reviewer 9, got %v", rejected.ReviewerID)
	}
	if rejected.ReviewedAt == nil || !rejected.ReviewedAt.Equal(reviewedAt) {
		t.Fatalf("expected reviewed_at %v, got %v", reviewedAt, rejected.ReviewedAt)
	}

	// A terminal sample cannot be approved afterwards.
	_, err = m.Transition(sample.SampleID, models.StatusApproved, 10, time.Now())
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if invalid.Current != models.StatusRejected {
		t.Fatalf("expected current status rejected, got %q", invalid.Current)
	}

	current, err := m.GetByID(sample.SampleID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if current.Status != models.StatusRejected {
		t.Fatalf("status changed after failed transition: %q", current.Status)
	}
	if *current.ReviewerID != 9 {
		t.Fatalf("reviewer changed after failed transition: %d", *current.ReviewerID)
	}
}

func TestTransitionUnknownSample(t *testing.T) {
	m := NewMemoryStore()
	_, err := m.Transition("no-such-id", models.StatusApproved, 1, time.Now())
	if !errors.Is(err, ErrSampleNotFound) {
		t.Fatalf("expected ErrSampleNotFound, got %v", err)
	}
}

func TestConcurrentApproveHasOneWinner(t *testing.T) {
	m := NewMemoryStore()
	sample := newPendingSample(t, m, 1, "text-a", time.Now())

	const reviewers = 8
	var wg sync.WaitGroup
	errs := make([]error, reviewers)

	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.Transition(sample.SampleID, models.StatusApproved, 100+i, time.Now())
		}(i)
	}
	wg.Wait()

	successes := 0
	invalids := 0
	for _, err := range errs {
		var invalid *InvalidTransitionError
		switch {
		case err == nil:
			successes++
		case errors.As(err, &invalid):
			invalids++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one successful approval, got %d", successes)
	}
	if invalids != reviewers-1 {
		t.Fatalf("expected %d InvalidTransition failures, got %d", reviewers-1, invalids)
	}

	final, err := m.GetByID(sample.SampleID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if final.Status != models.StatusApproved {
		t.Fatalf("expected approved, got %q", final.Status)
	}
	if final.ReviewerID == nil {
		t.Fatal("expected a single reviewer recorded")
	}
}

func TestApproveRequiresNonEmptyText(t *testing.T) {
	m := NewMemoryStore()
	sample := newPendingSample(t, m, 1, "text-a", time.Now())

	// Simulate text cleared by a direct map write; UpdateText refuses "".
	m.mu.Lock()
	s := m.samples[sample.SampleID]
	s.CorrectedText = "  "
	m.samples[sample.SampleID] = s
	m.mu.Unlock()

	_, err := m.Transition(sample.SampleID, models.StatusApproved, 1, time.Now())
	if !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}

	// Rejection does not require text.
	if _, err := m.Transition(sample.SampleID, models.StatusRejected, 1, time.Now()); err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}
}

func TestUpdateText(t *testing.T) {
	m := NewMemoryStore()
	sample := newPendingSample(t, m, 1, "text-a", time.Now())

	if _, err := m.UpdateText(sample.SampleID, ""); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText for empty edit, got %v", err)
	}
	current, _ := m.GetByID(sample.SampleID)
	if current.CorrectedText != "text-a" {
		t.Fatalf("corrected text changed after rejected edit: %q", current.CorrectedText)
	}

	if _, err := m.UpdateText("no-such-id", "text-b"); !errors.Is(err, ErrSampleNotFound) {
		t.Fatalf("expected ErrSampleNotFound, got %v", err)
	}

	updated, err := m.UpdateText(sample.SampleID, "text-b")
	if err != nil {
		t.Fatalf("UpdateText returned error: %v", err)
	}
	if updated.CorrectedText != "text-b" {
		t.Fatalf("expected text-b, got %q", updated.CorrectedText)
	}

	// Edits stay legal after review.
	if _, err := m.Transition(sample.SampleID, models.StatusApproved, 1, time.Now()); err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if _, err := m.UpdateText(sample.SampleID, "text-c"); err != nil {
		t.Fatalf("UpdateText after approval returned error: %v", err)
	}
}

func TestListFilterAndPagination(t *testing.T) {
	m := NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 15; i++ {
		newPendingSample(t, m, 1, fmt.Sprintf("pending-%d", i), base.Add(time.Duration(i)*time.Minute))
	}
	for i := 0; i < 5; i++ {
		sample := newPendingSample(t, m, 2, fmt.Sprintf("approved-%d", i), base.Add(time.Duration(100+i)*time.Minute))
		if _, err := m.Transition(sample.SampleID, models.StatusApproved, 9, time.Now()); err != nil {
			t.Fatalf("Transition returned error: %v", err)
		}
	}

	pageOne, total, err := m.List(ListQuery{Filter: FilterPending, Page: 0, PageSize: 10})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 15 {
		t.Fatalf("expected total 15, got %d", total)
	}
	if len(pageOne) != 10 {
		t.Fatalf("expected 10 samples on page 0, got %d", len(pageOne))
	}
	for i, sample := range pageOne {
		if sample.Status != models.StatusPending {
			t.Fatalf("sample %d is %q, want pending", i, sample.Status)
		}
		if i > 0 && sample.CreatedAt.After(pageOne[i-1].CreatedAt) {
			t.Fatalf("samples not ordered newest-first at index %d", i)
		}
	}

	pageTwo, _, err := m.List(ListQuery{Filter: FilterPending, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(pageTwo) != 5 {
		t.Fatalf("expected 5 samples on page 1, got %d", len(pageTwo))
	}

	all, total, err := m.List(ListQuery{Filter: FilterAll, Page: 0, PageSize: 100})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 20 || len(all) != 20 {
		t.Fatalf("expected 20 samples for filter all, got total=%d len=%d", total, len(all))
	}

	byContributor, total, err := m.List(ListQuery{Filter: FilterAll, ContributorID: 2, Page: 0, PageSize: 100})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 5 || len(byContributor) != 5 {
		t.Fatalf("expected 5 samples for contributor 2, got total=%d len=%d", total, len(byContributor))
	}

	empty, _, err := m.List(ListQuery{Filter: FilterPending, Page: 5, PageSize: 10})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page past the end, got %d", len(empty))
	}
}

func TestListApprovedStableOrder(t *testing.T) {
	m := NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		sample := newPendingSample(t, m, 1, fmt.Sprintf("text-%d", i), base.Add(time.Duration(i)*time.Hour))
		if _, err := m.Transition(sample.SampleID, models.StatusApproved, 9, time.Now()); err != nil {
			t.Fatalf("Transition returned error: %v", err)
		}
		ids = append(ids, sample.SampleID)
	}
	newPendingSample(t, m, 1, "still-pending", base)

	first, err := m.ListApproved()
	if err != nil {
		t.Fatalf("ListApproved returned error: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 approved samples, got %d", len(first))
	}
	for i, sample := range first {
		if sample.SampleID != ids[i] {
			t.Fatalf("unexpected order at %d: got %s want %s", i, sample.SampleID, ids[i])
		}
	}

	second, err := m.ListApproved()
	if err != nil {
		t.Fatalf("ListApproved returned error: %v", err)
	}
	for i := range first {
		if first[i].SampleID != second[i].SampleID {
			t.Fatal("ListApproved order changed between calls")
		}
	}
}

func TestStats(t *testing.T) {
	m := NewMemoryStore()
	base := time.Now()

	newPendingSample(t, m, 1, "a", base)
	newPendingSample(t, m, 1, "b", base)
	approved := newPendingSample(t, m, 2, "c", base)
	if _, err := m.Transition(approved.SampleID, models.StatusApproved, 9, time.Now()); err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}

	stats, err := m.Stats()
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.TotalSamples != 3 || stats.ApprovedSamples != 1 || stats.Contributors != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	counts, err := m.ContributorStats(1)
	if err != nil {
		t.Fatalf("ContributorStats returned error: %v", err)
	}
	if counts.Total != 2 || counts.Pending != 2 || counts.Approved != 0 {
		t.Fatalf("unexpected contributor counts: %+v", counts)
	}
}
