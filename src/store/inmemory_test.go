package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"faultline-agent/src/contracts"
)

func archived(id, fp string) *ArchivedReport {
	return &ArchivedReport{
		ID:            id,
		Source:        "test",
		Fingerprint:   fp,
		Message:       "boom",
		ThrowableText: "TestError: boom",
		CreatedAt:     time.Now(),
	}
}

func TestSaveAndGetReport(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	if err := s.SaveReport(ctx, archived("r1", "fp-a")); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := s.GetReport(ctx, "r1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Fingerprint != "fp-a" || got.Message != "boom" {
		t.Errorf("unexpected report %+v", got)
	}

	if _, err := s.GetReport(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveDuplicateIDIsNoOp(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	first := archived("r1", "fp-a")
	s.SaveReport(ctx, first)

	second := archived("r1", "fp-a")
	second.Message = "changed"
	s.SaveReport(ctx, second)

	got, _ := s.GetReport(ctx, "r1")
	if got.Message != "boom" {
		t.Error("duplicate save must not overwrite")
	}
	reports, _ := s.ListByFingerprint(ctx, "fp-a")
	if len(reports) != 1 {
		t.Errorf("duplicate save must not re-index, got %d reports", len(reports))
	}
}

func TestListByFingerprintOrder(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	s.SaveReport(ctx, archived("r1", "fp-a"))
	s.SaveReport(ctx, archived("r2", "fp-b"))
	s.SaveReport(ctx, archived("r3", "fp-a"))

	reports, err := s.ListByFingerprint(ctx, "fp-a")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(reports) != 2 || reports[0].ID != "r1" || reports[1].ID != "r3" {
		t.Errorf("expected [r1 r3] oldest first, got %v", reports)
	}

	if reports, _ := s.ListByFingerprint(ctx, "fp-none"); len(reports) != 0 {
		t.Errorf("unknown fingerprint should list nothing, got %d", len(reports))
	}
}

func TestRecordSubmission(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	s.SaveReport(ctx, archived("r1", "fp-a"))

	info := contracts.SubmittedReportInfo{Status: contracts.SubmissionNew, URL: "https://tracker/9", LinkText: "FL-9"}
	if err := s.RecordSubmission(ctx, "r1", info); err != nil {
		t.Fatalf("record submission failed: %v", err)
	}

	got, _ := s.GetReport(ctx, "r1")
	if got.Submission == nil || got.Submission.LinkText != "FL-9" {
		t.Errorf("submission not stored: %+v", got.Submission)
	}

	if err := s.RecordSubmission(ctx, "missing", info); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetReportReturnsCopy(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	s.SaveReport(ctx, archived("r1", "fp-a"))

	got, _ := s.GetReport(ctx, "r1")
	got.Message = "mutated"

	again, _ := s.GetReport(ctx, "r1")
	if again.Message != "boom" {
		t.Error("GetReport must return a copy")
	}
}
