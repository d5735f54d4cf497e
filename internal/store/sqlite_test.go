package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/SamDev98/ats-crawler/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testJob(url string) model.Job {
	return model.Job{
		Title:    "Senior Java Developer",
		URL:      url,
		Company:  "Acme",
		Source:   "Lever",
		Score:    85,
		Location: "Remote",
	}
}

func TestMarkSentThenIsAlreadySent(t *testing.T) {
	s := newTestStore(t)

	if err := s.MarkSent([]model.Job{testJob("https://example.com/1")}); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}

	sent, err := s.IsAlreadySent("https://example.com/1")
	if err != nil {
		t.Fatalf("IsAlreadySent: %v", err)
	}
	if !sent {
		t.Error("expected IsAlreadySent true after MarkSent")
	}

	sent, err = s.IsAlreadySent("https://example.com/other")
	if err != nil {
		t.Fatalf("IsAlreadySent: %v", err)
	}
	if sent {
		t.Error("expected IsAlreadySent false for unknown url")
	}
}

func TestFilterNewSplitsBatch(t *testing.T) {
	s := newTestStore(t)

	old := testJob("https://example.com/old")
	if err := s.MarkSent([]model.Job{old}); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}

	batch := []model.Job{
		testJob("https://example.com/a"),
		old,
		testJob("https://example.com/b"),
	}
	fresh, err := s.FilterNew(batch)
	if err != nil {
		t.Fatalf("FilterNew: %v", err)
	}

	if len(fresh) != 2 {
		t.Fatalf("expected 2 fresh jobs, got %d", len(fresh))
	}
	// Input order must be preserved.
	if fresh[0].URL != "https://example.com/a" || fresh[1].URL != "https://example.com/b" {
		t.Errorf("order not preserved: %q, %q", fresh[0].URL, fresh[1].URL)
	}
}

func TestFilterNewEmptyBatch(t *testing.T) {
	s := newTestStore(t)

	fresh, err := s.FilterNew(nil)
	if err != nil {
		t.Fatalf("FilterNew: %v", err)
	}
	if len(fresh) != 0 {
		t.Errorf("expected empty result, got %d", len(fresh))
	}
}

func TestMarkSentIdempotent(t *testing.T) {
	s := newTestStore(t)

	job := testJob("https://example.com/1")
	if err := s.MarkSent([]model.Job{job}); err != nil {
		t.Fatalf("first MarkSent: %v", err)
	}
	if err := s.MarkSent([]model.Job{job}); err != nil {
		t.Fatalf("second MarkSent (duplicate): %v", err)
	}

	total, err := s.CountTotal()
	if err != nil {
		t.Fatalf("CountTotal: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 record after duplicate MarkSent, got %d", total)
	}
}

func TestRetentionWindowExpiry(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	job := testJob("https://example.com/1")
	if err := s.MarkSent([]model.Job{job}); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	time.Sleep(80 * time.Millisecond)

	// Outside the window the record no longer blocks a re-send.
	fresh, err := s.FilterNew([]model.Job{job})
	if err != nil {
		t.Fatalf("FilterNew: %v", err)
	}
	if len(fresh) != 1 {
		t.Error("expected expired record to be treated as new")
	}

	sent, err := s.IsAlreadySent(job.URL)
	if err != nil {
		t.Fatalf("IsAlreadySent: %v", err)
	}
	if sent {
		t.Error("expected IsAlreadySent false outside the retention window")
	}
}

func TestCountersAndRecentRecords(t *testing.T) {
	s := newTestStore(t)

	jobs := []model.Job{
		testJob("https://example.com/1"),
		testJob("https://example.com/2"),
		testJob("https://example.com/3"),
	}
	if err := s.MarkSent(jobs); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}

	total, err := s.CountTotal()
	if err != nil {
		t.Fatalf("CountTotal: %v", err)
	}
	if total != 3 {
		t.Errorf("CountTotal = %d, want 3", total)
	}

	today, err := s.CountSentSince(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountSentSince: %v", err)
	}
	if today != 3 {
		t.Errorf("CountSentSince = %d, want 3", today)
	}

	records, err := s.RecentRecords(2)
	if err != nil {
		t.Fatalf("RecentRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("RecentRecords returned %d, want 2", len(records))
	}
	if records[0].Company != "Acme" || records[0].Score != 85 {
		t.Errorf("unexpected record: %+v", records[0])
	}
}

func TestCleanupRemovesOldRecords(t *testing.T) {
	s := newTestStore(t)

	if err := s.MarkSent([]model.Job{testJob("https://example.com/1")}); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if err := s.Cleanup(10 * time.Millisecond); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	total, err := s.CountTotal()
	if err != nil {
		t.Fatalf("CountTotal: %v", err)
	}
	if total != 0 {
		t.Errorf("expected 0 records after cleanup, got %d", total)
	}
}
