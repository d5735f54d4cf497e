package store

import (
	"time"

	"github.com/SamDev98/ats-crawler/internal/model"
)

// NopStore is a no-op SentStore for callers that need the contract without
// persistence. Nothing is recorded, so every posting appears new.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) FilterNew(jobs []model.Job) ([]model.Job, error)     { return jobs, nil }
func (s *NopStore) MarkSent(jobs []model.Job) error                     { return nil }
func (s *NopStore) IsAlreadySent(url string) (bool, error)              { return false, nil }
func (s *NopStore) CountSentSince(since time.Time) (int64, error)       { return 0, nil }
func (s *NopStore) CountTotal() (int64, error)                          { return 0, nil }
func (s *NopStore) RecentRecords(limit int) ([]model.SentRecord, error) { return nil, nil }
func (s *NopStore) Cleanup(olderThan time.Duration) error               { return nil }
