package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SamDev98/ats-crawler/internal/model"
)

const redisKeyPrefix = "atscrawler:sent:"

// RedisStore is the Redis-backed SentStore variant for installations that
// already run Redis. Each sent record lives under its URL key with a TTL
// equal to the retention window, so expiry doubles as cleanup.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisStore(addr, password string, db int, retention time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis at %s: %w", addr, err)
	}

	return &RedisStore{client: client, retention: retention}, nil
}

// redisRecord is the JSON shape stored under each URL key.
type redisRecord struct {
	URL      string    `json:"url"`
	Title    string    `json:"title"`
	Company  string    `json:"company"`
	Source   string    `json:"source"`
	Score    int       `json:"score"`
	Location string    `json:"location"`
	SentAt   time.Time `json:"sent_at"`
}

// FilterNew checks all URLs in one pipelined round trip and returns the jobs
// without an existing record, preserving input order.
func (s *RedisStore) FilterNew(jobs []model.Job) ([]model.Job, error) {
	if len(jobs) == 0 {
		return nil, nil
	}

	ctx := context.Background()
	pipe := s.client.Pipeline()
	checks := make([]*redis.IntCmd, len(jobs))
	for i, job := range jobs {
		checks[i] = pipe.Exists(ctx, redisKeyPrefix+job.URL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("checking existing urls: %w", err)
	}

	fresh := make([]model.Job, 0, len(jobs))
	for i, job := range jobs {
		if checks[i].Val() == 0 {
			fresh = append(fresh, job)
		}
	}
	return fresh, nil
}

// MarkSent writes one record per job in a single pipeline. TTL enforces the
// retention window.
func (s *RedisStore) MarkSent(jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	ctx := context.Background()
	now := time.Now()
	pipe := s.client.Pipeline()
	for _, job := range jobs {
		payload, err := json.Marshal(redisRecord{
			URL:      job.URL,
			Title:    job.Title,
			Company:  job.Company,
			Source:   job.Source,
			Score:    job.Score,
			Location: job.Location,
			SentAt:   now,
		})
		if err != nil {
			return fmt.Errorf("encoding record for %s: %w", job.URL, err)
		}
		pipe.Set(ctx, redisKeyPrefix+job.URL, payload, s.retention)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("marking %d jobs as sent: %w", len(jobs), err)
	}
	return nil
}

func (s *RedisStore) IsAlreadySent(url string) (bool, error) {
	n, err := s.client.Exists(context.Background(), redisKeyPrefix+url).Result()
	if err != nil {
		return false, fmt.Errorf("checking sent status for %s: %w", url, err)
	}
	return n > 0, nil
}

// CountSentSince scans the key space and counts records stamped at or after
// since. Scan-based: acceptable for the store's modest key counts.
func (s *RedisStore) CountSentSince(since time.Time) (int64, error) {
	var count int64
	err := s.forEachRecord(func(r redisRecord) {
		if !r.SentAt.Before(since) {
			count++
		}
	})
	return count, err
}

func (s *RedisStore) CountTotal() (int64, error) {
	var count int64
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scanning sent keys: %w", err)
	}
	return count, nil
}

// RecentRecords returns up to limit records, newest first.
func (s *RedisStore) RecentRecords(limit int) ([]model.SentRecord, error) {
	var records []model.SentRecord
	err := s.forEachRecord(func(r redisRecord) {
		records = append(records, model.SentRecord{
			URL:      r.URL,
			Title:    r.Title,
			Company:  r.Company,
			Source:   r.Source,
			Score:    r.Score,
			Location: r.Location,
			SentAt:   r.SentAt,
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].SentAt.After(records[j].SentAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Cleanup is a no-op: key TTLs already expire records past the retention
// window.
func (s *RedisStore) Cleanup(time.Duration) error { return nil }

// Close closes the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) forEachRecord(fn func(redisRecord)) error {
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		payload, err := s.client.Get(ctx, iter.Val()).Result()
		if err == redis.Nil {
			continue // expired between scan and get
		}
		if err != nil {
			return fmt.Errorf("reading record %s: %w", iter.Val(), err)
		}
		var r redisRecord
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return fmt.Errorf("decoding record %s: %w", iter.Val(), err)
		}
		fn(r)
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning sent keys: %w", err)
	}
	return nil
}
