package analytics_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/beton-labs/backend-beton/internal/analytics"
)

type stubDB struct {
	queryCalls int
}

func (s *stubDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	s.queryCalls++
	return nil, errors.New("database should not be reached")
}

func (s *stubDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (s *stubDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("database should not be reached")
}

func TestEnquiriesRangeServedFromCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC)
	cached := []analytics.DailyEnquiries{{Day: from, Count: 7}}
	data, err := json.Marshal(cached)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	key := "an:enquiries:2026-08-01:2026-08-08"
	if err := rdb.Set(context.Background(), key, data, time.Minute).Err(); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	db := &stubDB{}
	svc := &analytics.Service{DB: db, R: rdb, TTL: time.Minute, DefaultRange: 30}
	rows, err := svc.EnquiriesRange(context.Background(), from, to)
	if err != nil {
		t.Fatalf("EnquiriesRange: %v", err)
	}
	if db.queryCalls != 0 {
		t.Fatalf("expected 0 DB calls, got %d", db.queryCalls)
	}
	if len(rows) != 1 || rows[0].Count != 7 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestEnquiriesRangeMissFallsThrough(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db := &stubDB{}
	svc := &analytics.Service{DB: db, R: rdb, TTL: time.Minute}
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC)
	if _, err := svc.EnquiriesRange(context.Background(), from, to); err == nil {
		t.Fatal("expected error from stub DB on cache miss")
	}
	if db.queryCalls != 1 {
		t.Fatalf("expected 1 DB call, got %d", db.queryCalls)
	}
}
