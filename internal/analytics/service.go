package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"

	"github.com/beton-labs/backend-beton/internal/catalog"
)

// DailyEnquiries is one day's enquiry volume.
type DailyEnquiries struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// TopProduct is a product ranked by enquiry volume.
type TopProduct struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Enquiries int64  `json:"enquiries"`
}

// Service provides cached access to enquiry analytics aggregates.
type Service struct {
	DB           catalog.DB
	R            *redis.Client
	TTL          time.Duration
	DefaultRange int
	Now          func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

// EnquiriesRange returns daily enquiry counts between from inclusive and to exclusive.
func (s *Service) EnquiriesRange(ctx context.Context, from, to time.Time) ([]DailyEnquiries, error) {
	if s == nil || s.DB == nil {
		return nil, fmt.Errorf("analytics service not configured")
	}
	key := cacheKey("an", "enquiries", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if rows, ok := getCached[DailyEnquiries](ctx, s, key); ok {
		return rows, nil
	}
	res, err := s.DB.Query(ctx,
		`SELECT date_trunc('day', created_at) AS day, count(*) AS count
		 FROM enquiries
		 WHERE created_at >= $1 AND created_at < $2
		 GROUP BY 1
		 ORDER BY 1`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer res.Close()
	rows := []DailyEnquiries{}
	for res.Next() {
		var (
			day pgtype.Timestamptz
			row DailyEnquiries
		)
		if err := res.Scan(&day, &row.Count); err != nil {
			return nil, err
		}
		row.Day = day.Time
		rows = append(rows, row)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	s.store(ctx, key, rows)
	return rows, nil
}

// TopProducts returns products ranked by enquiry volume.
func (s *Service) TopProducts(ctx context.Context, limit, offset int32) ([]TopProduct, error) {
	if s == nil || s.DB == nil {
		return nil, fmt.Errorf("analytics service not configured")
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	key := cacheKey("an", "top", limit, offset)
	if rows, ok := getCached[TopProduct](ctx, s, key); ok {
		return rows, nil
	}
	res, err := s.DB.Query(ctx,
		`SELECT p.id, p.name, p.slug, count(e.id) AS enquiries
		 FROM enquiries e
		 JOIN products p ON p.slug = e.product_slug
		 GROUP BY p.id, p.name, p.slug
		 ORDER BY enquiries DESC, p.slug
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer res.Close()
	rows := []TopProduct{}
	for res.Next() {
		var (
			id  pgtype.UUID
			row TopProduct
		)
		if err := res.Scan(&id, &row.Name, &row.Slug, &row.Enquiries); err != nil {
			return nil, err
		}
		row.ID = uuidString(id)
		rows = append(rows, row)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	s.store(ctx, key, rows)
	return rows, nil
}

func getCached[T any](ctx context.Context, s *Service, key string) ([]T, bool) {
	if s.R == nil || s.TTL <= 0 {
		return nil, false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false
	}
	return rows, true
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}
