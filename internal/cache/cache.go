package cache

import (
	"context"
	"time"

	"dukaankhata/internal/domain"
)

// ReportCache memoizes assembled range reports. Entries expire by TTL rather
// than write invalidation; a freshly submitted record can lag in cached
// reports for at most that long.
type ReportCache interface {
	Get(ctx context.Context, key string) (*domain.RangeReport, bool, error)
	Set(ctx context.Context, key string, value *domain.RangeReport, ttl time.Duration) error
}

type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string) (*domain.RangeReport, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ *domain.RangeReport, _ time.Duration) error {
	return nil
}
