package explain

import (
	"context"
	"time"

	"github.com/turtacn/hypocal-explain/pkg/errors"
)

// ReportStore is a ReportCache that can be inspected and flushed. The redis
// Cache satisfies it.
type ReportStore interface {
	ReportCache
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

// generationKey holds the generation the cached reports were computed under.
const generationKey = "reports:generation"

// cachedReports lists the report kinds written through the cache.
var cachedReports = []string{"counterfactual", "stability"}

// FlushStaleReports deletes cached reports written under a generation other
// than generation, then records generation as current. It returns the number
// of reports removed. The marker is stored with ttl.
func FlushStaleReports(ctx context.Context, store ReportStore, generation string, ttl time.Duration) (int64, error) {
	var current string
	if err := store.Get(ctx, generationKey, &current); err == nil && current == generation {
		return 0, nil
	}

	var removed int64
	for _, report := range cachedReports {
		n, err := store.DeleteByPrefix(ctx, report+":")
		removed += n
		if err != nil {
			return removed, errors.Wrap(err, errors.ErrCodeCacheError, "flush cached "+report+" reports")
		}
	}
	if err := store.Set(ctx, generationKey, generation, ttl); err != nil {
		return removed, errors.Wrap(err, errors.ErrCodeCacheError, "record report generation")
	}
	return removed, nil
}

//Personal.AI order the ending
