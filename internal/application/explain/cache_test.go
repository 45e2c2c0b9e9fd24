package explain

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
	rediscache "github.com/turtacn/hypocal-explain/internal/infrastructure/database/redis"
	"github.com/turtacn/hypocal-explain/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hypocal-explain/pkg/errors"
)

func newReportStore(t *testing.T) (rediscache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := rediscache.NewClient(&rediscache.Config{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return rediscache.NewRedisCache(client, logging.NewNopLogger(), rediscache.WithPrefix("r:")), mr
}

func TestFlushStaleReports(t *testing.T) {
	store, mr := newReportStore(t)
	ctx := context.Background()

	s := newTestService(WithCache(store, time.Minute))
	_, err := s.GetStabilityReport(ctx, reference(), clinical.VariantBaseline, 20, 1)
	require.NoError(t, err)
	_, err = s.GetCounterfactualPlan(ctx, highRisk(t), 0.2, clinical.VariantBaseline)
	require.NoError(t, err)
	require.NoError(t, mr.Set("r:other", "1"))

	n, err := FlushStaleReports(ctx, store, "v1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, []string{"r:other", "r:reports:generation"}, mr.Keys())

	require.NoError(t, store.Set(ctx, "stability:fresh", 1, time.Minute))
	n, err = FlushStaleReports(ctx, store, "v1", time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, mr.Exists("r:stability:fresh"))

	n, err = FlushStaleReports(ctx, store, "v2", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestFlushStaleReports_StoreDown(t *testing.T) {
	store, mr := newReportStore(t)
	mr.Close()

	_, err := FlushStaleReports(context.Background(), store, "v1", time.Hour)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheError))
}

//Personal.AI order the ending
