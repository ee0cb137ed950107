package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReportCache_SetAndGet(t *testing.T) {
	cache := NewMemoryReportCache()
	ctx := context.Background()

	summary := &ReportSummary{AverageRating: 4.5}
	require.NoError(t, cache.Set(ctx, "reports:summary:2025-06", summary, time.Minute))

	got, ok, err := cache.Get(ctx, "reports:summary:2025-06")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4.5, got.AverageRating)

	// Returned value is a copy, mutations do not leak back into the cache
	got.AverageRating = 1
	again, ok, err := cache.Get(ctx, "reports:summary:2025-06")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4.5, again.AverageRating)
}

func TestMemoryReportCache_MissAndExpiry(t *testing.T) {
	cache := NewMemoryReportCache()
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "short", &ReportSummary{}, -time.Second))
	_, ok, err = cache.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok, "expired entries behave as misses")
}

func TestMemoryReportCache_NilValueIsIgnored(t *testing.T) {
	cache := NewMemoryReportCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "nil", nil, time.Minute))
	_, ok, err := cache.Get(ctx, "nil")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetReportCache_SwapsActiveInstance(t *testing.T) {
	original := GetReportCache()
	defer SetReportCache(original)

	replacement := NewMemoryReportCache()
	SetReportCache(replacement)
	assert.Same(t, replacement, GetReportCache())
}
