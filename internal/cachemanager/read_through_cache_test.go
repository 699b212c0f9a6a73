package cachemanager

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/ezhl/internal/log"
)

type mockCacheManager[K comparable, V any] struct {
	mock.Mock
}

func (m *mockCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	args := m.Called(ctx, key)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCacheManager[K, V]) Delete(ctx context.Context, keys ...K) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCacheManager[K, V]) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type lineInput struct {
	Text string
}

func lengthOf(calls *int) func(context.Context, lineInput) (int, error) {
	return func(_ context.Context, in lineInput) (int, error) {
		*calls++
		if in.Text == "boom" {
			return 0, errors.New("scan failed")
		}
		return len(in.Text), nil
	}
}

func TestReadThroughCache_SkipCache(t *testing.T) {
	m := &mockCacheManager[string, int]{}
	calls := 0
	rt := NewReadThroughCache[string, int, lineInput]("lines", m, lengthOf(&calls), true)

	got, err := rt.Get(context.Background(), "k", lineInput{Text: "abc"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 3, got)

	got, err = rt.GetWithRefresh(context.Background(), "k", lineInput{Text: "abcd"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 4, got)

	require.Equal(t, 2, calls)
	m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_Hit(t *testing.T) {
	m := &mockCacheManager[string, int]{}
	m.On("Get", mock.Anything, "k").Return(7, true).Once()
	calls := 0
	rt := NewReadThroughCache[string, int, lineInput]("lines", m, lengthOf(&calls), false)

	got, err := rt.Get(context.Background(), "k", lineInput{Text: "abc"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 7, got)
	require.Zero(t, calls)
	m.AssertExpectations(t)
}

func TestReadThroughCache_MissStores(t *testing.T) {
	m := &mockCacheManager[string, int]{}
	m.On("Get", mock.Anything, "k").Return(0, false).Once()
	m.On("Set", mock.Anything, "k", 3, time.Minute).Once()
	calls := 0
	rt := NewReadThroughCache[string, int, lineInput]("lines", m, lengthOf(&calls), false)

	got, err := rt.Get(context.Background(), "k", lineInput{Text: "abc"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 3, got)
	require.Equal(t, 1, calls)
	m.AssertExpectations(t)
}

func TestReadThroughCache_RefreshHit(t *testing.T) {
	m := &mockCacheManager[string, int]{}
	m.On("GetWithRefresh", mock.Anything, "k", time.Hour).Return(9, true).Once()
	calls := 0
	rt := NewReadThroughCache[string, int, lineInput]("lines", m, lengthOf(&calls), false)

	got, err := rt.GetWithRefresh(context.Background(), "k", lineInput{Text: "abc"}, time.Hour)
	require.NoError(t, err)
	require.Equal(t, 9, got)
	m.AssertExpectations(t)
}

func TestReadThroughCache_ErrorIsNotStored(t *testing.T) {
	m := &mockCacheManager[string, int]{}
	m.On("GetWithRefresh", mock.Anything, "k", time.Minute).Return(0, false).Once()
	calls := 0
	rt := NewReadThroughCache[string, int, lineInput]("lines", m, lengthOf(&calls), false)

	_, err := rt.GetWithRefresh(context.Background(), "k", lineInput{Text: "boom"}, time.Minute)
	require.EqualError(t, err, "scan failed")
	m.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_WithInMemoryManager(t *testing.T) {
	cache := NewInMemoryCacheManager[string, int]("scan", DefaultExpiration, DefaultCleanupInterval)
	calls := 0
	rt := NewReadThroughCache[string, int, lineInput]("lines", cache, lengthOf(&calls), false)

	for i := 0; i < 3; i++ {
		got, err := rt.GetWithRefresh(context.Background(), "k", lineInput{Text: "hello"}, time.Minute)
		require.NoError(t, err)
		require.Equal(t, 5, got)
	}
	require.Equal(t, 1, calls)
	require.Equal(t, uint64(2), cache.Stats().Hits)
}

func TestReadThroughCache_CountsAndLogsMisses(t *testing.T) {
	var buf bytes.Buffer
	log.InitWriter(&buf)
	t.Cleanup(func() { log.InitWriter(io.Discard) })

	cache := NewInMemoryCacheManager[string, int]("scan", DefaultExpiration, 0)
	calls := 0
	rt := NewReadThroughCache[string, int, lineInput]("lines", cache, lengthOf(&calls), false)

	ctx := context.Background()
	_, err := rt.Get(ctx, "a", lineInput{Text: "abc"}, time.Minute)
	require.NoError(t, err)
	_, err = rt.Get(ctx, "a", lineInput{Text: "abc"}, time.Minute)
	require.NoError(t, err)
	_, err = rt.Get(ctx, "b", lineInput{Text: "boom"}, time.Minute)
	require.Error(t, err)

	st := rt.Stats()
	require.Equal(t, uint64(1), st.Hits)
	require.Equal(t, uint64(2), st.Misses)
	require.InDelta(t, 1.0/3.0, st.HitRate(), 1e-9)

	out := buf.String()
	require.Equal(t, 2, strings.Count(out, "[cache] Read-through miss cache=lines"))
	require.Contains(t, out, "[ERROR] [cache] Read-through compute failed cache=lines key=b")
}

func TestReadThroughCache_BypassIsNotCounted(t *testing.T) {
	calls := 0
	rt := NewReadThroughCache[string, int, lineInput]("lines", &mockCacheManager[string, int]{}, lengthOf(&calls), true)

	_, err := rt.Get(context.Background(), "a", lineInput{Text: "abc"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, Stats{}, rt.Stats())
}
