package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/library-admin-api/pkg/errors"
)

type stubCacheRepo struct {
	store          map[string][]byte
	deletedPattern []string
	getErr         error
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.deletedPattern = append(s.deletedPattern, pattern)
	s.store = nil
	return nil
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := &stubCacheRepo{}
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), false)

	require.NoError(t, svc.Set(context.Background(), "k", "v", 0))
	hit, err := svc.Get(context.Background(), "k", new(string))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, repo.store)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	assert.NoError(t, nilSvc.Invalidate(context.Background(), "dash:*"))
}

func TestCacheServiceRoundTripAndMetrics(t *testing.T) {
	repo := &stubCacheRepo{}
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var out string
	hit, err := svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "k", "value", 0))
	hit, err = svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "value", out)
	assert.Equal(t, uint64(1), metrics.cacheHitCount)
	assert.Equal(t, uint64(1), metrics.cacheMissCount)

	require.NoError(t, svc.Invalidate(ctx, "dash:*"))
	assert.Equal(t, []string{"dash:*"}, repo.deletedPattern)
}

func TestCacheServiceGetFailureIsReported(t *testing.T) {
	repo := &stubCacheRepo{getErr: errors.New("redis down")}
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)

	hit, err := svc.Get(context.Background(), "k", new(string))
	assert.Error(t, err)
	assert.False(t, hit)
}
