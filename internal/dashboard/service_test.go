package dashboard

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	calls   atomic.Int64
	summary Summary
	delay   time.Duration
}

func (m *mockRepo) Summary(ctx context.Context) (Summary, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.summary, nil
}

var _ RepositoryPort = (*mockRepo)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
}

func testCache(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSummaryCaches(t *testing.T) {
	repo := &mockRepo{summary: Summary{Patients: 12}}
	svc := NewService(repo, testCache(t), time.Minute, testLogger())

	first, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, first.Patients)

	second, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, second.Patients)
	assert.Equal(t, int64(1), repo.calls.Load())
}

func TestSummaryCollapsesConcurrentMisses(t *testing.T) {
	repo := &mockRepo{summary: Summary{Patients: 3}, delay: 20 * time.Millisecond}
	svc := NewService(repo, nil, time.Minute, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Summary(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), repo.calls.Load())
}

func TestInvalidateForcesRecompute(t *testing.T) {
	repo := &mockRepo{summary: Summary{Patients: 1}}
	svc := NewService(repo, testCache(t), time.Minute, testLogger())

	_, err := svc.Summary(context.Background())
	require.NoError(t, err)

	svc.Invalidate(context.Background())

	_, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), repo.calls.Load())
}
