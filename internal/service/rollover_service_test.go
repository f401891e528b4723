package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-calendar-api/internal/dto"
	"github.com/noah-isme/event-calendar-api/pkg/jobs"
)

type rebaserStub struct {
	mu    sync.Mutex
	years []int
	fails int
}

func (r *rebaserStub) RebaseYear(ctx context.Context, req dto.RebaseYearRequest) (*dto.RebaseYearResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.years = append(r.years, req.Year)
	if r.fails > 0 {
		r.fails--
		return nil, errors.New("store unavailable")
	}
	return &dto.RebaseYearResult{Year: req.Year, Updated: 2}, nil
}

func (r *rebaserStub) calls() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.years...)
}

func TestRolloverServiceRejectsBadSchedule(t *testing.T) {
	_, err := NewRolloverService(&rebaserStub{}, RolloverConfig{Schedule: "every tuesday"}, nil)
	assert.Error(t, err)
}

func TestRolloverServiceTriggerRetriesUntilSuccess(t *testing.T) {
	rebaser := &rebaserStub{fails: 1}
	svc, err := NewRolloverService(rebaser, RolloverConfig{Retries: 2, RetryDelay: 10 * time.Millisecond}, nil)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	require.NoError(t, svc.Trigger())
	assert.Eventually(t, func() bool { return len(rebaser.calls()) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{2027, 2027}, rebaser.calls())
	assert.Eventually(t, func() bool { return svc.queue.Stats().Succeeded == 1 }, time.Second, 5*time.Millisecond)
}

func TestRolloverServiceTriggerBeforeStart(t *testing.T) {
	svc, err := NewRolloverService(&rebaserStub{}, RolloverConfig{}, nil)
	require.NoError(t, err)
	assert.Error(t, svc.Trigger())
}

func TestRolloverServiceRejectsForeignPayload(t *testing.T) {
	svc, err := NewRolloverService(&rebaserStub{}, RolloverConfig{}, nil)
	require.NoError(t, err)
	err = svc.handleRebase(context.Background(), jobs.Job{ID: "x", Type: JobTypeRebaseYear, Payload: "2027"})
	assert.Error(t, err)
}
