package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageFromStatus(t *testing.T) {
	tests := []struct {
		status string
		want   Stage
	}{
		{"PENDING_DEPOSIT", StageWaiting},
		{"INCOMPLETE_DEPOSIT", StageWaiting},
		{"KNOWN_DEPOSIT_TX", StageConfirming},
		{"PROCESSING", StageExchanging},
		{"SUCCESS", StageFinished},
		{"COMPLETED", StageFinished},
		{"FAILED", StageFailed},
		{"REFUNDED", StageFailed},
		{"waiting", StageWaiting},
		{"exchanging", StageExchanging},
		{"sending", StageSending},
		{"finished", StageFinished},
		{"SOMETHING_NEW", StageWaiting},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, StageFromStatus(tt.status))
		})
	}
}

func TestProjectionIsMonotonic(t *testing.T) {
	p := NewProjection()

	assert.Equal(t, StageConfirming, p.Apply("KNOWN_DEPOSIT_TX"))
	assert.Equal(t, StageExchanging, p.Apply("PROCESSING"))

	// A stale answer mapping earlier on the lifecycle does not move back.
	assert.Equal(t, StageExchanging, p.Apply("PENDING_DEPOSIT"))
	assert.Equal(t, StageFinished, p.Apply("SUCCESS"))
}

func TestProjectionFailureAlwaysApplies(t *testing.T) {
	p := NewProjection()
	p.Apply("PROCESSING")

	assert.Equal(t, StageFailed, p.Apply("REFUNDED"))
	assert.True(t, p.Stage().Terminal())
}

func TestWatchAdvancesToTerminal(t *testing.T) {
	answers := []string{"PENDING_DEPOSIT", "KNOWN_DEPOSIT_TX", "PROCESSING", "SUCCESS"}
	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		status := answers[calls]
		if calls < len(answers)-1 {
			calls++
		}
		return status, nil
	}

	var seen []Stage
	p := NewProjection(WithPollInterval(time.Millisecond))
	stage, err := p.Watch(context.Background(), fetch, func(s Stage) { seen = append(seen, s) })

	require.NoError(t, err)
	assert.Equal(t, StageFinished, stage)
	assert.Equal(t, []Stage{StageConfirming, StageExchanging, StageFinished}, seen)
}

func TestWatchToleratesFetchErrors(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("network error")
		}
		return "SUCCESS", nil
	}

	p := NewProjection(WithPollInterval(time.Millisecond))
	stage, err := p.Watch(context.Background(), fetch, nil)

	require.NoError(t, err)
	assert.Equal(t, StageFinished, stage)
	assert.Equal(t, 3, calls)
}

func TestWatchStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(ctx context.Context) (string, error) {
		cancel()
		return "PROCESSING", nil
	}

	p := NewProjection(WithPollInterval(time.Millisecond))
	stage, err := p.Watch(ctx, fetch, nil)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StageExchanging, stage)
}
