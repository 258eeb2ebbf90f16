package exchange

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Stage is a point on the linear trade lifecycle shown to the user:
// waiting -> confirming -> exchanging -> sending -> finished, with failed as
// the error exit.
type Stage string

const (
	StageWaiting    Stage = "waiting"
	StageConfirming Stage = "confirming"
	StageExchanging Stage = "exchanging"
	StageSending    Stage = "sending"
	StageFinished   Stage = "finished"
	StageFailed     Stage = "failed"
)

// Terminal reports whether the stage ends the trade.
func (s Stage) Terminal() bool {
	return s == StageFinished || s == StageFailed
}

// Index is the stage's position on the lifecycle; failed sits outside it.
func (s Stage) Index() int {
	switch s {
	case StageWaiting:
		return 0
	case StageConfirming:
		return 1
	case StageExchanging:
		return 2
	case StageSending:
		return 3
	case StageFinished:
		return 4
	}
	return -1
}

// StageFromStatus maps a raw exchange status onto the lifecycle. It accepts
// both the 1Click vocabulary (PENDING_DEPOSIT, PROCESSING, SUCCESS, ...) and
// lifecycle names passed through verbatim. Unrecognized statuses map to
// waiting so a new vocabulary entry degrades gracefully.
func StageFromStatus(status string) Stage {
	switch strings.ToUpper(status) {
	case "WAITING", "PENDING_DEPOSIT", "PENDING", "INCOMPLETE_DEPOSIT":
		return StageWaiting
	case "CONFIRMING", "KNOWN_DEPOSIT_TX":
		return StageConfirming
	case "EXCHANGING", "PROCESSING":
		return StageExchanging
	case "SENDING":
		return StageSending
	case "FINISHED", "SUCCESS", "COMPLETED":
		return StageFinished
	case "FAILED", "REFUNDED", "EXPIRED":
		return StageFailed
	}
	return StageWaiting
}

// DefaultPollInterval is how often Watch asks the exchange for status.
const DefaultPollInterval = 10 * time.Second

// StatusFunc fetches the raw status of a trade.
type StatusFunc func(ctx context.Context) (string, error)

// Projection tracks a trade's position on the lifecycle. Progress is
// monotonic: a stale poll answer that maps earlier on the lifecycle never
// moves the stage backwards.
type Projection struct {
	interval time.Duration
	log      *zap.Logger

	mu    sync.Mutex
	stage Stage
}

// ProjectionOption configures a Projection.
type ProjectionOption func(*Projection)

// WithPollInterval overrides the Watch poll interval.
func WithPollInterval(d time.Duration) ProjectionOption {
	return func(p *Projection) { p.interval = d }
}

// WithProjectionLogger sets the logger. The default is a no-op logger.
func WithProjectionLogger(l *zap.Logger) ProjectionOption {
	return func(p *Projection) { p.log = l }
}

// NewProjection starts a projection at the waiting stage.
func NewProjection(opts ...ProjectionOption) *Projection {
	p := &Projection{
		interval: DefaultPollInterval,
		log:      zap.NewNop(),
		stage:    StageWaiting,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stage returns the current lifecycle position.
func (p *Projection) Stage() Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

// Apply folds a raw status into the projection and returns the resulting
// stage.
func (p *Projection) Apply(status string) Stage {
	next := StageFromStatus(status)

	p.mu.Lock()
	defer p.mu.Unlock()

	if next == StageFailed {
		p.stage = StageFailed
		return p.stage
	}
	if next.Index() > p.stage.Index() {
		p.stage = next
	}
	return p.stage
}

// Watch polls the status until the trade reaches a terminal stage or the
// context is cancelled. onChange fires whenever the stage advances.
func (p *Projection) Watch(ctx context.Context, fetch StatusFunc, onChange func(Stage)) (Stage, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	last := p.Stage()
	for {
		status, err := fetch(ctx)
		if err != nil {
			// Transient fetch failures leave the stage alone.
			p.log.Debug("status poll failed", zap.Error(err))
		} else {
			stage := p.Apply(status)
			if stage != last {
				last = stage
				if onChange != nil {
					onChange(stage)
				}
			}
			if stage.Terminal() {
				return stage, nil
			}
		}

		select {
		case <-ctx.Done():
			return p.Stage(), ctx.Err()
		case <-ticker.C:
		}
	}
}
