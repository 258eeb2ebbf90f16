package quote

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultDebounce is how long the engine waits after the last input change
// before hitting the network.
const DefaultDebounce = 500 * time.Millisecond

// Engine debounces quote fetches while the user types. Each Request restarts
// the timer and bumps the generation; only the latest generation's result
// reaches the callback, and a superseded in-flight fetch is cancelled
// through its context.
type Engine struct {
	quoter   Quoter
	onResult func(Result)
	delay    time.Duration
	log      *zap.Logger

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	cancel     context.CancelFunc
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) EngineOption {
	return func(e *Engine) { e.delay = d }
}

// WithEngineLogger sets the logger. The default is a no-op logger.
func WithEngineLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an Engine delivering results to onResult. The callback
// runs on the fetch goroutine and must not block for long.
func NewEngine(quoter Quoter, onResult func(Result), opts ...EngineOption) *Engine {
	e := &Engine{
		quoter:   quoter,
		onResult: onResult,
		delay:    DefaultDebounce,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request schedules a fetch for the input, superseding any pending or
// in-flight one.
func (e *Engine) Request(input Input) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	gen := e.generation

	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.delay, func() { e.fetch(gen, input) })
}

func (e *Engine) fetch(gen uint64, input Input) {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.mu.Unlock()
	defer cancel()

	result := Fetch(ctx, e.quoter, input)

	e.mu.Lock()
	latest := gen == e.generation
	if latest {
		e.cancel = nil
	}
	e.mu.Unlock()

	if !latest {
		e.log.Debug("dropping superseded quote result", zap.Uint64("generation", gen))
		return
	}
	e.onResult(result)
}

// Close cancels any pending timer and in-flight fetch. No result is
// delivered after Close returns.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}
