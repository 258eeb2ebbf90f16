package swap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"zecbridge/pkg/chains"
	"zecbridge/pkg/relay"
	"zecbridge/pkg/wallet"
)

// State is the orchestrator's lifecycle position.
type State string

const (
	StateIdle       State = "idle"
	StateSigning    State = "signing"
	StateConfirming State = "confirming"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// Terminal reports whether the state sticks until Reset.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateError
}

// Status is a snapshot of execution progress. Step and Item are 1-based;
// zero means not started. The display amounts are frozen when execution
// starts so later quote refreshes cannot change what the user approved.
type Status struct {
	State      State
	Step       int
	TotalSteps int
	TxHash     string
	Err        string

	SentAmount     string
	SentSymbol     string
	ReceivedAmount string
	ReceivedSymbol string
}

// ErrBusy means Execute was called while a previous run's outcome is still
// showing; callers must Reset first.
var ErrBusy = errors.New("previous swap outcome not cleared")

const (
	defaultConfirmAttempts = 30
	defaultConfirmInterval = time.Second
)

// Orchestrator executes an accepted quote step by step. Steps run strictly
// in order: a later step may depend on chain state an earlier one produced,
// so nothing is dispatched before the previous item confirms.
type Orchestrator struct {
	evm    wallet.EVM
	solana wallet.Solana
	log    *zap.Logger

	confirmAttempts int
	confirmInterval time.Duration
	onUpdate        func(Status)

	mu      sync.Mutex
	running bool
	status  Status
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithEVM attaches the account-chain signer.
func WithEVM(w wallet.EVM) Option {
	return func(o *Orchestrator) { o.evm = w }
}

// WithSolana attaches the instruction-chain signer.
func WithSolana(w wallet.Solana) Option {
	return func(o *Orchestrator) { o.solana = w }
}

// WithConfirmPolicy overrides the fallback confirmation poll: how many
// status checks, how far apart.
func WithConfirmPolicy(attempts int, interval time.Duration) Option {
	return func(o *Orchestrator) {
		o.confirmAttempts = attempts
		o.confirmInterval = interval
	}
}

// WithUpdateFunc registers a callback invoked on every status transition.
func WithUpdateFunc(fn func(Status)) Option {
	return func(o *Orchestrator) { o.onUpdate = fn }
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// New creates an Orchestrator. Wallets are attached per family at the
// composition root; a missing wallet only matters if a quote needs it.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		log:             zap.NewNop(),
		confirmAttempts: defaultConfirmAttempts,
		confirmInterval: defaultConfirmInterval,
		status:          Status{State: StateIdle},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Status returns the current snapshot.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Reset clears a terminal outcome back to idle. It does nothing while a
// swap is running.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return
	}
	o.status = Status{State: StateIdle}
}

// Execute runs the quote's steps to completion. It returns nil exactly when
// the status reaches StateSuccess. There is no automatic retry: any error,
// including the user rejecting a signing prompt, lands in StateError.
func (o *Orchestrator) Execute(ctx context.Context, quote *relay.Quote) error {
	o.mu.Lock()
	if o.running || o.status.State.Terminal() {
		o.mu.Unlock()
		return ErrBusy
	}
	o.running = true
	o.status = Status{
		State:          StateIdle,
		TotalSteps:     len(quote.Steps),
		SentAmount:     displayAmount(quote.Details.CurrencyIn),
		SentSymbol:     quote.Details.CurrencyIn.Currency.Symbol,
		ReceivedAmount: displayAmount(quote.Details.CurrencyOut),
		ReceivedSymbol: quote.Details.CurrencyOut.Currency.Symbol,
	}
	o.mu.Unlock()

	err := o.run(ctx, quote)

	o.mu.Lock()
	o.running = false
	if err != nil {
		o.status.State = StateError
		o.status.Err = err.Error()
	} else {
		o.status.State = StateSuccess
	}
	snapshot := o.status
	o.mu.Unlock()

	o.emit(snapshot)
	return err
}

func (o *Orchestrator) run(ctx context.Context, quote *relay.Quote) error {
	if len(quote.Steps) == 0 {
		return fmt.Errorf("quote has no executable steps")
	}

	originChain := quote.Details.CurrencyIn.Currency.ChainID
	family := chains.FamilyOf(originChain)
	switch family {
	case chains.FamilySolana:
		if o.solana == nil {
			return fmt.Errorf("connect a Solana wallet first: %w", wallet.ErrNotConnected)
		}
	default:
		if o.evm == nil {
			return fmt.Errorf("connect an EVM wallet first: %w", wallet.ErrNotConnected)
		}
	}

	for stepIdx, step := range quote.Steps {
		o.setProgress(stepIdx + 1)

		for itemIdx, item := range step.Items {
			if item.Status == relay.ItemStatusComplete {
				o.log.Debug("skipping completed item",
					zap.Int("step", stepIdx+1),
					zap.Int("item", itemIdx+1))
				continue
			}

			payload := item.Payload()
			switch payload.Kind {
			case relay.KindAccount:
				if family != chains.FamilyAccount {
					o.logMismatch(stepIdx+1, itemIdx+1, "account", family)
					continue
				}
				if err := o.executeAccount(ctx, originChain, payload.Account); err != nil {
					return err
				}

			case relay.KindSolana:
				if family != chains.FamilySolana {
					o.logMismatch(stepIdx+1, itemIdx+1, "solana", family)
					continue
				}
				if err := o.executeSolana(ctx, originChain, payload.Solana); err != nil {
					return err
				}

			default:
				o.log.Warn("skipping item with unrecognized payload shape",
					zap.Int("step", stepIdx+1),
					zap.Int("item", itemIdx+1))
			}
		}
	}
	return nil
}

func (o *Orchestrator) executeAccount(ctx context.Context, originChain int64, tx *relay.AccountTx) error {
	o.setState(StateSigning)

	chainID := tx.ChainID
	if chainID == 0 {
		chainID = originChain
	}
	if o.evm.ChainID() != chainID {
		if err := o.evm.SwitchChain(ctx, chainID); err != nil {
			return fmt.Errorf("failed to switch network to chain %d: %w", chainID, err)
		}
	}

	hash, err := o.evm.SendTransaction(ctx, tx.To, tx.Data, tx.Value)
	if err != nil {
		return fmt.Errorf("transaction not sent: %w", err)
	}
	o.setTxHash(hash)
	o.setState(StateConfirming)

	if err := o.evm.WaitMined(ctx, hash); err != nil {
		return fmt.Errorf("transaction %s: %w", hash, err)
	}
	return nil
}

func (o *Orchestrator) executeSolana(ctx context.Context, originChain int64, tx *relay.SolanaTx) error {
	o.setState(StateSigning)

	signature, err := o.solana.SubmitInstructions(ctx, tx.Instructions)
	if err != nil {
		return fmt.Errorf("transaction not sent: %w", err)
	}
	o.setTxHash(signature)
	o.setState(StateConfirming)

	err = o.solana.ConfirmTransaction(ctx, signature)
	if err == nil {
		return nil
	}
	if errors.Is(err, wallet.ErrTransactionFailed) {
		return fmt.Errorf("transaction %s: %w", signature, err)
	}

	// Primary confirmation could not decide; poll the signature status for a
	// bounded window before giving up.
	o.log.Warn("primary confirmation unavailable, polling signature status",
		zap.String("signature", signature),
		zap.Error(err))

	for attempt := 0; attempt < o.confirmAttempts; attempt++ {
		confirmed, err := o.solana.SignatureStatus(ctx, signature)
		if err != nil {
			if errors.Is(err, wallet.ErrTransactionFailed) {
				return fmt.Errorf("transaction %s: %w", signature, err)
			}
			o.log.Debug("status poll failed", zap.Int("attempt", attempt+1), zap.Error(err))
		}
		if confirmed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(o.confirmInterval):
		}
	}

	return fmt.Errorf("confirmation timed out for %s; check %s manually",
		signature, chains.ExplorerTxURL(originChain, signature))
}

func (o *Orchestrator) setState(state State) {
	o.mu.Lock()
	o.status.State = state
	snapshot := o.status
	o.mu.Unlock()
	o.emit(snapshot)
}

func (o *Orchestrator) setProgress(step int) {
	o.mu.Lock()
	o.status.Step = step
	snapshot := o.status
	o.mu.Unlock()
	o.emit(snapshot)
}

func (o *Orchestrator) setTxHash(hash string) {
	o.mu.Lock()
	o.status.TxHash = hash
	snapshot := o.status
	o.mu.Unlock()
	o.emit(snapshot)
}

func (o *Orchestrator) emit(status Status) {
	if o.onUpdate != nil {
		o.onUpdate(status)
	}
}

func (o *Orchestrator) logMismatch(step, item int, shape string, family chains.Family) {
	o.log.Warn("payload shape does not match origin chain family, skipping",
		zap.Int("step", step),
		zap.Int("item", item),
		zap.String("shape", shape),
		zap.String("family", family.String()))
}

func displayAmount(side relay.QuoteSide) string {
	if side.AmountFormatted != "" {
		return side.AmountFormatted
	}
	return side.Amount
}
