package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dropchain/native/drops"
	"dropchain/observability"
)

var (
	ErrMintQueueFull        = errors.New("mint: dispatch queue full")
	ErrMintDispatcherClosed = errors.New("mint: dispatcher closed")
)

// Minter invokes the external NFT mint service. Implementations must treat
// RequestID as an idempotency key: the same request may be delivered again
// after a restart.
type Minter interface {
	Mint(ctx context.Context, req *drops.PendingMint) error
}

// MintResolver applies the outcome of a mint call as its own transaction.
type MintResolver func(requestID string, success bool, reason string) error

// MintConfig sizes the dispatcher.
type MintConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

func (c MintConfig) withDefaults() MintConfig {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// MintDispatcher calls the mint service from a bounded worker pool and feeds
// each result back through a MintResolver. A call that times out counts as a
// failed mint.
type MintDispatcher struct {
	minter  Minter
	cfg     MintConfig
	logger  *slog.Logger
	metrics *observability.MintMetrics

	queue  chan *drops.PendingMint
	mu     sync.RWMutex
	closed bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMintDispatcher(minter Minter, cfg MintConfig, logger *slog.Logger) *MintDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &MintDispatcher{
		minter:  minter,
		cfg:     cfg,
		logger:  logger,
		metrics: observability.Mint(),
		queue:   make(chan *drops.PendingMint, cfg.QueueSize),
	}
}

// Start launches the workers. They stop when ctx is cancelled or Stop is
// called; requests still queued at that point stay pending in state.
func (d *MintDispatcher) Start(ctx context.Context, resolve MintResolver) {
	ctx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, resolve)
	}
}

func (d *MintDispatcher) worker(ctx context.Context, resolve MintResolver) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-d.queue:
			if !ok {
				return
			}
			d.execute(ctx, req, resolve)
		}
	}
}

func (d *MintDispatcher) execute(ctx context.Context, req *drops.PendingMint, resolve MintResolver) {
	callCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	done := d.metrics.Begin()
	err := d.minter.Mint(callCtx, req)
	cancel()
	if ctx.Err() != nil {
		done("aborted")
		return
	}
	success := err == nil
	reason := ""
	if !success {
		reason = err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "mint timed out"
		}
		done("failure")
		d.logger.Warn("mint failed", "request", req.RequestID, "drop", req.DropID, "account", req.Account, "error", err)
	} else {
		done("success")
	}
	if err := resolve(req.RequestID, success, reason); err != nil {
		d.logger.Warn("mint resolution rejected", "request", req.RequestID, "error", err)
	}
}

// Submit queues req without blocking.
func (d *MintDispatcher) Submit(req *drops.PendingMint) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrMintDispatcherClosed
	}
	select {
	case d.queue <- req:
		d.metrics.RecordDispatch()
		return nil
	default:
		return ErrMintQueueFull
	}
}

// Stop aborts in-flight calls and waits for the workers to exit.
func (d *MintDispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	if d.cancel != nil {
		d.cancel()
	}
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}
