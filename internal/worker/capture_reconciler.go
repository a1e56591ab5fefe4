package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/quayside/storefront/internal/domain/errors"
	"github.com/quayside/storefront/internal/domain/model"
)

// CheckoutFacade exposes the subset of application functionality required
// by the reconciler.
type CheckoutFacade interface {
	IncompleteOrders(ctx context.Context, limit int) ([]model.FinalizedOrder, error)
	ReconcileCapture(ctx context.Context, record model.FinalizedOrder) error
}

// CaptureReconciler periodically retries fund capture for finalized orders
// whose gateway capture did not complete during checkout. A zero or
// negative poll interval disables it.
type CaptureReconciler struct {
	facade       CheckoutFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.FinalizedOrder
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewCaptureReconciler constructs the capture reconciliation worker pool.
func NewCaptureReconciler(facade CheckoutFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *CaptureReconciler {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &CaptureReconciler{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.FinalizedOrder, batchSize*workers),
	}
}

// Start launches background processing.
func (r *CaptureReconciler) Start(ctx context.Context) {
	if r.pollInterval <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (r *CaptureReconciler) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *CaptureReconciler) dispatch(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.jobs)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchAndDispatch(ctx)
		}
	}
}

func (r *CaptureReconciler) fetchAndDispatch(ctx context.Context) {
	records, err := r.facade.IncompleteOrders(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("fetch incomplete orders failed", slog.String("error", err.Error()))
		return
	}
	for _, record := range records {
		select {
		case <-ctx.Done():
			return
		case r.jobs <- record:
		}
	}
}

func (r *CaptureReconciler) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case record, ok := <-r.jobs:
			if !ok {
				return
			}
			r.handleRecord(ctx, record)
		}
	}
}

func (r *CaptureReconciler) handleRecord(ctx context.Context, record model.FinalizedOrder) {
	err := r.facade.ReconcileCapture(ctx, record)
	switch {
	case err == nil:
		r.logger.Info("capture reconciled",
			slog.String("finalized_order_id", record.ID.String()),
			slog.String("gateway_order_id", record.GatewayOrderID),
		)
	case errors.Is(err, domainErrors.ErrOrderNotApproved):
		// Customer never approved payment; nothing to capture yet.
		r.logger.Warn("capture pending approval",
			slog.String("gateway_order_id", record.GatewayOrderID),
		)
	default:
		r.logger.Error("capture reconciliation failed",
			slog.String("gateway_order_id", record.GatewayOrderID),
			slog.String("error", err.Error()),
		)
	}
}
