package placement

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
)

var recoverableStates = []model.CheckoutState{
	model.CheckoutOrdersCreated,
	model.CheckoutStockAdjusted,
	model.CheckoutCompensating,
	model.CheckoutCartCleanupPending,
	model.CheckoutCompensationFailed,
}

type RecoveryConfig struct {
	Interval  time.Duration
	Grace     time.Duration
	BatchSize int
}

// Recoverer periodically re-drives checkouts left in a non-terminal state by a
// crashed process or a failed upstream.
type Recoverer struct {
	orchestrator *Orchestrator
	cfg          RecoveryConfig
	now          func() time.Time
}

func NewRecoverer(orchestrator *Orchestrator, cfg RecoveryConfig) *Recoverer {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Grace <= 0 {
		cfg.Grace = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Recoverer{
		orchestrator: orchestrator,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (r *Recoverer) Run(ctx context.Context) {
	logger := r.orchestrator.logger
	logger.Info().Dur("interval", r.cfg.Interval).Msg("checkout recovery started")

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("checkout recovery stopped")
			return
		case <-ticker.C:
			if _, err := r.RecoverOnce(ctx); err != nil {
				logger.Error().Err(err).Msg("checkout recovery pass failed")
			}
		}
	}
}

// RecoverOnce re-drives one batch of stale checkouts and returns how many of
// them reached a terminal state.
func (r *Recoverer) RecoverOnce(ctx context.Context) (int, error) {
	o := r.orchestrator
	stale, err := o.store.ListStaleCheckouts(ctx, recoverableStates, r.now().Add(-r.cfg.Grace), r.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, c := range stale {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}

		receipt, err := o.Resume(ctx, c.PaymentID)
		switch {
		case apperr.Is(err, apperr.KindCheckoutInProgress):
			o.logger.Debug().Str("payment_id", c.PaymentID).Msg("checkout busy, skip recovery")
			continue
		case receipt == nil:
			o.logger.Error().Err(err).Str("payment_id", c.PaymentID).Msg("checkout recovery failed")
			continue
		}

		o.logger.Info().
			Str("payment_id", c.PaymentID).
			Str("from", string(c.State)).
			Str("to", string(receipt.State)).
			Msg("checkout recovered")
		if receipt.State.IsTerminal() {
			settled++
		}
	}
	return settled, nil
}
