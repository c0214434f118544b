package placement

import (
	"context"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
)

/*
drive 依 checkout 目前狀態往下推進:

	OrdersCreated -> StockAdjusted -> Completed
	                              \-> CartCleanupPending -> Completed
	OrdersCreated -> Compensating -> Compensated
	                             \-> CompensationFailed -> Compensated

回傳的 error 只代表 checkout store 寫入失敗, 上游錯誤都會記在狀態裡.
*/
func (o *Orchestrator) drive(ctx context.Context, c *model.Checkout) error {
	if c.State == model.CheckoutOrdersCreated {
		if err := o.adjustStock(ctx, c); err != nil {
			return err
		}
	}

	switch c.State {
	case model.CheckoutCompensating, model.CheckoutCompensationFailed:
		return o.compensate(ctx, c)
	case model.CheckoutStockAdjusted, model.CheckoutCartCleanupPending:
		return o.clearCart(ctx, c)
	}
	return nil
}

// adjustStock decrements every pending line in snapshot order. A missing
// product or short stock is recorded on the line and does not stop the batch.
// Any other failure aborts the remaining lines and starts compensation.
func (o *Orchestrator) adjustStock(ctx context.Context, c *model.Checkout) error {
	for i := range c.Lines {
		line := &c.Lines[i]
		if line.StockOutcome != model.StockOutcomePending {
			continue
		}

		level, err := o.catalog.DecrementStock(ctx, line.ProductLink, line.Quantity, line.Reference())
		outcome := model.StockOutcomeDecremented
		switch {
		case err == nil:
		case apperr.Is(err, apperr.KindNotFound):
			outcome = model.StockOutcomeProductMissing
		case apperr.Is(err, apperr.KindInsufficientStock):
			outcome = model.StockOutcomeInsufficient
		default:
			outcome = model.StockOutcomeFailed
		}

		if storeErr := o.setOutcome(ctx, c, line, outcome); storeErr != nil {
			return storeErr
		}

		event := o.logger.Info()
		if outcome != model.StockOutcomeDecremented {
			event = o.logger.Warn().Err(err)
		}
		if level != nil {
			event = event.Int("in_stock", level.InStock).Bool("replayed", level.Replayed)
		}
		event.Str("payment_id", c.PaymentID).
			Int("line", line.LineNo).
			Int64("product_id", line.ProductLink).
			Int("quantity", line.Quantity).
			Str("outcome", string(outcome)).
			Msg("stock adjusted")

		if outcome == model.StockOutcomeFailed {
			reason := fmt.Sprintf("line %d: %v", line.LineNo, err)
			return o.transition(ctx, c, model.CheckoutCompensating, reason)
		}
	}
	return o.transition(ctx, c, model.CheckoutStockAdjusted, "")
}

// compensate restocks every line that was, or may have been, decremented and
// cancels the batch's orders. The cart is never touched.
func (o *Orchestrator) compensate(ctx context.Context, c *model.Checkout) error {
	reason := c.FailureReason
	pending := 0
	for i := range c.Lines {
		line := &c.Lines[i]
		if line.StockOutcome != model.StockOutcomeDecremented && line.StockOutcome != model.StockOutcomeFailed {
			continue
		}

		_, err := o.catalog.RestockStock(ctx, line.ProductLink, line.Reference())
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			pending++
			o.logger.Error().Err(err).
				Str("payment_id", c.PaymentID).
				Int("line", line.LineNo).
				Msg("restock failed")
			continue
		}
		// a failed line is only voided, it keeps its outcome for the caller
		if line.StockOutcome == model.StockOutcomeDecremented {
			if storeErr := o.setOutcome(ctx, c, line, model.StockOutcomeRestocked); storeErr != nil {
				return storeErr
			}
		}
	}

	if pending > 0 {
		return o.transition(ctx, c, model.CheckoutCompensationFailed, reason)
	}

	cancelled, err := o.store.CancelCheckoutOrders(ctx, c.PaymentID)
	if err != nil {
		return err
	}
	o.logger.Info().Str("payment_id", c.PaymentID).Int64("cancelled", cancelled).Msg("checkout orders cancelled")
	return o.transition(ctx, c, model.CheckoutCompensated, reason)
}

func (o *Orchestrator) clearCart(ctx context.Context, c *model.Checkout) error {
	if !c.CartCleared {
		if _, err := o.cart.ClearConsumedLines(ctx, c.CustomerLink, c.ProductIDs()); err != nil {
			o.logger.Warn().Err(err).Str("payment_id", c.PaymentID).Msg("cart cleanup failed")
			return o.transition(ctx, c, model.CheckoutCartCleanupPending, err.Error())
		}
		if err := o.store.MarkCartCleared(ctx, c.PaymentID); err != nil {
			return err
		}
		c.CartCleared = true
	}
	return o.transition(ctx, c, model.CheckoutCompleted, "")
}

func (o *Orchestrator) setOutcome(ctx context.Context, c *model.Checkout, line *model.CheckoutLine, outcome model.StockOutcome) error {
	if err := o.store.UpdateLineOutcome(ctx, c.PaymentID, line.LineNo, outcome); err != nil {
		return err
	}
	line.StockOutcome = outcome
	return nil
}

// transition persists the new state and publishes its event. Publishing is
// best effort.
func (o *Orchestrator) transition(ctx context.Context, c *model.Checkout, state model.CheckoutState, reason string) error {
	if c.State == state && c.FailureReason == reason {
		return nil
	}
	if err := o.store.UpdateCheckoutState(ctx, c.PaymentID, state, reason); err != nil {
		return err
	}
	changed := c.State != state
	c.State = state
	c.FailureReason = reason
	if !changed {
		return nil
	}

	o.logger.Info().Str("payment_id", c.PaymentID).Str("state", string(state)).Msg("checkout state changed")
	if err := o.events.PublishCheckout(ctx, c); err != nil {
		o.logger.Warn().Err(err).Str("payment_id", c.PaymentID).Msg("failed to publish checkout event")
	}
	return nil
}
