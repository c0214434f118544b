package db

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckoutRepo struct {
	db *DbDao
}

func NewCheckoutRepo(db *DbDao) *CheckoutRepo {
	return &CheckoutRepo{db: db}
}

// CreateCheckout persists the checkout, one Pending order per line and the
// checkout lines in a single transaction. Line order ids are filled in.
func (r *CheckoutRepo) CreateCheckout(ctx context.Context, checkout *model.Checkout) error {
	return r.db.ExecTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(checkout).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) && checkout.IdempotencyKey != nil {
				return ErrIdempotencyKeyConflict
			}
			return err
		}
		if len(checkout.Lines) == 0 {
			return nil
		}

		orders := make([]model.Order, len(checkout.Lines))
		for i, line := range checkout.Lines {
			orders[i] = model.Order{
				ProductLink:  line.ProductLink,
				CustomerLink: checkout.CustomerLink,
				Quantity:     line.Quantity,
				Price:        line.Price,
				Status:       model.OrderStatusPending,
				PaymentID:    checkout.PaymentID,
			}
		}
		if err := tx.Create(&orders).Error; err != nil {
			return err
		}

		for i := range checkout.Lines {
			checkout.Lines[i].PaymentID = checkout.PaymentID
			checkout.Lines[i].OrderID = orders[i].ID
			if checkout.Lines[i].StockOutcome == "" {
				checkout.Lines[i].StockOutcome = model.StockOutcomePending
			}
		}
		return tx.Create(&checkout.Lines).Error
	})
}

func (r *CheckoutRepo) GetCheckout(ctx context.Context, paymentID string) (*model.Checkout, error) {
	return r.getCheckout(ctx, "payment_id = ?", paymentID)
}

func (r *CheckoutRepo) GetCheckoutByIdempotencyKey(ctx context.Context, key string) (*model.Checkout, error) {
	return r.getCheckout(ctx, "idempotency_key = ?", key)
}

func (r *CheckoutRepo) getCheckout(ctx context.Context, query string, arg interface{}) (*model.Checkout, error) {
	var checkout model.Checkout
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no")
		}).
		Where(query, arg).
		Take(&checkout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCheckoutNotFound
		}
		return nil, err
	}
	return &checkout, nil
}

// UpdateLineOutcome records the stock outcome of one line and touches the
// checkout in the same transaction, so a batch that is still moving never
// looks stale to recovery.
func (r *CheckoutRepo) UpdateLineOutcome(ctx context.Context, paymentID string, lineNo int, outcome model.StockOutcome) error {
	return r.db.ExecTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&model.CheckoutLine{}).
			Where("payment_id = ? AND line_no = ?", paymentID, lineNo).
			UpdateColumns(map[string]interface{}{
				"stock_outcome": outcome,
				"updated_at":    gorm.Expr("now()"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCheckoutNotFound
		}

		res = tx.Model(&model.Checkout{}).
			Where("payment_id = ?", paymentID).
			UpdateColumn("updated_at", gorm.Expr("now()"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCheckoutNotFound
		}
		return nil
	})
}

func (r *CheckoutRepo) UpdateCheckoutState(ctx context.Context, paymentID string, state model.CheckoutState, reason string) error {
	return r.updateCheckout(ctx, paymentID, map[string]interface{}{
		"state":          state,
		"failure_reason": reason,
		"updated_at":     gorm.Expr("now()"),
	})
}

func (r *CheckoutRepo) MarkCartCleared(ctx context.Context, paymentID string) error {
	return r.updateCheckout(ctx, paymentID, map[string]interface{}{
		"cart_cleared": true,
		"updated_at":   gorm.Expr("now()"),
	})
}

func (r *CheckoutRepo) updateCheckout(ctx context.Context, paymentID string, columns map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Checkout{}).
		Where("payment_id = ?", paymentID).
		UpdateColumns(columns)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCheckoutNotFound
	}
	return nil
}

// CancelCheckoutOrders moves every order of the batch to Cancelled.
func (r *CheckoutRepo) CancelCheckoutOrders(ctx context.Context, paymentID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("payment_id = ? AND status <> ?", paymentID, model.OrderStatusCancelled).
		UpdateColumns(map[string]interface{}{
			"status":     model.OrderStatusCancelled,
			"updated_at": gorm.Expr("now()"),
		})
	return res.RowsAffected, res.Error
}

// ListStaleCheckouts returns checkouts in one of states that were last touched
// before updatedBefore, oldest first, lines included.
func (r *CheckoutRepo) ListStaleCheckouts(ctx context.Context, states []model.CheckoutState, updatedBefore time.Time, limit int) ([]model.Checkout, error) {
	if len(states) == 0 {
		return nil, nil
	}
	var checkouts []model.Checkout
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no")
		}).
		Where("state IN ? AND updated_at < ?", states, updatedBefore).
		Order("updated_at").
		Limit(limit).
		Find(&checkouts).Error
	return checkouts, err
}
