package placement

import (
	"context"
	"errors"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/lock"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=placement.go -destination=mock/mock_gateways.go -package=mock_placement

type CatalogGateway interface {
	DecrementStock(ctx context.Context, productID int64, quantity int, reference string) (*model.StockLevel, error)
	RestockStock(ctx context.Context, productID int64, reference string) (*model.StockLevel, error)
}

type CartGateway interface {
	ClearConsumedLines(ctx context.Context, customerID int64, productIDs []int64) (int64, error)
}

type Locker interface {
	Acquire(ctx context.Context, name string) (lock.Handle, error)
}

type EventPublisher interface {
	PublishCheckout(ctx context.Context, c *model.Checkout) error
}

type Line struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

type PlaceOrderParams struct {
	CustomerID     int64
	Lines          []Line
	DeclaredTotal  decimal.Decimal
	IdempotencyKey string
}

func (p PlaceOrderParams) validate() error {
	if p.CustomerID <= 0 {
		return apperr.New(apperr.KindValidation, "invalid customer id")
	}
	if len(p.Lines) == 0 {
		return apperr.New(apperr.KindValidation, "cart is empty")
	}
	for i, l := range p.Lines {
		switch {
		case l.ProductID <= 0:
			return apperr.Newf(apperr.KindValidation, "line %d: invalid product id", i+1)
		case l.Quantity < 1:
			return apperr.Newf(apperr.KindValidation, "line %d: quantity must be at least 1", i+1)
		case l.Price.IsNegative():
			return apperr.Newf(apperr.KindValidation, "line %d: price must not be negative", i+1)
		}
	}
	return nil
}

type LineResult struct {
	LineNo    int
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
	OrderID   int64
	Outcome   model.StockOutcome
}

// Receipt is what the caller of a placement sees. It is rebuilt from the
// stored checkout, so a replay returns the same receipt.
type Receipt struct {
	PaymentID   string
	CustomerID  int64
	State       model.CheckoutState
	Total       decimal.Decimal
	LinesTotal  decimal.Decimal
	Lines       []LineResult
	CartCleared bool
	Replayed    bool
}

func newReceipt(c *model.Checkout) *Receipt {
	r := &Receipt{
		PaymentID:   c.PaymentID,
		CustomerID:  c.CustomerLink,
		State:       c.State,
		Total:       c.DeclaredTotal,
		LinesTotal:  c.LinesTotal,
		Lines:       make([]LineResult, 0, len(c.Lines)),
		CartCleared: c.CartCleared,
	}
	for _, l := range c.Lines {
		r.Lines = append(r.Lines, LineResult{
			LineNo:    l.LineNo,
			ProductID: l.ProductLink,
			Quantity:  l.Quantity,
			Price:     l.Price,
			OrderID:   l.OrderID,
			Outcome:   l.StockOutcome,
		})
	}
	return r
}

type Orchestrator struct {
	store   db.ICheckoutRepository
	catalog CatalogGateway
	cart    CartGateway
	locker  Locker
	events  EventPublisher
	logger  *zerolog.Logger
	newID   func() string
}

func NewOrchestrator(
	store db.ICheckoutRepository,
	catalog CatalogGateway,
	cart CartGateway,
	locker Locker,
	events EventPublisher,
	logger *zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:   store,
		catalog: catalog,
		cart:    cart,
		locker:  locker,
		events:  events,
		logger:  logger,
		newID:   uuid.NewString,
	}
}

// PlaceOrder converts the cart snapshot into one order per line under a
// single payment reference, decrements stock for every line and clears the
// consumed cart lines.
//
// The receipt is non-nil whenever orders were created. When an upstream fault
// forced compensation the receipt comes back together with a
// PartialBatchFailure error naming the outcome of every line. When the
// checkout store fails after the orders exist the receipt comes back with an
// Internal error.
func (o *Orchestrator) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*Receipt, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	// a dropped client must not stop a batch halfway
	ctx = context.WithoutCancel(ctx)

	if params.IdempotencyKey != "" {
		receipt, err := o.replay(ctx, params)
		if receipt != nil || err != nil {
			return receipt, err
		}
	}

	handle, err := o.acquire(ctx, params.CustomerID)
	if err != nil {
		return nil, err
	}
	defer o.release(ctx, handle, params.CustomerID)

	checkout := o.newCheckout(params)
	if err := o.store.CreateCheckout(ctx, checkout); err != nil {
		if errors.Is(err, db.ErrIdempotencyKeyConflict) {
			return o.replay(ctx, params)
		}
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to create orders")
	}
	o.logger.Info().
		Str("payment_id", checkout.PaymentID).
		Int64("customer_id", checkout.CustomerLink).
		Int("lines", len(checkout.Lines)).
		Msg("orders created")

	if err := o.drive(ctx, checkout); err != nil {
		return bookkeepingFailed(checkout, err)
	}
	return result(checkout, false)
}

// Resume re-drives a stored checkout from its current state under the
// customer's lock.
func (o *Orchestrator) Resume(ctx context.Context, paymentID string) (*Receipt, error) {
	checkout, err := o.store.GetCheckout(ctx, paymentID)
	if err != nil {
		if errors.Is(err, db.ErrCheckoutNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "checkout not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to load checkout")
	}
	if checkout.State.IsTerminal() {
		return result(checkout, false)
	}

	handle, err := o.acquire(ctx, checkout.CustomerLink)
	if err != nil {
		return nil, err
	}
	defer o.release(ctx, handle, checkout.CustomerLink)

	// reload under the lock, the previous owner may have moved it on
	if checkout, err = o.store.GetCheckout(ctx, paymentID); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to load checkout")
	}
	if err := o.drive(ctx, checkout); err != nil {
		return bookkeepingFailed(checkout, err)
	}
	return result(checkout, false)
}

// bookkeepingFailed keeps the receipt of a checkout whose orders already
// exist, so the caller still learns the payment id to resume with.
func bookkeepingFailed(c *model.Checkout, err error) (*Receipt, error) {
	return newReceipt(c), apperr.Wrap(apperr.KindInternal, err, "checkout bookkeeping failed")
}

func (o *Orchestrator) replay(ctx context.Context, params PlaceOrderParams) (*Receipt, error) {
	checkout, err := o.store.GetCheckoutByIdempotencyKey(ctx, params.IdempotencyKey)
	if err != nil {
		if errors.Is(err, db.ErrCheckoutNotFound) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to look up idempotency key")
	}
	if checkout.CustomerLink != params.CustomerID {
		return nil, apperr.New(apperr.KindValidation, "idempotency key already used")
	}
	switch checkout.State {
	case model.CheckoutOrdersCreated, model.CheckoutStockAdjusted, model.CheckoutCompensating:
		return nil, apperr.New(apperr.KindCheckoutInProgress, "checkout already in progress")
	}
	o.logger.Info().
		Str("payment_id", checkout.PaymentID).
		Str("idempotency_key", params.IdempotencyKey).
		Msg("checkout replayed")
	return result(checkout, true)
}

func (o *Orchestrator) acquire(ctx context.Context, customerID int64) (lock.Handle, error) {
	handle, err := o.locker.Acquire(ctx, strconv.FormatInt(customerID, 10))
	if err != nil {
		if errors.Is(err, lock.ErrLockNotAcquired) {
			return nil, apperr.Wrap(apperr.KindCheckoutInProgress, err, "checkout already in progress")
		}
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to acquire checkout lock")
	}
	return handle, nil
}

func (o *Orchestrator) release(ctx context.Context, handle lock.Handle, customerID int64) {
	if err := handle.Release(ctx); err != nil {
		o.logger.Warn().Err(err).Int64("customer_id", customerID).Msg("failed to release checkout lock")
	}
}

func (o *Orchestrator) newCheckout(params PlaceOrderParams) *model.Checkout {
	c := &model.Checkout{
		PaymentID:     o.newID(),
		CustomerLink:  params.CustomerID,
		State:         model.CheckoutOrdersCreated,
		DeclaredTotal: params.DeclaredTotal,
		LinesTotal:    decimal.Zero,
		Lines:         make([]model.CheckoutLine, 0, len(params.Lines)),
	}
	if params.IdempotencyKey != "" {
		key := params.IdempotencyKey
		c.IdempotencyKey = &key
	}
	for i, l := range params.Lines {
		c.LinesTotal = c.LinesTotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		c.Lines = append(c.Lines, model.CheckoutLine{
			PaymentID:    c.PaymentID,
			LineNo:       i + 1,
			ProductLink:  l.ProductID,
			Quantity:     l.Quantity,
			Price:        l.Price,
			StockOutcome: model.StockOutcomePending,
		})
	}
	return c
}

func result(c *model.Checkout, replayed bool) (*Receipt, error) {
	receipt := newReceipt(c)
	receipt.Replayed = replayed
	if c.State.Failed() {
		return receipt, apperr.Newf(apperr.KindPartialBatchFailure,
			"checkout %s failed and was rolled back: %s", c.PaymentID, c.FailureReason)
	}
	return receipt, nil
}
