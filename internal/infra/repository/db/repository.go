package db

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrProductStockNotEnough 商品庫存不足
	ErrProductStockNotEnough = errors.New("product stock not enough")
	// ErrStockReferenceVoided the reference was compensated before it was ever applied
	ErrStockReferenceVoided = errors.New("stock reference already compensated")
	ErrCartLineNotFound     = errors.New("cart line not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrCheckoutNotFound     = errors.New("checkout not found")
	// ErrIdempotencyKeyConflict another checkout already owns the idempotency key
	ErrIdempotencyKeyConflict = errors.New("idempotency key already used")
)

type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
	DecrementStock(ctx context.Context, productID int64, quantity int, reference string) (*model.StockLevel, error)
	RestockStock(ctx context.Context, productID int64, reference string) (*model.StockLevel, error)
}

type ICartRepository interface {
	GetCartLinesByCustomer(ctx context.Context, customerID int64) ([]model.CartLine, error)
	GetCartLineByID(ctx context.Context, id int64) (*model.CartLine, error)
	AddCartLine(ctx context.Context, customerID, productID int64) (*model.CartLine, error)
	IncrementCartLine(ctx context.Context, id int64) (*model.CartLine, error)
	DecrementCartLine(ctx context.Context, id int64) (line *model.CartLine, deleted bool, err error)
	DeleteCartLines(ctx context.Context, customerID int64, productIDs []int64) (int64, error)
}

type IOrderRepository interface {
	GetOrderByID(ctx context.Context, id int64) (*model.Order, error)
	GetOrdersByCustomer(ctx context.Context, customerID int64) ([]model.Order, error)
	GetOrdersByPaymentID(ctx context.Context, paymentID string) ([]model.Order, error)
	GetAllOrders(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) error
}

type ICheckoutRepository interface {
	CreateCheckout(ctx context.Context, checkout *model.Checkout) error
	GetCheckout(ctx context.Context, paymentID string) (*model.Checkout, error)
	GetCheckoutByIdempotencyKey(ctx context.Context, key string) (*model.Checkout, error)
	UpdateLineOutcome(ctx context.Context, paymentID string, lineNo int, outcome model.StockOutcome) error
	UpdateCheckoutState(ctx context.Context, paymentID string, state model.CheckoutState, reason string) error
	MarkCartCleared(ctx context.Context, paymentID string) error
	CancelCheckoutOrders(ctx context.Context, paymentID string) (int64, error)
	ListStaleCheckouts(ctx context.Context, states []model.CheckoutState, updatedBefore time.Time, limit int) ([]model.Checkout, error)
}

var (
	_ IProductRepository  = (*ProductRepo)(nil)
	_ ICartRepository     = (*CartRepo)(nil)
	_ IOrderRepository    = (*OrderRepo)(nil)
	_ ICheckoutRepository = (*CheckoutRepo)(nil)
)
