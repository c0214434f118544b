package dto

import (
	"time"

	"github.com/RoyceAzure/rj/api"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/service/placement"
	"github.com/shopspring/decimal"
)

// CartItemProduct carries the price the customer saw. Only current_price is
// used, the rest of the product is accepted and ignored.
type CartItemProduct struct {
	CurrentPrice *decimal.Decimal `json:"current_price" validate:"required,gte=0,money"`
}

type CartItem struct {
	ProductLink int64           `json:"product_link" validate:"required,gt=0"`
	Quantity    int             `json:"quantity" validate:"required,gte=1"`
	Product     CartItemProduct `json:"product" validate:"required"`
}

type PlaceOrderRequest struct {
	CartItems   []CartItem       `json:"cart_items" validate:"required,min=1,dive"`
	TotalAmount *decimal.Decimal `json:"total_amount" validate:"required,money"`
}

func (r *PlaceOrderRequest) Params(customerID int64, idempotencyKey string) placement.PlaceOrderParams {
	lines := make([]placement.Line, 0, len(r.CartItems))
	for _, item := range r.CartItems {
		lines = append(lines, placement.Line{
			ProductID: item.ProductLink,
			Quantity:  item.Quantity,
			Price:     *item.Product.CurrentPrice,
		})
	}
	return placement.PlaceOrderParams{
		CustomerID:     customerID,
		Lines:          lines,
		DeclaredTotal:  *r.TotalAmount,
		IdempotencyKey: idempotencyKey,
	}
}

type LineResultDTO struct {
	Line      int                `json:"line"`
	ProductID int64              `json:"product_link"`
	Quantity  int                `json:"quantity"`
	Price     decimal.Decimal    `json:"price"`
	OrderID   int64              `json:"order_id"`
	Stock     model.StockOutcome `json:"stock"`
}

type PlaceOrderResponse struct {
	Message     string          `json:"message"`
	PaymentID   string          `json:"payment_id"`
	Total       decimal.Decimal `json:"total"`
	State       string          `json:"state,omitempty"`
	Lines       []LineResultDTO `json:"lines,omitempty"`
	CartCleared *bool           `json:"cart_cleared,omitempty"`
	Replayed    bool            `json:"replayed,omitempty"`
}

// CheckoutFailureResponse is the error envelope of a checkout whose orders
// exist but did not complete. It carries what the caller needs to resume or
// reconcile the batch.
type CheckoutFailureResponse struct {
	api.FailedResponse
	PaymentID string          `json:"payment_id"`
	State     string          `json:"state"`
	Lines     []LineResultDTO `json:"lines"`
}

func NewCheckoutFailureResponse(status int, kind, msg string, r *placement.Receipt) CheckoutFailureResponse {
	return CheckoutFailureResponse{
		FailedResponse: api.FailedResponse{
			Success: false,
			ResponseError: api.ResponseError{
				Code:    status,
				Message: &msg,
				Details: []string{kind},
			},
		},
		PaymentID: r.PaymentID,
		State:     string(r.State),
		Lines:     NewLineResults(r.Lines),
	}
}

func NewLineResults(lines []placement.LineResult) []LineResultDTO {
	out := make([]LineResultDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, LineResultDTO{
			Line:      l.LineNo,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Price,
			OrderID:   l.OrderID,
			Stock:     l.Outcome,
		})
	}
	return out
}

func NewPlaceOrderResponse(r *placement.Receipt) PlaceOrderResponse {
	cleared := r.CartCleared
	return PlaceOrderResponse{
		Message:     "Order placed successfully",
		PaymentID:   r.PaymentID,
		Total:       r.Total,
		State:       string(r.State),
		Lines:       NewLineResults(r.Lines),
		CartCleared: &cleared,
		Replayed:    r.Replayed,
	}
}

// NewLegacyPlaceOrderResponse is the blanket success body kept for parity
// with older clients.
func NewLegacyPlaceOrderResponse(r *placement.Receipt) PlaceOrderResponse {
	return PlaceOrderResponse{
		Message:   "Order placed successfully",
		PaymentID: r.PaymentID,
		Total:     r.Total,
	}
}

type OrderDTO struct {
	ID           int64             `json:"id"`
	ProductLink  int64             `json:"product_link"`
	CustomerLink int64             `json:"customer_link"`
	Quantity     int               `json:"quantity"`
	Price        decimal.Decimal   `json:"price"`
	Status       model.OrderStatus `json:"status"`
	PaymentID    string            `json:"payment_id"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Product      *model.Product    `json:"product,omitempty"`
	Customer     *model.Customer   `json:"customer,omitempty"`
}

func NewOrderDTO(o model.Order) OrderDTO {
	return OrderDTO{
		ID:           o.ID,
		ProductLink:  o.ProductLink,
		CustomerLink: o.CustomerLink,
		Quantity:     o.Quantity,
		Price:        o.Price,
		Status:       o.Status,
		PaymentID:    o.PaymentID,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func NewOrderViews(views []service.OrderView) []OrderDTO {
	out := make([]OrderDTO, 0, len(views))
	for _, v := range views {
		o := NewOrderDTO(v.Order)
		o.Product = v.Product
		o.Customer = v.Customer
		out = append(out, o)
	}
	return out
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" validate:"required"`
}
