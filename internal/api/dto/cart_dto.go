package dto

import (
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/shopspring/decimal"
)

type CartLineDTO struct {
	ID           int64          `json:"id"`
	ProductLink  int64          `json:"product_link"`
	CustomerLink int64          `json:"customer_link"`
	Quantity     int            `json:"quantity"`
	CreatedAt    time.Time      `json:"created_at"`
	Product      *model.Product `json:"product"`
}

func NewCartLines(views []service.CartLineView) []CartLineDTO {
	out := make([]CartLineDTO, 0, len(views))
	for _, v := range views {
		out = append(out, CartLineDTO{
			ID:           v.ID,
			ProductLink:  v.ProductLink,
			CustomerLink: v.CustomerLink,
			Quantity:     v.Quantity,
			CreatedAt:    v.CreatedAt,
			Product:      v.Product,
		})
	}
	return out
}

type CartLineChangeRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type CartTotalsResponse struct {
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
	Total    decimal.Decimal `json:"total"`
}

func NewCartTotals(t *service.CartTotals) CartTotalsResponse {
	return CartTotalsResponse{Quantity: t.Quantity, Amount: t.Amount, Total: t.Total}
}

type ClearCartRequest struct {
	ProductIDs []int64 `json:"product_ids" validate:"required,dive,gt=0"`
}

type ClearCartResponse struct {
	Deleted int64 `json:"deleted"`
}
