package model

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is one purchased line. Quantity and Price are copied from the cart
// snapshot at placement and never change afterwards.
type Order struct {
	ID           int64           `gorm:"primaryKey;column:id" json:"id"`
	ProductLink  int64           `gorm:"column:product_link;not null" json:"product_link"`
	CustomerLink int64           `gorm:"column:customer_link;not null" json:"customer_link"`
	Quantity     int             `gorm:"column:quantity;not null" json:"quantity"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Status       OrderStatus     `gorm:"column:status;type:varchar(50);not null" json:"status"`
	PaymentID    string          `gorm:"column:payment_id;type:varchar(100);not null" json:"payment_id"`
	BaseModel
}

func (Order) TableName() string {
	return "orders"
}
