package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID             int64           `gorm:"primaryKey;column:id" json:"id"`
	ProductName    string          `gorm:"column:product_name;type:varchar(100);not null" json:"product_name"`
	CurrentPrice   decimal.Decimal `gorm:"column:current_price;type:numeric(12,2);not null" json:"current_price"`
	PreviousPrice  decimal.Decimal `gorm:"column:previous_price;type:numeric(12,2);not null" json:"previous_price"`
	InStock        int             `gorm:"column:in_stock;not null" json:"in_stock"`
	FlashSale      bool            `gorm:"column:flash_sale;not null;default:false" json:"flash_sale"`
	ProductPicture string          `gorm:"column:product_picture;type:varchar(255);not null" json:"product_picture"`
	DateAdded      time.Time       `gorm:"column:date_added;not null;default:now()" json:"date_added"`
}

func (Product) TableName() string {
	return "products"
}

type StockMovementKind string

const (
	StockMovementDecrement StockMovementKind = "decrement"
	StockMovementRestock   StockMovementKind = "restock"
)

// StockMovement records one applied stock mutation. (Reference, Kind) is
// unique, which is what makes decrement and restock safe to replay.
type StockMovement struct {
	Reference string            `gorm:"primaryKey;column:reference;type:varchar(150)"`
	Kind      StockMovementKind `gorm:"primaryKey;column:kind;type:varchar(20)"`
	ProductID int64             `gorm:"column:product_id;not null"`
	Quantity  int               `gorm:"column:quantity;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;not null;default:now()"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}

// StockLevel is the result of a stock mutation.
type StockLevel struct {
	ProductID int64 `json:"product_id"`
	InStock   int   `json:"in_stock"`
	Replayed  bool  `json:"replayed"`
}
