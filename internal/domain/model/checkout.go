package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type CheckoutState string

const (
	CheckoutOrdersCreated      CheckoutState = "OrdersCreated"
	CheckoutStockAdjusted      CheckoutState = "StockAdjusted"
	CheckoutCartCleanupPending CheckoutState = "CartCleanupPending"
	CheckoutCompleted          CheckoutState = "Completed"
	CheckoutCompensating       CheckoutState = "Compensating"
	CheckoutCompensated        CheckoutState = "Compensated"
	CheckoutCompensationFailed CheckoutState = "CompensationFailed"
)

func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutCompleted || s == CheckoutCompensated
}

// Failed reports whether the batch ended, or is ending, in compensation.
func (s CheckoutState) Failed() bool {
	return s == CheckoutCompensating || s == CheckoutCompensated || s == CheckoutCompensationFailed
}

type StockOutcome string

const (
	StockOutcomePending        StockOutcome = "pending"
	StockOutcomeDecremented    StockOutcome = "decremented"
	StockOutcomeProductMissing StockOutcome = "product_missing"
	StockOutcomeInsufficient   StockOutcome = "insufficient"
	StockOutcomeFailed         StockOutcome = "failed"
	StockOutcomeRestocked      StockOutcome = "restocked"
)

// Checkout is the durable record of one placement batch, keyed by the
// payment reference shared by all of its orders.
type Checkout struct {
	PaymentID      string          `gorm:"primaryKey;column:payment_id;type:varchar(100)" json:"payment_id"`
	CustomerLink   int64           `gorm:"column:customer_link;not null" json:"customer_link"`
	IdempotencyKey *string         `gorm:"column:idempotency_key;type:varchar(255)" json:"idempotency_key,omitempty"`
	State          CheckoutState   `gorm:"column:state;type:varchar(30);not null" json:"state"`
	DeclaredTotal  decimal.Decimal `gorm:"column:declared_total;type:numeric(12,2);not null" json:"declared_total"`
	LinesTotal     decimal.Decimal `gorm:"column:lines_total;type:numeric(12,2);not null" json:"lines_total"`
	FailureReason  string          `gorm:"column:failure_reason;not null;default:''" json:"failure_reason,omitempty"`
	CartCleared    bool            `gorm:"column:cart_cleared;not null;default:false" json:"cart_cleared"`
	Lines          []CheckoutLine  `gorm:"foreignKey:PaymentID;references:PaymentID" json:"lines"`
	BaseModel
}

func (Checkout) TableName() string {
	return "checkouts"
}

// ProductIDs returns the distinct products named by the snapshot, in line order.
func (c *Checkout) ProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(c.Lines))
	ids := make([]int64, 0, len(c.Lines))
	for _, line := range c.Lines {
		if _, ok := seen[line.ProductLink]; ok {
			continue
		}
		seen[line.ProductLink] = struct{}{}
		ids = append(ids, line.ProductLink)
	}
	return ids
}

type CheckoutLine struct {
	PaymentID    string          `gorm:"primaryKey;column:payment_id;type:varchar(100)" json:"-"`
	LineNo       int             `gorm:"primaryKey;column:line_no;autoIncrement:false" json:"line"`
	ProductLink  int64           `gorm:"column:product_link;not null" json:"product_link"`
	Quantity     int             `gorm:"column:quantity;not null" json:"quantity"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	OrderID      int64           `gorm:"column:order_id;not null" json:"order_id"`
	StockOutcome StockOutcome    `gorm:"column:stock_outcome;type:varchar(30);not null" json:"stock"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (CheckoutLine) TableName() string {
	return "checkout_lines"
}

// Reference is the idempotency reference of the line's stock movement.
func (l CheckoutLine) Reference() string {
	return fmt.Sprintf("%s/%d", l.PaymentID, l.LineNo)
}
