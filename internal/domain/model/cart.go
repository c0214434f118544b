package model

type CartLine struct {
	ID           int64 `gorm:"primaryKey;column:id" json:"id"`
	ProductLink  int64 `gorm:"column:product_link;not null" json:"product_link"`
	CustomerLink int64 `gorm:"column:customer_link;not null" json:"customer_link"`
	Quantity     int   `gorm:"column:quantity;not null;default:1" json:"quantity"`
	BaseModel
}

func (CartLine) TableName() string {
	return "cart_lines"
}
