package dto

type DecrementStockRequest struct {
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	Reference string `json:"reference" validate:"required,max=150"`
}

type RestockRequest struct {
	Reference string `json:"reference" validate:"required,max=150"`
}
