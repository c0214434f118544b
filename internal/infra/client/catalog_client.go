package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
)

type CatalogClient struct {
	http *HttpClient
}

func NewCatalogClient(baseURL string, opts ...Option) *CatalogClient {
	return &CatalogClient{http: NewHttpClient(baseURL, opts...)}
}

type stockRequest struct {
	Quantity  int    `json:"quantity,omitempty"`
	Reference string `json:"reference"`
}

func (c *CatalogClient) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	var product model.Product
	err := c.http.doJSON(ctx, http.MethodGet, fmt.Sprintf("/products/%d", productID), nil, &product)
	if err != nil {
		return nil, mapStatus(err, map[int]apperr.Kind{
			http.StatusNotFound: apperr.KindNotFound,
		})
	}
	return &product, nil
}

func (c *CatalogClient) DecrementStock(ctx context.Context, productID int64, quantity int, reference string) (*model.StockLevel, error) {
	var level model.StockLevel
	err := c.http.doJSON(ctx, http.MethodPost, fmt.Sprintf("/products/%d/stock/decrement", productID),
		stockRequest{Quantity: quantity, Reference: reference}, &level)
	if err != nil {
		return nil, mapStatus(err, map[int]apperr.Kind{
			http.StatusNotFound:   apperr.KindNotFound,
			http.StatusConflict:   apperr.KindInsufficientStock,
			http.StatusBadRequest: apperr.KindValidation,
		})
	}
	return &level, nil
}

func (c *CatalogClient) RestockStock(ctx context.Context, productID int64, reference string) (*model.StockLevel, error) {
	var level model.StockLevel
	err := c.http.doJSON(ctx, http.MethodPost, fmt.Sprintf("/products/%d/stock/restock", productID),
		stockRequest{Reference: reference}, &level)
	if err != nil {
		return nil, mapStatus(err, map[int]apperr.Kind{
			http.StatusNotFound:   apperr.KindNotFound,
			http.StatusBadRequest: apperr.KindValidation,
		})
	}
	return &level, nil
}
