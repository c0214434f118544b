package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
)

type CartClient struct {
	http *HttpClient
}

func NewCartClient(baseURL string, opts ...Option) *CartClient {
	return &CartClient{http: NewHttpClient(baseURL, opts...)}
}

type clearLinesRequest struct {
	ProductIDs []int64 `json:"product_ids"`
}

type clearLinesResponse struct {
	Deleted int64 `json:"deleted"`
}

func (c *CartClient) ClearConsumedLines(ctx context.Context, customerID int64, productIDs []int64) (int64, error) {
	var res clearLinesResponse
	err := c.http.doJSON(ctx, http.MethodPost, fmt.Sprintf("/cart/%d/clear", customerID),
		clearLinesRequest{ProductIDs: productIDs}, &res)
	if err != nil {
		return 0, mapStatus(err, map[int]apperr.Kind{
			http.StatusBadRequest: apperr.KindValidation,
		})
	}
	return res.Deleted, nil
}
