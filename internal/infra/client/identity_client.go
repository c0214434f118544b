package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
)

// IdentityClient reads customer profiles from the identity service.
type IdentityClient struct {
	http *HttpClient
}

func NewIdentityClient(baseURL string, opts ...Option) *IdentityClient {
	return &IdentityClient{http: NewHttpClient(baseURL, opts...)}
}

func (c *IdentityClient) GetCustomer(ctx context.Context, customerID int64) (*model.Customer, error) {
	var customer model.Customer
	err := c.http.doJSON(ctx, http.MethodGet, fmt.Sprintf("/customers/%d", customerID), nil, &customer)
	if err != nil {
		return nil, mapStatus(err, map[int]apperr.Kind{
			http.StatusNotFound: apperr.KindNotFound,
		})
	}
	return &customer, nil
}
