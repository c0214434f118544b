package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	"github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/api/router"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/service/placement"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type fakePlacer struct {
	params  placement.PlaceOrderParams
	receipt *placement.Receipt
	err     error
}

func (f *fakePlacer) PlaceOrder(_ context.Context, params placement.PlaceOrderParams) (*placement.Receipt, error) {
	f.params = params
	return f.receipt, f.err
}

type fakeOrderService struct {
	service.IOrderService
	updated model.OrderStatus
}

func (f *fakeOrderService) UpdateOrderStatus(_ context.Context, orderID int64, status model.OrderStatus) error {
	if !status.IsValid() {
		return apperr.New(apperr.KindValidation, "invalid order status")
	}
	if orderID != 1 {
		return apperr.New(apperr.KindNotFound, "Order not found")
	}
	f.updated = status
	return nil
}

func newOrderRouter(placer *fakePlacer, legacy bool) (http.Handler, *fakeOrderService) {
	logger := zerolog.Nop()
	svc := &fakeOrderService{}
	h := handler.NewOrderHandler(svc, placer, middleware.NewAuth(nil), legacy, &logger)
	return router.SetupOrderRouter(h, middleware.NewAuth(nil), nil, &logger), svc
}

var placeOrderBody = map[string]interface{}{
	"cart_items": []map[string]interface{}{
		{"product_link": 7, "quantity": 2, "product": map[string]interface{}{"current_price": 10.0, "product_name": "kettle"}},
	},
	"total_amount": 220,
}

func receipt(state model.CheckoutState, outcome model.StockOutcome) *placement.Receipt {
	return &placement.Receipt{
		PaymentID:   "pay-1",
		CustomerID:  1,
		State:       state,
		Total:       decimal.NewFromInt(220),
		CartCleared: state == model.CheckoutCompleted,
		Lines: []placement.LineResult{
			{LineNo: 1, ProductID: 7, Quantity: 2, Price: decimal.NewFromInt(10), OrderID: 11, Outcome: outcome},
		},
	}
}

func TestPlaceOrderCreated(t *testing.T) {
	placer := &fakePlacer{receipt: receipt(model.CheckoutCompleted, model.StockOutcomeDecremented)}
	r, _ := newOrderRouter(placer, false)

	rec := do(t, r, http.MethodPost, "/place-order/1", placeOrderBody, map[string]string{
		string(constants.IdempotencyKeyHeader): "key-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Equal(t, int64(1), placer.params.CustomerID)
	require.Equal(t, "key-1", placer.params.IdempotencyKey)
	require.Len(t, placer.params.Lines, 1)
	require.Equal(t, int64(7), placer.params.Lines[0].ProductID)
	require.Equal(t, 2, placer.params.Lines[0].Quantity)
	require.True(t, decimal.NewFromInt(10).Equal(placer.params.Lines[0].Price))
	require.True(t, decimal.NewFromInt(220).Equal(placer.params.DeclaredTotal))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Order placed successfully", body["message"])
	require.Equal(t, "pay-1", body["payment_id"])
	require.Equal(t, float64(220), body["total"])
	require.Equal(t, true, body["cart_cleared"])
	lines := body["lines"].([]interface{})
	require.Equal(t, "decremented", lines[0].(map[string]interface{})["stock"])
}

func TestPlaceOrderPartialFailure(t *testing.T) {
	placer := &fakePlacer{
		receipt: receipt(model.CheckoutCompensated, model.StockOutcomeRestocked),
		err:     apperr.New(apperr.KindPartialBatchFailure, "checkout pay-1 failed and was rolled back"),
	}

	r, _ := newOrderRouter(placer, false)
	rec := do(t, r, http.MethodPost, "/place-order/1", placeOrderBody, nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, false, body["success"])
	failure := body["error"].(map[string]interface{})
	require.Equal(t, float64(http.StatusBadGateway), failure["code"])
	require.Equal(t, []interface{}{"PARTIAL_BATCH_FAILURE"}, failure["details"])
	require.Equal(t, "pay-1", body["payment_id"])
	require.Equal(t, "Compensated", body["state"])
	require.Len(t, body["lines"], 1)

	legacy, _ := newOrderRouter(placer, true)
	rec = do(t, legacy, http.MethodPost, "/place-order/1", placeOrderBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"message":"Order placed successfully","payment_id":"pay-1","total":220}`, rec.Body.String())
}

func TestPlaceOrderUnfinishedKeepsPaymentID(t *testing.T) {
	placer := &fakePlacer{
		receipt: receipt(model.CheckoutStockAdjusted, model.StockOutcomeDecremented),
		err:     apperr.New(apperr.KindInternal, "checkout bookkeeping failed"),
	}

	r, _ := newOrderRouter(placer, false)
	rec := do(t, r, http.MethodPost, "/place-order/1", placeOrderBody, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	failure := body["error"].(map[string]interface{})
	require.Equal(t, []interface{}{"INTERNAL"}, failure["details"])
	require.Contains(t, failure["message"], "pay-1")
	require.NotContains(t, rec.Body.String(), "bookkeeping")
	require.Equal(t, "pay-1", body["payment_id"])
	require.Equal(t, "StockAdjusted", body["state"])
	lines := body["lines"].([]interface{})
	require.Len(t, lines, 1)
	require.Equal(t, float64(11), lines[0].(map[string]interface{})["order_id"])
}

func TestPlaceOrderRejected(t *testing.T) {
	testCases := []struct {
		name   string
		body   interface{}
		err    error
		status int
	}{
		{name: "empty cart", body: map[string]interface{}{"cart_items": []interface{}{}, "total_amount": 0}, status: http.StatusBadRequest},
		{name: "missing price", body: map[string]interface{}{
			"cart_items":   []map[string]interface{}{{"product_link": 7, "quantity": 1, "product": map[string]interface{}{}}},
			"total_amount": 10,
		}, status: http.StatusBadRequest},
		{name: "zero quantity", body: map[string]interface{}{
			"cart_items":   []map[string]interface{}{{"product_link": 7, "quantity": 0, "product": map[string]interface{}{"current_price": 1}}},
			"total_amount": 10,
		}, status: http.StatusBadRequest},
		{name: "price below a cent", body: map[string]interface{}{
			"cart_items":   []map[string]interface{}{{"product_link": 7, "quantity": 1, "product": map[string]interface{}{"current_price": 10.123}}},
			"total_amount": 210.12,
		}, status: http.StatusBadRequest},
		{name: "total below a cent", body: map[string]interface{}{
			"cart_items":   []map[string]interface{}{{"product_link": 7, "quantity": 1, "product": map[string]interface{}{"current_price": 10.5}}},
			"total_amount": 210.505,
		}, status: http.StatusBadRequest},
		{name: "price beyond column", body: map[string]interface{}{
			"cart_items":   []map[string]interface{}{{"product_link": 7, "quantity": 1, "product": map[string]interface{}{"current_price": 1e10}}},
			"total_amount": 10,
		}, status: http.StatusBadRequest},
		{name: "in progress", body: placeOrderBody, err: apperr.New(apperr.KindCheckoutInProgress, "checkout already in progress"), status: http.StatusConflict},
		{name: "store down", body: placeOrderBody, err: apperr.New(apperr.KindInternal, "failed to create orders"), status: http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			placer := &fakePlacer{err: tc.err}
			r, _ := newOrderRouter(placer, false)
			rec := do(t, r, http.MethodPost, "/place-order/1", tc.body, nil)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	r, svc := newOrderRouter(&fakePlacer{}, false)

	rec := do(t, r, http.MethodPut, "/orders/order/1", map[string]string{"status": "Shipped"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Order updated successfully"}`, rec.Body.String())
	require.Equal(t, model.OrderStatusShipped, svc.updated)

	rec = do(t, r, http.MethodPut, "/orders/order/1", map[string]string{"status": "Lost"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPut, "/orders/order/2", map[string]string{"status": "Shipped"}, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodPut, "/orders/order/abc", map[string]string{"status": "Shipped"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeCatalogService struct {
	service.ICatalogService
}

func (fakeCatalogService) GetProduct(_ context.Context, id int64) (*model.Product, error) {
	if id != 7 {
		return nil, apperr.New(apperr.KindNotFound, "product not found")
	}
	return &model.Product{ID: 7, ProductName: "kettle", CurrentPrice: decimal.NewFromInt(10), InStock: 5}, nil
}

func (fakeCatalogService) DecrementStock(_ context.Context, productID int64, quantity int, reference string) (*model.StockLevel, error) {
	if quantity > 5 {
		return nil, apperr.New(apperr.KindInsufficientStock, "product stock not enough")
	}
	return &model.StockLevel{ProductID: productID, InStock: 5 - quantity}, nil
}

func (fakeCatalogService) RestockStock(_ context.Context, productID int64, _ string) (*model.StockLevel, error) {
	return &model.StockLevel{ProductID: productID, InStock: 5, Replayed: true}, nil
}

func TestCatalogRoutes(t *testing.T) {
	logger := zerolog.Nop()
	r := router.SetupCatalogRouter(handler.NewCatalogHandler(fakeCatalogService{}), middleware.NewAuth(nil), &logger)

	rec := do(t, r, http.MethodGet, "/products/7", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"product_name":"kettle"`)

	rec = do(t, r, http.MethodGet, "/products/8", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"success":false,"error":{"code":404,"message":"product not found","details":["NOT_FOUND"]}}`, rec.Body.String())

	rec = do(t, r, http.MethodPost, "/products/7/stock/decrement", map[string]interface{}{"quantity": 2, "reference": "pay-1/1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"product_id":7,"in_stock":3,"replayed":false}`, rec.Body.String())

	rec = do(t, r, http.MethodPost, "/products/7/stock/decrement", map[string]interface{}{"quantity": 9, "reference": "pay-1/1"}, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, r, http.MethodPost, "/products/7/stock/decrement", map[string]interface{}{"quantity": 1}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, "/products/7/stock/restock", map[string]interface{}{"reference": "pay-1/1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"product_id":7,"in_stock":5,"replayed":true}`, rec.Body.String())

	rec = do(t, r, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

type fakeCartService struct {
	service.ICartService
	cleared []int64
}

func (f *fakeCartService) AddToCart(_ context.Context, _, productID int64) (*model.CartLine, error) {
	if productID != 7 {
		return nil, apperr.New(apperr.KindValidation, "Error fetching product data")
	}
	return &model.CartLine{ID: 1, ProductLink: productID, Quantity: 1}, nil
}

func (f *fakeCartService) DecrementLine(_ context.Context, customerID, cartLineID int64) (*service.CartTotals, error) {
	if cartLineID != 1 || customerID != 1 {
		return nil, apperr.New(apperr.KindNotFound, "Cart item not found")
	}
	return &service.CartTotals{Quantity: 0, Amount: decimal.Zero, Total: decimal.NewFromInt(200)}, nil
}

func (f *fakeCartService) ClearConsumedLines(_ context.Context, _ int64, productIDs []int64) (int64, error) {
	f.cleared = productIDs
	return int64(len(productIDs)), nil
}

func TestCartRoutes(t *testing.T) {
	logger := zerolog.Nop()
	svc := &fakeCartService{}
	r := router.SetupCartRouter(handler.NewCartHandler(svc, middleware.NewAuth(nil)), middleware.NewAuth(nil), &logger)

	rec := do(t, r, http.MethodPost, "/cart/add-to-cart/7/1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Product added to cart"}`, rec.Body.String())

	rec = do(t, r, http.MethodPost, "/cart/add-to-cart/8/1", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Error fetching product data")

	rec = do(t, r, http.MethodPost, "/cart/1/decrement", map[string]int{"user_id": 1}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"quantity":0,"amount":0,"total":200}`, rec.Body.String())

	rec = do(t, r, http.MethodPost, "/cart/2/decrement", map[string]int{"user_id": 1}, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// line 1 is not customer 2's
	rec = do(t, r, http.MethodPost, "/cart/1/decrement", map[string]int{"user_id": 2}, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodPost, "/cart/1/clear", map[string][]int64{"product_ids": {7, 8}}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"deleted":2}`, rec.Body.String())
	require.Equal(t, []int64{7, 8}, svc.cleared)
}
