package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/service/placement"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Placer interface {
	PlaceOrder(ctx context.Context, params placement.PlaceOrderParams) (*placement.Receipt, error)
}

type OrderHandler struct {
	orderService service.IOrderService
	placer       Placer
	auth         *middleware.Auth
	// legacy reports a compensated batch as the old blanket 201
	legacy bool
	logger *zerolog.Logger
}

func NewOrderHandler(orderService service.IOrderService, placer Placer, auth *middleware.Auth, legacy bool, logger *zerolog.Logger) *OrderHandler {
	if orderService == nil || placer == nil {
		panic("orderService and placer cannot be nil")
	}
	return &OrderHandler{
		orderService: orderService,
		placer:       placer,
		auth:         auth,
		legacy:       legacy,
		logger:       logger,
	}
}

// @Summary place order
// @Description one order per cart line under a single payment id
// @Tags order
// @Accept json
// @Produce json
// @Param customerId path int true "customer id"
// @Param Idempotency-Key header string false "replays the stored receipt"
// @Param body body dto.PlaceOrderRequest true "cart snapshot"
// @Success 201 {object} dto.PlaceOrderResponse "placed"
// @Failure 400 {object} api.FailedResponse "BadRequestCode"
// @Failure 409 {object} api.FailedResponse "ConflictCode"
// @Failure 429 {object} api.FailedResponse "TooManyRequestsCode"
// @Failure 500 {object} dto.CheckoutFailureResponse "orders exist, resume by payment id"
// @Failure 502 {object} dto.CheckoutFailureResponse "rolled back"
// @Security ApiKeyAuth
// @Router /place-order/{customerId} [post]
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	customerID, err := int64Param(r, "customerId")
	if err != nil {
		response.Error(w, err)
		return
	}
	var req dto.PlaceOrderRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	key := strings.TrimSpace(r.Header.Get(string(constants.IdempotencyKeyHeader)))

	receipt, err := h.placer.PlaceOrder(r.Context(), req.Params(customerID, key))
	switch {
	case err == nil:
		if h.legacy {
			response.JSON(w, http.StatusCreated, dto.NewLegacyPlaceOrderResponse(receipt))
			return
		}
		response.JSON(w, http.StatusCreated, dto.NewPlaceOrderResponse(receipt))
	case receipt != nil && apperr.Is(err, apperr.KindPartialBatchFailure):
		if h.legacy {
			h.logger.Warn().Err(err).Str("payment_id", receipt.PaymentID).Msg("partial failure reported as success in legacy mode")
			response.JSON(w, http.StatusCreated, dto.NewLegacyPlaceOrderResponse(receipt))
			return
		}
		h.checkoutFailed(w, err, receipt)
	case receipt != nil:
		// orders exist but the checkout store lost track of them
		h.logger.Error().Err(err).Str("payment_id", receipt.PaymentID).Msg("checkout left unfinished")
		h.checkoutFailed(w, err, receipt)
	default:
		response.Error(w, err)
	}
}

func (h *OrderHandler) checkoutFailed(w http.ResponseWriter, err error, receipt *placement.Receipt) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	msg := apperr.Message(err)
	if kind == apperr.KindInternal {
		msg = "checkout " + receipt.PaymentID + " did not finish, resume it by payment id"
	}
	response.JSON(w, status, dto.NewCheckoutFailureResponse(status, string(kind), msg, receipt))
}

// @Summary get customer orders
// @Tags order
// @Produce json
// @Param customerId path int true "customer id"
// @Success 200 {array} dto.OrderDTO
// @Failure 403 {object} api.FailedResponse "UnauthorizedCode"
// @Security ApiKeyAuth
// @Router /orders/{customerId} [get]
func (h *OrderHandler) GetCustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID, err := int64Param(r, "customerId")
	if err != nil {
		response.Error(w, err)
		return
	}
	views, err := h.orderService.GetCustomerOrders(r.Context(), customerID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, dto.NewOrderViews(views))
}

// @Summary get all orders
// @Tags order
// @Produce json
// @Success 200 {array} dto.OrderDTO
// @Failure 403 {object} api.FailedResponse "UnauthorizedCode"
// @Security ApiKeyAuth
// @Router /orders [get]
func (h *OrderHandler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	views, err := h.orderService.GetAllOrders(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, dto.NewOrderViews(views))
}

// @Summary get order
// @Tags order
// @Produce json
// @Param orderId path int true "order id"
// @Success 200 {object} dto.OrderDTO
// @Failure 403 {object} api.FailedResponse "UnauthorizedCode"
// @Failure 404 {object} api.FailedResponse "NotFoundCode"
// @Security ApiKeyAuth
// @Router /orders/order/{orderId} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := int64Param(r, "orderId")
	if err != nil {
		response.Error(w, err)
		return
	}
	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		response.Error(w, err)
		return
	}
	if !h.auth.CanActFor(r.Context(), order.CustomerLink) {
		response.Error(w, apperr.New(apperr.KindUnauthorized, "not allowed to access this order"))
		return
	}
	response.JSON(w, http.StatusOK, dto.NewOrderDTO(*order))
}

// @Summary update order status
// @Tags order
// @Accept json
// @Produce json
// @Param orderId path int true "order id"
// @Param body body dto.UpdateOrderStatusRequest true "new status"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} api.FailedResponse "BadRequestCode"
// @Failure 404 {object} api.FailedResponse "NotFoundCode"
// @Security ApiKeyAuth
// @Router /orders/order/{orderId} [put]
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := int64Param(r, "orderId")
	if err != nil {
		response.Error(w, err)
		return
	}
	var req dto.UpdateOrderStatusRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := h.orderService.UpdateOrderStatus(r.Context(), orderID, req.Status); err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Order updated successfully")
}

// @Summary get checkout
// @Tags order
// @Produce json
// @Param paymentId path string true "payment id"
// @Success 200 {object} model.Checkout
// @Failure 404 {object} api.FailedResponse "NotFoundCode"
// @Security ApiKeyAuth
// @Router /checkouts/{paymentId} [get]
func (h *OrderHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	checkout, err := h.orderService.GetCheckout(r.Context(), chi.URLParam(r, "paymentId"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, checkout)
}
