package handler

import (
	"context"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

type CartHandler struct {
	cartService service.ICartService
	auth        *middleware.Auth
}

func NewCartHandler(cartService service.ICartService, auth *middleware.Auth) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{cartService: cartService, auth: auth}
}

// GetCart id is the customer
// @Summary get cart
// @Tags cart
// @Produce json
// @Param id path int true "customer id"
// @Success 200 {array} dto.CartLineDTO
// @Failure 403 {object} api.FailedResponse "UnauthorizedCode"
// @Security ApiKeyAuth
// @Router /cart/{id} [get]
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	customerID, err := int64Param(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	lines, err := h.cartService.GetCart(r.Context(), customerID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, dto.NewCartLines(lines))
}

// @Summary add to cart
// @Tags cart
// @Produce json
// @Param productId path int true "product id"
// @Param customerId path int true "customer id"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} api.FailedResponse "BadRequestCode"
// @Security ApiKeyAuth
// @Router /cart/add-to-cart/{productId}/{customerId} [post]
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	productID, err := int64Param(r, "productId")
	if err != nil {
		response.Error(w, err)
		return
	}
	customerID, err := int64Param(r, "customerId")
	if err != nil {
		response.Error(w, err)
		return
	}
	if _, err := h.cartService.AddToCart(r.Context(), customerID, productID); err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Product added to cart")
}

// Increment id is the cart line
// @Summary increment cart line
// @Tags cart
// @Accept json
// @Produce json
// @Param id path int true "cart line id"
// @Param body body dto.CartLineChangeRequest true "owner of the line"
// @Success 200 {object} dto.CartTotalsResponse
// @Failure 404 {object} api.FailedResponse "NotFoundCode"
// @Security ApiKeyAuth
// @Router /cart/{id}/increment [post]
func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.changeLine(w, r, h.cartService.IncrementLine)
}

// @Summary decrement cart line
// @Tags cart
// @Accept json
// @Produce json
// @Param id path int true "cart line id"
// @Param body body dto.CartLineChangeRequest true "owner of the line"
// @Success 200 {object} dto.CartTotalsResponse
// @Failure 404 {object} api.FailedResponse "NotFoundCode"
// @Security ApiKeyAuth
// @Router /cart/{id}/decrement [post]
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.changeLine(w, r, h.cartService.DecrementLine)
}

func (h *CartHandler) changeLine(w http.ResponseWriter, r *http.Request, change func(ctx context.Context, customerID, cartLineID int64) (*service.CartTotals, error)) {
	cartID, err := int64Param(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var req dto.CartLineChangeRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if !h.auth.CanActFor(r.Context(), req.UserID) {
		response.Error(w, apperr.New(apperr.KindUnauthorized, "not allowed to change this cart"))
		return
	}

	totals, err := change(r.Context(), req.UserID, cartID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, dto.NewCartTotals(totals))
}

// ClearConsumedLines id is the customer
// @Summary clear consumed cart lines
// @Tags cart
// @Accept json
// @Produce json
// @Param id path int true "customer id"
// @Param body body dto.ClearCartRequest true "consumed products"
// @Success 200 {object} dto.ClearCartResponse
// @Failure 401 {object} api.FailedResponse "UnauthenticatedCode"
// @Security ApiKeyAuth
// @Router /cart/{id}/clear [post]
func (h *CartHandler) ClearConsumedLines(w http.ResponseWriter, r *http.Request) {
	customerID, err := int64Param(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var req dto.ClearCartRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	deleted, err := h.cartService.ClearConsumedLines(r.Context(), customerID, req.ProductIDs)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, dto.ClearCartResponse{Deleted: deleted})
}
