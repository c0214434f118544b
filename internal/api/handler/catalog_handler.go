package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

type CatalogHandler struct {
	catalogService service.ICatalogService
}

func NewCatalogHandler(catalogService service.ICatalogService) *CatalogHandler {
	if catalogService == nil {
		panic("catalogService cannot be nil")
	}
	return &CatalogHandler{catalogService: catalogService}
}

// @Summary get product
// @Tags catalog
// @Produce json
// @Param id path int true "product id"
// @Success 200 {object} model.Product
// @Failure 404 {object} api.FailedResponse "NotFoundCode"
// @Router /products/{id} [get]
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	product, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, product)
}

// @Summary decrement stock
// @Description applied once per reference, a repeated reference replays
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path int true "product id"
// @Param body body dto.DecrementStockRequest true "quantity and reference"
// @Success 200 {object} model.StockLevel
// @Failure 401 {object} api.FailedResponse "UnauthenticatedCode"
// @Failure 404 {object} api.FailedResponse "NotFoundCode"
// @Failure 409 {object} api.FailedResponse "ConflictCode"
// @Security ApiKeyAuth
// @Router /products/{id}/stock/decrement [post]
func (h *CatalogHandler) DecrementStock(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var req dto.DecrementStockRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	level, err := h.catalogService.DecrementStock(r.Context(), id, req.Quantity, req.Reference)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, level)
}

// @Summary restock
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path int true "product id"
// @Param body body dto.RestockRequest true "reference of the decrement"
// @Success 200 {object} model.StockLevel
// @Failure 401 {object} api.FailedResponse "UnauthenticatedCode"
// @Security ApiKeyAuth
// @Router /products/{id}/stock/restock [post]
func (h *CatalogHandler) RestockStock(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var req dto.RestockRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	level, err := h.catalogService.RestockStock(r.Context(), id, req.Reference)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, level)
}
