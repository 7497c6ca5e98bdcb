package handler

import (
	"net/http"

	"salesledger/internal/service"
	"salesledger/pkg/pagination"
	"salesledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	saleService service.SaleService
}

func NewSaleHandler(saleService service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

func (h *SaleHandler) RegisterRoutes(router *gin.RouterGroup) {
	sales := router.Group("/sales")
	{
		sales.GET("", h.ListSales)
		sales.POST("", h.CreateSale)
		sales.GET("/:id", h.GetSale)
		sales.DELETE("/:id", h.DeleteSale)
		sales.POST("/:id/items", h.AddItem)
		sales.PUT("/:id/items/:itemId", h.UpdateItem)
		sales.DELETE("/:id/items/:itemId", h.RemoveItem)
	}
}

// CreateSale records a sale with its items and installment receivables
// @Summary      Create sale
// @Description  Invalid items are skipped; a sale without valid items is rejected with 422
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateSaleRequest  true  "Sale payload"
// @Success      201  {object}  response.Response{data=service.SaleResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /api/sales [post]
func (h *SaleHandler) CreateSale(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	var req service.CreateSaleRequest
	if !bindJSON(c, &req) {
		return
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), ownerID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sale))
}

// ListSales
// @Summary      List sales
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        page            query     int     false  "Page number (default: 1)"
// @Param        limit           query     int     false  "Items per page (default: 20)"
// @Param        client_id       query     string  false  "Client ID"
// @Param        payment_method  query     string  false  "Payment method"
// @Param        from            query     string  false  "Sold on or after (YYYY-MM-DD)"
// @Param        to              query     string  false  "Sold on or before (YYYY-MM-DD)"
// @Success      200  {object}  response.Response{data=service.SaleListResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/sales [get]
func (h *SaleHandler) ListSales(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	var query service.SaleListQuery
	if !bindQuery(c, &query) {
		return
	}
	p := pagination.Parse(c)

	sales, err := h.saleService.ListSales(c.Request.Context(), ownerID, query, p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, sales, p.Page, p.Limit, sales.Total))
}

// GetSale returns the sale with its items and receivables
// @Summary      Get sale
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Sale ID"
// @Success      200  {object}  response.Response{data=service.SaleResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetSale(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, sale))
}

// DeleteSale removes a sale with its items and receivables
// @Summary      Delete sale
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        id   path  string  true  "Sale ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/sales/{id} [delete]
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	if err := h.saleService.DeleteSale(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Sale deleted successfully"))
}

// AddItem appends a line item and recomputes the total
// @Summary      Add sale item
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                   true  "Sale ID"
// @Param        payload  body  service.SaleItemRequest  true  "Item payload"
// @Success      201  {object}  response.Response{data=service.SaleResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/sales/{id}/items [post]
func (h *SaleHandler) AddItem(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	var req service.SaleItemRequest
	if !bindJSON(c, &req) {
		return
	}

	sale, err := h.saleService.AddItem(c.Request.Context(), ownerID, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sale))
}

// UpdateItem
// @Summary      Update sale item
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Sale ID"
// @Param        itemId   path  string                         true  "Item ID"
// @Param        payload  body  service.UpdateSaleItemRequest  true  "Quantity and/or unit price"
// @Success      200  {object}  response.Response{data=service.SaleResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/sales/{id}/items/{itemId} [put]
func (h *SaleHandler) UpdateItem(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	var req service.UpdateSaleItemRequest
	if !bindJSON(c, &req) {
		return
	}

	sale, err := h.saleService.UpdateItem(c.Request.Context(), ownerID, c.Param("id"), c.Param("itemId"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, sale))
}

// RemoveItem
// @Summary      Remove sale item
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        id      path  string  true  "Sale ID"
// @Param        itemId  path  string  true  "Item ID"
// @Success      200  {object}  response.Response{data=service.SaleResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/sales/{id}/items/{itemId} [delete]
func (h *SaleHandler) RemoveItem(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	sale, err := h.saleService.RemoveItem(c.Request.Context(), ownerID, c.Param("id"), c.Param("itemId"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, sale))
}
