package handler

import (
	"net/http"

	"salesledger/internal/service"
	"salesledger/pkg/pagination"
	"salesledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReceivableHandler struct {
	receivableService service.ReceivableService
}

func NewReceivableHandler(receivableService service.ReceivableService) *ReceivableHandler {
	return &ReceivableHandler{receivableService: receivableService}
}

func (h *ReceivableHandler) RegisterRoutes(router *gin.RouterGroup) {
	receivables := router.Group("/receivables")
	{
		receivables.GET("", h.ListReceivables)
		receivables.GET("/:id", h.GetReceivable)
		receivables.POST("/:id/pay", h.MarkPaid)
		receivables.POST("/:id/unpay", h.MarkUnpaid)
	}
}

// ListReceivables refreshes statuses and returns a filtered page
// @Summary      List receivables
// @Tags         receivables
// @Security     BearerAuth
// @Produce      json
// @Param        page       query     int     false  "Page number (default: 1)"
// @Param        limit      query     int     false  "Items per page (default: 20)"
// @Param        status     query     string  false  "PENDING (default), OVERDUE, PAID or ALL"
// @Param        client_id  query     string  false  "Client ID"
// @Param        from       query     string  false  "Due on or after (YYYY-MM-DD)"
// @Param        to         query     string  false  "Due on or before (YYYY-MM-DD)"
// @Success      200  {object}  response.Response{data=service.ReceivableListResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/receivables [get]
func (h *ReceivableHandler) ListReceivables(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	var query service.AccountListQuery
	if !bindQuery(c, &query) {
		return
	}
	p := pagination.Parse(c)

	res, err := h.receivableService.List(c.Request.Context(), ownerID, query, p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, res, p.Page, p.Limit, res.Total))
}

// GetReceivable
// @Summary      Get receivable
// @Tags         receivables
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Receivable ID"
// @Success      200  {object}  response.Response{data=service.ReceivableDetailResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/receivables/{id} [get]
func (h *ReceivableHandler) GetReceivable(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	res, err := h.receivableService.Get(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// MarkPaid
// @Summary      Mark receivable paid
// @Tags         receivables
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                   true  "Receivable ID"
// @Param        payload  body  service.MarkPaidRequest  true  "Payment date"
// @Success      200  {object}  response.Response{data=service.ReceivableResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/receivables/{id}/pay [post]
func (h *ReceivableHandler) MarkPaid(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	var req service.MarkPaidRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.receivableService.MarkPaid(c.Request.Context(), ownerID, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// MarkUnpaid
// @Summary      Mark receivable unpaid
// @Tags         receivables
// @Security     BearerAuth
// @Produce      json
// @Param        id   path  string  true  "Receivable ID"
// @Success      200  {object}  response.Response{data=service.ReceivableResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/receivables/{id}/unpay [post]
func (h *ReceivableHandler) MarkUnpaid(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	res, err := h.receivableService.MarkUnpaid(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

type PayableHandler struct {
	payableService service.PayableService
}

func NewPayableHandler(payableService service.PayableService) *PayableHandler {
	return &PayableHandler{payableService: payableService}
}

func (h *PayableHandler) RegisterRoutes(router *gin.RouterGroup) {
	payables := router.Group("/payables")
	{
		payables.GET("", h.ListPayables)
		payables.POST("", h.CreatePayable)
		payables.GET("/:id", h.GetPayable)
		payables.PUT("/:id", h.UpdatePayable)
		payables.DELETE("/:id", h.DeletePayable)
		payables.POST("/:id/pay", h.MarkPaid)
		payables.POST("/:id/unpay", h.MarkUnpaid)
	}
}

// ListPayables
// @Summary      List payables
// @Tags         payables
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default: 1)"
// @Param        limit   query     int     false  "Items per page (default: 20)"
// @Param        status  query     string  false  "PENDING (default), OVERDUE, PAID or ALL"
// @Param        search  query     string  false  "Search description"
// @Param        from    query     string  false  "Due on or after (YYYY-MM-DD)"
// @Param        to      query     string  false  "Due on or before (YYYY-MM-DD)"
// @Success      200  {object}  response.Response{data=service.PayableListResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/payables [get]
func (h *PayableHandler) ListPayables(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	var query service.AccountListQuery
	if !bindQuery(c, &query) {
		return
	}
	p := pagination.Parse(c)

	res, err := h.payableService.List(c.Request.Context(), ownerID, query, p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, res, p.Page, p.Limit, res.Total))
}

// CreatePayable
// @Summary      Create payable
// @Tags         payables
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.PayableRequest  true  "Payable payload"
// @Success      201  {object}  response.Response{data=service.PayableResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/payables [post]
func (h *PayableHandler) CreatePayable(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	var req service.PayableRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.payableService.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// GetPayable
// @Summary      Get payable
// @Tags         payables
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payable ID"
// @Success      200  {object}  response.Response{data=service.PayableResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/payables/{id} [get]
func (h *PayableHandler) GetPayable(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	res, err := h.payableService.Get(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// UpdatePayable
// @Summary      Update payable
// @Tags         payables
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                  true  "Payable ID"
// @Param        payload  body  service.PayableRequest  true  "Payable payload"
// @Success      200  {object}  response.Response{data=service.PayableResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/payables/{id} [put]
func (h *PayableHandler) UpdatePayable(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	var req service.PayableRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.payableService.Update(c.Request.Context(), ownerID, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// DeletePayable
// @Summary      Delete payable
// @Tags         payables
// @Security     BearerAuth
// @Produce      json
// @Param        id   path  string  true  "Payable ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/payables/{id} [delete]
func (h *PayableHandler) DeletePayable(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	if err := h.payableService.Delete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Payable deleted successfully"))
}

// MarkPaid
// @Summary      Mark payable paid
// @Tags         payables
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                   true  "Payable ID"
// @Param        payload  body  service.MarkPaidRequest  true  "Payment date"
// @Success      200  {object}  response.Response{data=service.PayableResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/payables/{id}/pay [post]
func (h *PayableHandler) MarkPaid(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	var req service.MarkPaidRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.payableService.MarkPaid(c.Request.Context(), ownerID, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// MarkUnpaid
// @Summary      Mark payable unpaid
// @Tags         payables
// @Security     BearerAuth
// @Produce      json
// @Param        id   path  string  true  "Payable ID"
// @Success      200  {object}  response.Response{data=service.PayableResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/payables/{id}/unpay [post]
func (h *PayableHandler) MarkUnpaid(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	res, err := h.payableService.MarkUnpaid(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
