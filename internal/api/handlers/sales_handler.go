package handlers

import (
	"github.com/gin-gonic/gin"

	"shopstack/internal/api/requestctx"
	"shopstack/internal/metrics"
	"shopstack/internal/response"
	"shopstack/internal/services/sales"
)

type SalesHandler struct {
	salesSvc *sales.Service
	metrics  *metrics.ServerMetrics
}

func NewSalesHandler(salesSvc *sales.Service, m *metrics.ServerMetrics) *SalesHandler {
	return &SalesHandler{salesSvc: salesSvc, metrics: m}
}

func (h *SalesHandler) Checkout(c *gin.Context) {
	var input sales.CheckoutInput
	if !bindJSON(c, &input) {
		return
	}

	state := requestctx.Get(c)
	result, svcErr := h.salesSvc.Checkout(c.Request.Context(), state.User, input)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	if h.metrics != nil {
		h.metrics.Checkouts.Inc()
	}
	response.SendCreated(c, result)
}

func (h *SalesHandler) ListSales(c *gin.Context) {
	var params sales.ListSalesParams
	if !bindQuery(c, &params) {
		return
	}

	page, svcErr := h.salesSvc.ListSales(params)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, page)
}

func (h *SalesHandler) GetSales(c *gin.Context) {
	result, svcErr := h.salesSvc.GetSales(c.Param("id"))
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, result)
}

func (h *SalesHandler) ListSalesItems(c *gin.Context) {
	var params sales.ListSalesItemsParams
	if !bindQuery(c, &params) {
		return
	}

	page, svcErr := h.salesSvc.ListSalesItems(params)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, page)
}
