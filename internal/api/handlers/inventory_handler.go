package handlers

import (
	"github.com/gin-gonic/gin"

	"shopstack/internal/api/requestctx"
	"shopstack/internal/response"
	"shopstack/internal/services/inventory"
)

type InventoryHandler struct {
	inventorySvc *inventory.Service
}

func NewInventoryHandler(inventorySvc *inventory.Service) *InventoryHandler {
	return &InventoryHandler{inventorySvc: inventorySvc}
}

func (h *InventoryHandler) AddStock(c *gin.Context) {
	var input inventory.AddStockInput
	if !bindJSON(c, &input) {
		return
	}

	state := requestctx.Get(c)
	entry, svcErr := h.inventorySvc.AddStock(c.Request.Context(), state.User, input)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendCreated(c, entry)
}

func (h *InventoryHandler) RemoveStock(c *gin.Context) {
	var input inventory.RemoveStockInput
	if !bindJSON(c, &input) {
		return
	}

	state := requestctx.Get(c)
	removal, svcErr := h.inventorySvc.RemoveStock(c.Request.Context(), state.User, input)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendCreated(c, removal)
}

func (h *InventoryHandler) ListStockEntries(c *gin.Context) {
	var params inventory.ListParams
	if !bindQuery(c, &params) {
		return
	}

	page, svcErr := h.inventorySvc.ListStockEntries(params)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, page)
}

func (h *InventoryHandler) ListStockRemovals(c *gin.Context) {
	var params inventory.ListParams
	if !bindQuery(c, &params) {
		return
	}

	page, svcErr := h.inventorySvc.ListStockRemovals(params)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, page)
}
