package handlers

import (
	"github.com/gin-gonic/gin"

	"shopstack/internal/api/requestctx"
	"shopstack/internal/response"
	"shopstack/internal/services/product"
)

type ProductHandler struct {
	productSvc *product.Service
}

func NewProductHandler(productSvc *product.Service) *ProductHandler {
	return &ProductHandler{productSvc: productSvc}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input product.CreateProductInput
	if !bindJSON(c, &input) {
		return
	}

	state := requestctx.Get(c)
	created, svcErr := h.productSvc.CreateProduct(c.Request.Context(), state.User, input)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendCreated(c, created)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	var params product.ListProductsParams
	if !bindQuery(c, &params) {
		return
	}

	page, svcErr := h.productSvc.ListProducts(c.Request.Context(), params)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, page)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, svcErr := h.productSvc.GetProduct(c.Param("id"))
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, p)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var input product.UpdateProductInput
	if !bindJSON(c, &input) {
		return
	}

	state := requestctx.Get(c)
	updated, svcErr := h.productSvc.UpdateProduct(c.Request.Context(), state.User, c.Param("id"), input)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, updated)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	state := requestctx.Get(c)
	if svcErr := h.productSvc.DeleteProduct(c.Request.Context(), state.User, c.Param("id")); svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, nil)
}

func (h *ProductHandler) CreateDiscount(c *gin.Context) {
	var input product.CreateDiscountInput
	if !bindJSON(c, &input) {
		return
	}

	state := requestctx.Get(c)
	created, svcErr := h.productSvc.CreateDiscount(c.Request.Context(), state.User, input)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendCreated(c, created)
}
