package handlers

import (
	"github.com/gin-gonic/gin"

	"shopstack/internal/api/requestctx"
	"shopstack/internal/response"
	"shopstack/internal/services/auth"
)

type AuthHandler struct {
	authSvc *auth.Service
}

func NewAuthHandler(authSvc *auth.Service) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input auth.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	result, svcErr := h.authSvc.Login(input)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, result)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var input auth.ResetPasswordInput
	if !bindJSON(c, &input) {
		return
	}

	result, svcErr := h.authSvc.ResetPassword(input)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, result)
}

func (h *AuthHandler) Me(c *gin.Context) {
	state := requestctx.Get(c)
	response.SendSuccess(c, state.User)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	state := requestctx.Get(c)
	if svcErr := h.authSvc.Logout(state.LoginSession); svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, nil)
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var input auth.UpdatePasswordInput
	if !bindJSON(c, &input) {
		return
	}

	state := requestctx.Get(c)
	result, svcErr := h.authSvc.UpdatePassword(state, input)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, result)
}
