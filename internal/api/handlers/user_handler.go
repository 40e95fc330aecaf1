package handlers

import (
	"github.com/gin-gonic/gin"

	"shopstack/internal/api/requestctx"
	"shopstack/internal/response"
	"shopstack/internal/services/user"
)

type UserHandler struct {
	userSvc *user.Service
}

func NewUserHandler(userSvc *user.Service) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var input user.CreateUserInput
	if !bindJSON(c, &input) {
		return
	}

	state := requestctx.Get(c)
	created, svcErr := h.userSvc.CreateUser(state.User, input)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendCreated(c, created)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	var params user.ListUsersParams
	if !bindQuery(c, &params) {
		return
	}

	page, svcErr := h.userSvc.ListUsers(params)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, page)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	state := requestctx.Get(c)
	if svcErr := h.userSvc.DeleteUser(state.User, c.Param("id")); svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, nil)
}

func (h *UserHandler) AssignPrivilege(c *gin.Context) {
	var input user.AssignPrivilegeInput
	if !bindJSON(c, &input) {
		return
	}

	state := requestctx.Get(c)
	privilege, svcErr := h.userSvc.AssignPrivilege(state.User, input)
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendCreated(c, privilege)
}

func (h *UserHandler) RevokePrivilege(c *gin.Context) {
	state := requestctx.Get(c)
	if svcErr := h.userSvc.RevokePrivilege(state.User, c.Param("id")); svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, nil)
}

func (h *UserHandler) ListPrivileges(c *gin.Context) {
	privileges, svcErr := h.userSvc.ListPrivileges(c.Query("user"))
	if svcErr != nil {
		response.SendError(c, svcErr)
		return
	}
	response.SendSuccess(c, privileges)
}
