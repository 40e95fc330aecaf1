package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopstack/internal/response"
)

func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		response.SendError(c, &response.ServiceError{
			Status: http.StatusBadRequest,
			Msg:    response.BadRequest(err.Error()),
		})
		return false
	}
	return true
}

func bindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		response.SendError(c, &response.ServiceError{
			Status: http.StatusBadRequest,
			Msg:    response.BadRequest(err.Error()),
		})
		return false
	}
	return true
}
