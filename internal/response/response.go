package response

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ServiceError is the structured failure a domain service hands back to its
// handler. It never wraps raw storage errors into the client message; the
// original error is kept for logging only.
type ServiceError struct {
	Status int
	Msg    Message
	Err    error
	Data   interface{}
}

func (e *ServiceError) Error() string {
	return e.Msg.Text
}

func NewError(status int, msg Message) *ServiceError {
	return &ServiceError{Status: status, Msg: msg}
}

func NewErrorWithData(status int, msg Message, data interface{}) *ServiceError {
	return &ServiceError{Status: status, Msg: msg, Data: data}
}

// Internal wraps an unexpected error. The cause is logged when the response
// is sent; the client only ever sees the generic message.
func Internal(err error) *ServiceError {
	return &ServiceError{Status: http.StatusInternalServerError, Msg: ErrorOccurred, Err: err}
}

func SendSuccess(c *gin.Context, data interface{}) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func SendCreated(c *gin.Context, data interface{}) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func SendError(c *gin.Context, svcErr *ServiceError) {
	if svcErr == nil {
		svcErr = Internal(nil)
	}

	status := svcErr.Status
	msg := svcErr.Msg
	if field, ok := DuplicateField(svcErr.Err); ok {
		status = http.StatusBadRequest
		msg = Message{1, "Duplicate value for " + field}
	}

	if status >= http.StatusInternalServerError {
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, svcErr.Err)
	}

	body := gin.H{
		"success":    false,
		"message":    msg.Text,
		"error_code": msg.Code,
	}
	if svcErr.Data != nil {
		body["data"] = svcErr.Data
	}
	c.AbortWithStatusJSON(status, body)
}

// DuplicateField reports whether err is a unique constraint violation and
// extracts the offending column name. Both the postgres and sqlite error
// formats are handled.
func DuplicateField(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	msg := err.Error()

	// sqlite: UNIQUE constraint failed: products.code
	if i := strings.Index(msg, "UNIQUE constraint failed: "); i >= 0 {
		rest := msg[i+len("UNIQUE constraint failed: "):]
		if j := strings.IndexAny(rest, ", ("); j >= 0 {
			rest = rest[:j]
		}
		if k := strings.LastIndex(rest, "."); k >= 0 {
			rest = rest[k+1:]
		}
		return rest, true
	}

	// postgres: duplicate key value violates unique constraint "idx_products_code"
	if strings.Contains(msg, "duplicate key value violates unique constraint") {
		start := strings.Index(msg, `"`)
		end := strings.LastIndex(msg, `"`)
		if start >= 0 && end > start+1 {
			name := strings.TrimPrefix(msg[start+1:end], "idx_")
			if k := strings.Index(name, "_"); k >= 0 {
				name = name[k+1:]
			}
			return name, true
		}
		return "field", true
	}

	return "", false
}

// IsDuplicate reports whether err is a unique constraint violation.
func IsDuplicate(err error) bool {
	_, ok := DuplicateField(err)
	return ok
}
