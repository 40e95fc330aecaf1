package requestctx

import (
	"github.com/gin-gonic/gin"

	"shopstack/internal/database/models"
)

const stateKey = "request_state"

// State carries the per-request authenticated identity and intermediate
// values between middleware stages and handlers. Typed fields instead of
// loose context keys.
type State struct {
	User             *models.User
	LoginSession     *models.LoginSession
	PreviousPassword *models.UserPassword
}

func Set(c *gin.Context, s *State) {
	c.Set(stateKey, s)
}

// Get returns the request state, or an empty one when no middleware has
// attached anything yet.
func Get(c *gin.Context) *State {
	if v, ok := c.Get(stateKey); ok {
		if s, ok := v.(*State); ok {
			return s
		}
	}
	s := &State{}
	c.Set(stateKey, s)
	return s
}
