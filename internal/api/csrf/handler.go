package csrf

import (
	"net/http"

	"civix-api/internal/app/http/httperr"
	"civix-api/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

// Token hands the client a token for its session, setting the secret
// cookie when the session has none yet.
func Token(c *gin.Context) error {
	token, err := middleware.CSRFToken(c)
	if err != nil {
		return httperr.Internal(err)
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"csrfToken": token})
	return nil
}
