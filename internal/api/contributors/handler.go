package contributors

import (
	"net/http"
	"strconv"

	"civix-api/internal/app/http/httperr"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) List(c *gin.Context) error {
	limit := defaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return httperr.BadRequest("limit must be a positive integer")
		}
		limit = min(n, maxLimit)
	}

	list, err := h.store.TopContributors(c.Request.Context(), limit)
	if err != nil {
		return httperr.Internal(err)
	}
	if list == nil {
		list = []Contributor{}
	}
	c.JSON(http.StatusOK, gin.H{"contributors": list})
	return nil
}
