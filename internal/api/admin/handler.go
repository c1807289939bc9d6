package admin

import (
	"net/http"
	"time"

	"civix-api/internal/app/http/httperr"

	"github.com/gin-gonic/gin"
)

type AdminUser struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Stats(c *gin.Context) error {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		return httperr.Internal(err)
	}
	c.JSON(http.StatusOK, stats)
	return nil
}

func (h *Handler) ListUsers(c *gin.Context) error {
	list, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		return httperr.Internal(err)
	}

	out := make([]AdminUser, 0, len(list))
	for _, u := range list {
		out = append(out, AdminUser{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
	return nil
}
