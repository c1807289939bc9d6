package profile

import (
	"errors"
	"net/http"
	"strings"

	"civix-api/internal/app/http/httperr"
	"civix-api/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Get(c *gin.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return httperr.Unauthorized("Unauthorized")
	}
	u, err := h.store.GetProfile(c.Request.Context(), userID)
	if err != nil {
		return storeError(err)
	}
	c.JSON(http.StatusOK, toDTO(*u))
	return nil
}

func (h *Handler) Update(c *gin.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return httperr.Unauthorized("Unauthorized")
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return httperr.Wrap(http.StatusBadRequest, "Invalid profile payload", err)
	}

	u, err := h.store.UpdateProfile(c.Request.Context(), userID, Changes{
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		Bio:     strings.TrimSpace(req.Bio),
	})
	if err != nil {
		return storeError(err)
	}
	c.JSON(http.StatusOK, toDTO(*u))
	return nil
}

func storeError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return httperr.NotFound("User not found")
	}
	return httperr.Internal(err)
}
