package issues

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"civix-api/internal/app/http/httperr"
	"civix-api/internal/app/http/middleware"
	"civix-api/internal/domain/issues"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Handler struct {
	store Store
	log   *logrus.Logger
}

func NewHandler(store Store, log *logrus.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// Create stores a new report. The body has already been sanitized, so a
// title made only of markup arrives empty and is rejected.
func (h *Handler) Create(c *gin.Context) error {
	var req CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return httperr.Wrap(http.StatusBadRequest, "Invalid issue payload", err)
	}

	issue := issues.Issue{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.ToLower(strings.TrimSpace(req.Category)),
		Location:    strings.TrimSpace(req.Location),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Status:      issues.StatusPending,
	}
	if issue.Title == "" || issue.Description == "" {
		return httperr.BadRequest("Title and description are required")
	}
	if issue.Category == "" {
		issue.Category = issues.CategoryOther
	}
	if uid, ok := middleware.UserID(c); ok {
		issue.ReporterID = &uid
	}

	if err := h.store.Create(c.Request.Context(), &issue); err != nil {
		return httperr.Internal(err)
	}

	h.log.WithFields(logrus.Fields{
		"issue_id": issue.ID,
		"category": issue.Category,
	}).Info("issue reported")

	c.JSON(http.StatusCreated, toDTO(issue))
	return nil
}

func (h *Handler) List(c *gin.Context) error {
	f := ListFilter{
		Category: strings.ToLower(strings.TrimSpace(c.Query("category"))),
		Limit:    defaultLimit,
	}

	if s := c.Query("status"); s != "" {
		f.Status = issues.Status(s)
		if !f.Status.Valid() {
			return httperr.BadRequest("Unknown status filter")
		}
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return httperr.BadRequest("limit must be a positive integer")
		}
		f.Limit = min(n, maxLimit)
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return httperr.BadRequest("offset must be a non-negative integer")
		}
		f.Offset = n
	}

	list, total, err := h.store.List(c.Request.Context(), f)
	if err != nil {
		return httperr.Internal(err)
	}

	c.JSON(http.StatusOK, ListResponse{
		Issues: toDTOs(list),
		Total:  total,
		Limit:  f.Limit,
		Offset: f.Offset,
	})
	return nil
}

func (h *Handler) Get(c *gin.Context) error {
	id, err := issueID(c)
	if err != nil {
		return err
	}
	issue, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		return storeError(err)
	}
	c.JSON(http.StatusOK, toDTO(*issue))
	return nil
}

func (h *Handler) UpdateStatus(c *gin.Context) error {
	id, err := issueID(c)
	if err != nil {
		return err
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return httperr.Wrap(http.StatusBadRequest, "Invalid status payload", err)
	}
	status := issues.Status(req.Status)
	if !status.Valid() {
		return httperr.BadRequest("Status must be one of pending, in_progress, resolved, rejected")
	}

	issue, err := h.store.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		return storeError(err)
	}

	h.log.WithFields(logrus.Fields{
		"issue_id": id,
		"status":   status,
		"by":       c.GetString(middleware.EmailKey),
	}).Info("issue status changed")

	c.JSON(http.StatusOK, toDTO(*issue))
	return nil
}

func (h *Handler) Delete(c *gin.Context) error {
	id, err := issueID(c)
	if err != nil {
		return err
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		return storeError(err)
	}
	c.Status(http.StatusNoContent)
	return nil
}

func issueID(c *gin.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", httperr.NotFound("Issue not found")
	}
	return id, nil
}

func storeError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return httperr.NotFound("Issue not found")
	}
	return httperr.Internal(err)
}
