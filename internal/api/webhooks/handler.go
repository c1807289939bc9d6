package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"strings"

	issuesapi "civix-api/internal/api/issues"
	"civix-api/internal/app/http/httperr"
	"civix-api/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	HeaderSignature = "X-Webhook-Signature"
	maxPayloadBytes = 65536
)

// MediaStore attaches uploaded media to an issue.
type MediaStore interface {
	SetMediaURL(ctx context.Context, id, url string) error
}

type Handler struct {
	secret []byte
	store  MediaStore
	log    *logrus.Logger
}

func NewHandler(secret []byte, store MediaStore, log *logrus.Logger) *Handler {
	return &Handler{secret: secret, store: store, log: log}
}

type mediaEvent struct {
	IssueID   string `json:"issue_id" binding:"required"`
	SecureURL string `json:"secure_url" binding:"required"`
}

// Media receives upload notifications from the media host. The signature
// is a hex HMAC-SHA256 of the body as sent; the fields are read from the
// sanitized body.
func (h *Handler) Media(c *gin.Context) error {
	if len(h.secret) == 0 {
		return httperr.New(http.StatusServiceUnavailable, "Webhooks are not configured")
	}

	payload, ok := middleware.RawBody(c)
	if !ok {
		return httperr.New(http.StatusUnsupportedMediaType, "Webhook payload must be JSON")
	}
	if len(payload) > maxPayloadBytes {
		return httperr.New(http.StatusRequestEntityTooLarge, "Webhook payload too large")
	}

	if !validSignature(h.secret, payload, c.GetHeader(HeaderSignature)) {
		h.log.WithField("request_id", middleware.RequestID(c)).Warn("webhook signature verification failed")
		return httperr.BadRequest("Signature verification failed")
	}

	var ev mediaEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		return httperr.Wrap(http.StatusBadRequest, "Invalid webhook payload", err)
	}
	if _, err := uuid.Parse(ev.IssueID); err != nil {
		return httperr.BadRequest("issue_id must be a UUID")
	}
	if u, err := url.Parse(ev.SecureURL); err != nil || u.Scheme != "https" || u.Host == "" {
		return httperr.BadRequest("secure_url must be an https URL")
	}

	if err := h.store.SetMediaURL(c.Request.Context(), ev.IssueID, ev.SecureURL); err != nil {
		if errors.Is(err, issuesapi.ErrNotFound) {
			return httperr.NotFound("Issue not found")
		}
		return httperr.Internal(err)
	}

	h.log.WithField("issue_id", ev.IssueID).Info("media attached to issue")
	c.JSON(http.StatusOK, gin.H{"status": "received"})
	return nil
}

// Sign returns the signature header value for payload.
func Sign(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func validSignature(secret, payload []byte, header string) bool {
	header = strings.TrimPrefix(strings.TrimSpace(header), "sha256=")
	got, err := hex.DecodeString(header)
	if err != nil || len(got) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hmac.Equal(got, mac.Sum(nil))
}

