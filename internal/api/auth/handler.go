package auth

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"civix-api/internal/app/http/httperr"
	"civix-api/internal/app/http/middleware"
	"civix-api/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func isPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func isEmailValid(email string) bool {
	return emailPattern.MatchString(email)
}

type Handler struct {
	store  Store
	secret []byte
	log    *logrus.Logger
	now    func() time.Time
}

func NewHandler(store Store, secret []byte, log *logrus.Logger) *Handler {
	return &Handler{store: store, secret: secret, log: log, now: time.Now}
}

func (h *Handler) Register(c *gin.Context) error {
	var input struct {
		Name     string `json:"name" binding:"required,max=100"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		return httperr.Wrap(http.StatusBadRequest, "Invalid registration payload", err)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !isEmailValid(email) {
		return httperr.BadRequest("Invalid email format")
	}
	if !isPasswordStrong(input.Password) {
		return httperr.BadRequest("Password must be at least 8 characters long and contain both letters and numbers")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return httperr.Internal(err)
	}

	user := users.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Password: string(hashed),
		Role:     users.RoleCitizen,
	}
	if err := h.store.CreateUser(c.Request.Context(), &user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return httperr.Conflict("Email already registered")
		}
		return httperr.Internal(err)
	}

	h.log.WithField("user_id", user.ID).Info("user registered")
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "name": user.Name, "email": user.Email, "role": user.Role})
	return nil
}

func (h *Handler) Login(c *gin.Context) error {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		return httperr.Wrap(http.StatusBadRequest, "Invalid login payload", err)
	}

	user, err := h.store.FindByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(input.Email)))
	if errors.Is(err, ErrUserNotFound) {
		return httperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return httperr.Internal(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return httperr.Unauthorized("Invalid credentials")
	}

	token, err := IssueToken(h.secret, *user, h.now())
	if err != nil {
		return httperr.Internal(err)
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
	return nil
}

func (h *Handler) ChangePassword(c *gin.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return httperr.Unauthorized("Unauthorized")
	}

	var body struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		return httperr.Wrap(http.StatusBadRequest, "Invalid request", err)
	}
	if !isPasswordStrong(body.NewPassword) {
		return httperr.BadRequest("Password must be at least 8 characters with letters and numbers")
	}

	user, err := h.store.FindByID(c.Request.Context(), userID)
	if errors.Is(err, ErrUserNotFound) {
		return httperr.Unauthorized("Unauthorized")
	}
	if err != nil {
		return httperr.Internal(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.OldPassword)); err != nil {
		return httperr.Unauthorized("Old password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return httperr.Internal(err)
	}
	if err := h.store.UpdatePassword(c.Request.Context(), userID, string(hashed)); err != nil {
		return httperr.Internal(err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
	return nil
}
