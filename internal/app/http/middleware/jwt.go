package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"civix-api/internal/app/http/httperr"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set from token claims.
const (
	UserIDKey = "user_id"
	EmailKey  = "email"
	RoleKey   = "role"
)

var errNoBearer = errors.New("no bearer token")

// AuthMiddleware requires a valid HS256 bearer token.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := bearerClaims(c, secret)
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, errNoBearer) {
				msg = "Authorization header missing"
			}
			_ = c.Error(httperr.Wrap(http.StatusUnauthorized, msg, err))
			c.Abort()
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches the caller identity when a token is sent. A token
// that is present but invalid is still rejected.
func OptionalAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := bearerClaims(c, secret)
		switch {
		case errors.Is(err, errNoBearer):
		case err != nil:
			_ = c.Error(httperr.Wrap(http.StatusUnauthorized, "Invalid or expired token", err))
			c.Abort()
			return
		default:
			setClaims(c, claims)
		}
		c.Next()
	}
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(RoleKey)
		if !exists {
			_ = c.Error(httperr.Unauthorized("Role not found in token"))
			c.Abort()
			return
		}

		if value != role {
			_ = c.Error(httperr.Forbidden("Access denied"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// UserID returns the authenticated user id, if any.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func bearerClaims(c *gin.Context, secret []byte) (jwt.MapClaims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, errNoBearer
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, errors.New("bearer token malformed")
	}
	if len(secret) == 0 {
		return nil, errors.New("jwt secret not configured")
	}

	token, err := jwt.Parse(strings.TrimSpace(tokenString), func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims jwt.MapClaims) {
	if email, ok := claims["email"].(string); ok {
		c.Set(EmailKey, email)
	}
	if role, ok := claims["role"].(string); ok {
		c.Set(RoleKey, role)
	}
	if userIDFloat, ok := claims["user_id"].(float64); ok {
		c.Set(UserIDKey, uint(userIDFloat))
	}
}
