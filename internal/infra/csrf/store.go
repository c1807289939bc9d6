package csrf

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultCookieName is the name of the secret cookie.
	DefaultCookieName = "_csrf"
	// DefaultMaxAge is the secret cookie lifetime in seconds (1 hour).
	DefaultMaxAge = 3600

	minKeyLength = 32
)

// CookieOptions holds the attributes of the secret cookie.
type CookieOptions struct {
	Name     string
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	SameSite http.SameSite

	now func() time.Time
}

// Option configures a Store.
type Option func(*CookieOptions)

// WithCookieName overrides the secret cookie name.
func WithCookieName(name string) Option {
	return func(o *CookieOptions) {
		if name != "" {
			o.Name = name
		}
	}
}

// WithSecure toggles the Secure attribute. Production sets it; local HTTP
// development cannot.
func WithSecure(secure bool) Option {
	return func(o *CookieOptions) {
		o.Secure = secure
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(o *CookieOptions) {
		o.Domain = domain
	}
}

// WithMaxAge sets the cookie lifetime in seconds.
func WithMaxAge(seconds int) Option {
	return func(o *CookieOptions) {
		if seconds > 0 {
			o.MaxAge = seconds
		}
	}
}

// WithClock replaces time.Now when stamping and checking cookie age.
func WithClock(now func() time.Time) Option {
	return func(o *CookieOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// Store reads and writes the signed secret cookie. The first key signs;
// every key is accepted on read so keys can be rotated. The signed value
// carries its issue time and is refused once older than MaxAge.
type Store struct {
	keys   [][]byte
	cookie CookieOptions
}

// NewStore builds a Store from signing keys of at least 32 characters.
// Empty keys are ignored.
func NewStore(keys []string, opts ...Option) (*Store, error) {
	keys = slices.DeleteFunc(slices.Clone(keys), func(k string) bool { return strings.TrimSpace(k) == "" })
	if len(keys) == 0 {
		return nil, ErrNoSigningKey
	}

	raw := make([][]byte, 0, len(keys))
	for i, k := range keys {
		if len(k) < minKeyLength {
			return nil, fmt.Errorf("%w: key %d has %d chars", ErrSigningKeyTooShort, i, len(k))
		}
		raw = append(raw, []byte(k))
	}

	cookie := CookieOptions{
		Name:     DefaultCookieName,
		Path:     "/",
		MaxAge:   DefaultMaxAge,
		SameSite: http.SameSiteStrictMode,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&cookie)
	}

	return &Store{keys: raw, cookie: cookie}, nil
}

// CookieName returns the secret cookie name.
func (s *Store) CookieName() string {
	return s.cookie.Name
}

// Secret returns the verified secret carried by r.
func (s *Store) Secret(r *http.Request) (string, error) {
	c, err := r.Cookie(s.cookie.Name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrSecretNotFound
		}
		return "", err
	}
	return s.open(c.Value)
}

// SetSecret writes secret to w as a signed HTTP-only cookie.
func (s *Store) SetSecret(w http.ResponseWriter, secret string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    s.sign(secret),
		Path:     s.cookie.Path,
		Domain:   s.cookie.Domain,
		MaxAge:   s.cookie.MaxAge,
		Secure:   s.cookie.Secure,
		HttpOnly: true,
		SameSite: s.cookie.SameSite,
	})
}

// sign returns secret.issuedAt.mac, issuedAt in unix seconds.
func (s *Store) sign(secret string) string {
	payload := secret + "." + strconv.FormatInt(s.cookie.now().Unix(), 10)
	return payload + "." + signature(s.keys[0], payload)
}

func (s *Store) open(value string) (string, error) {
	parts := strings.Split(value, ".")
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return "", ErrInvalidSignature
	}
	payload, sig := parts[0]+"."+parts[1], parts[2]

	verified := false
	for _, key := range s.keys {
		if subtle.ConstantTimeCompare([]byte(sig), []byte(signature(key, payload))) == 1 {
			verified = true
			break
		}
	}
	if !verified {
		return "", ErrInvalidSignature
	}

	issued, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", ErrInvalidSignature
	}
	age := s.cookie.now().Sub(time.Unix(issued, 0))
	if age > time.Duration(s.cookie.MaxAge)*time.Second {
		return "", ErrSecretExpired
	}
	return parts[0], nil
}

func signature(key []byte, value string) string {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
