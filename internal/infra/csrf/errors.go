package csrf

import "errors"

var (
	// ErrTokenInvalid is raised when a state-changing request carries no
	// token or one that does not match the session secret.
	ErrTokenInvalid = errors.New("csrf: invalid token")

	// ErrNoSigningKey indicates the store was built without keys.
	ErrNoSigningKey = errors.New("csrf: no signing key configured")

	// ErrSigningKeyTooShort indicates a key under 32 characters.
	ErrSigningKeyTooShort = errors.New("csrf: signing key must be at least 32 characters")

	// ErrSecretNotFound indicates the request has no secret cookie.
	ErrSecretNotFound = errors.New("csrf: secret cookie not found")

	// ErrInvalidSignature indicates a secret cookie that fails verification.
	ErrInvalidSignature = errors.New("csrf: secret cookie signature invalid")

	// ErrSecretExpired indicates a secret cookie signed more than MaxAge ago.
	ErrSecretExpired = errors.New("csrf: secret cookie expired")

	// ErrInvalidPattern wraps a bad exemption regex.
	ErrInvalidPattern = errors.New("csrf: invalid exemption pattern")
)
