package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrResetTokenInvalid is returned when a reset token is malformed, expired,
// or was not signed with the configured secret.
var ErrResetTokenInvalid = errors.New("credential: reset token invalid")

// DefaultResetTokenTTL bounds how long an issued reset token stays usable.
const DefaultResetTokenTTL = 45 * time.Minute

// ResetTokens issues and resolves signed password-reset tokens. A token is a
// compact JWT carrying only the account email, so no server-side state is
// required between the request and the reset.
type ResetTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewResetTokens constructs a token source signing with secret. A zero ttl
// falls back to DefaultResetTokenTTL, a nil now falls back to time.Now.
func NewResetTokens(secret []byte, ttl time.Duration, now func() time.Time) *ResetTokens {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &ResetTokens{secret: secret, ttl: ttl, now: now}
}

// Issue signs a reset token for email.
func (r *ResetTokens) Issue(email string) (string, error) {
	issuedAt := r.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": email,
		"use": "password_reset",
		"iat": issuedAt.Unix(),
		"exp": issuedAt.Add(r.ttl).Unix(),
	})
	return token.SignedString(r.secret)
}

// Resolve validates a token and returns the email it was issued for.
func (r *ResetTokens) Resolve(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.secret, nil
	}, jwt.WithTimeFunc(r.now))
	if err != nil || !token.Valid {
		return "", ErrResetTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrResetTokenInvalid
	}
	if use, _ := claims["use"].(string); use != "password_reset" {
		return "", ErrResetTokenInvalid
	}
	email, _ := claims["sub"].(string)
	if email == "" {
		return "", ErrResetTokenInvalid
	}
	return email, nil
}
