// Package session issues and resolves stateless session tokens. A session is
// an HS256-signed JWT carrying the principal fields the services need, so no
// session table is kept server-side.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/room-booking/internal/application"
)

// ErrInvalidSession is returned when a session token is malformed, expired,
// or was not signed with the configured secret.
var ErrInvalidSession = errors.New("session: invalid session token")

// DefaultTTL bounds how long an issued session stays usable.
const DefaultTTL = 12 * time.Hour

// Manager signs and verifies session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager constructs a Manager signing with secret. A zero ttl falls back
// to DefaultTTL, a nil now falls back to time.Now.
func NewManager(secret []byte, ttl time.Duration, now func() time.Time) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Manager{secret: secret, ttl: ttl, now: now}
}

// Issue mints a session token for an authenticated user.
func (m *Manager) Issue(user application.User) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)

	phone := ""
	if user.Phone != nil {
		phone = *user.Phone
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"role":  string(user.Role),
		"name":  user.Name,
		"email": user.Email,
		"phone": phone,
		"iat":   issuedAt.Unix(),
		"exp":   expiresAt.Unix(),
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Resolve validates a session token and reconstructs the principal it was
// issued for.
func (m *Manager) Resolve(tokenString string) (application.Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return application.Principal{}, ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return application.Principal{}, ErrInvalidSession
	}

	userID, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || role == "" {
		return application.Principal{}, ErrInvalidSession
	}

	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	phone, _ := claims["phone"].(string)

	return application.Principal{
		UserID: userID,
		Role:   application.Role(role),
		Name:   name,
		Email:  email,
		Phone:  phone,
	}, nil
}
