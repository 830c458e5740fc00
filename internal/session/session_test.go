package session

import (
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/application"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestManagerRoundTrip(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	manager := NewManager([]byte("session-secret"), 12*time.Hour, fixedClock(base))

	phone := "0712345678"
	user := application.User{
		ID:    "user-1",
		Name:  "Alice Official",
		Email: "alice@example.com",
		Phone: &phone,
		Role:  application.RoleOfficial,
	}

	token, expiresAt, err := manager.Issue(user)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if want := base.Add(12 * time.Hour); !expiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, expiresAt)
	}

	principal, err := manager.Resolve(token)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := application.Principal{
		UserID: "user-1",
		Role:   application.RoleOfficial,
		Name:   "Alice Official",
		Email:  "alice@example.com",
		Phone:  "0712345678",
	}
	if principal != want {
		t.Fatalf("expected %+v, got %+v", want, principal)
	}
}

func TestManagerOmitsMissingPhone(t *testing.T) {
	manager := NewManager([]byte("session-secret"), 0, nil)

	token, _, err := manager.Issue(application.User{
		ID:    "user-2",
		Name:  "Bob Manager",
		Email: "bob@example.com",
		Role:  application.RoleManager,
	})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	principal, err := manager.Resolve(token)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if principal.Phone != "" {
		t.Fatalf("expected empty phone, got %q", principal.Phone)
	}
	if principal.Role != application.RoleManager {
		t.Fatalf("expected manager role, got %s", principal.Role)
	}
}

func TestManagerRejectsExpired(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	issuer := NewManager([]byte("session-secret"), time.Hour, fixedClock(base))

	token, _, err := issuer.Issue(application.User{ID: "user-1", Role: application.RoleOfficial})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	resolver := NewManager([]byte("session-secret"), time.Hour, fixedClock(base.Add(61*time.Minute)))
	if _, err := resolver.Resolve(token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for expired token, got %v", err)
	}
}

func TestManagerRejectsWrongSecret(t *testing.T) {
	issuer := NewManager([]byte("session-secret"), time.Hour, nil)

	token, _, err := issuer.Issue(application.User{ID: "user-1", Role: application.RoleOfficial})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	resolver := NewManager([]byte("other-secret"), time.Hour, nil)
	if _, err := resolver.Resolve(token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for wrong secret, got %v", err)
	}
}

func TestManagerRejectsGarbage(t *testing.T) {
	manager := NewManager([]byte("session-secret"), time.Hour, nil)
	if _, err := manager.Resolve("not-a-token"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}
