package credential

import (
	"errors"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestResetTokensRoundTrip(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	tokens := NewResetTokens([]byte("reset-secret"), 45*time.Minute, fixedClock(base))

	token, err := tokens.Issue("official@example.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	email, err := tokens.Resolve(token)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if email != "official@example.com" {
		t.Fatalf("expected official@example.com, got %s", email)
	}
}

func TestResetTokensRejectExpired(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	issuer := NewResetTokens([]byte("reset-secret"), 30*time.Minute, fixedClock(base))

	token, err := issuer.Issue("official@example.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	resolver := NewResetTokens([]byte("reset-secret"), 30*time.Minute, fixedClock(base.Add(31*time.Minute)))
	if _, err := resolver.Resolve(token); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid for expired token, got %v", err)
	}
}

func TestResetTokensRejectWrongSecret(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	issuer := NewResetTokens([]byte("reset-secret"), 30*time.Minute, fixedClock(base))

	token, err := issuer.Issue("official@example.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	resolver := NewResetTokens([]byte("other-secret"), 30*time.Minute, fixedClock(base))
	if _, err := resolver.Resolve(token); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid for wrong secret, got %v", err)
	}
}

func TestResetTokensRejectGarbage(t *testing.T) {
	tokens := NewResetTokens([]byte("reset-secret"), 30*time.Minute, nil)

	for name, token := range map[string]string{
		"empty":      "",
		"not a jwt":  "plainly-not-a-token",
		"bad header": "eyJhbGciOiJub25lIn0.e30.",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := tokens.Resolve(token); !errors.Is(err, ErrResetTokenInvalid) {
				t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
			}
		})
	}
}
