package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

func testUser(id, email, role string, createdAt time.Time) persistence.User {
	return persistence.User{
		ID:           id,
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$argon2id$stub",
		Role:         role,
		CreatedAt:    createdAt,
	}
}

func TestUserRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestPool(t))

	created := testUser("u1", "Alice@Example.com", persistence.RoleOfficial, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	phone := "0712345678"
	created.Phone = &phone

	if err := repo.CreateUser(ctx, created); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	got, err := repo.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", got.Email)
	}
	if got.Phone == nil || *got.Phone != phone {
		t.Fatalf("expected phone %q, got %v", phone, got.Phone)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected CreatedAt %v, got %v", created.CreatedAt, got.CreatedAt)
	}

	byEmail, err := repo.GetUserByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail returned error: %v", err)
	}
	if byEmail.ID != "u1" {
		t.Fatalf("expected u1, got %s", byEmail.ID)
	}
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestPool(t))

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	if err := repo.CreateUser(ctx, testUser("u1", "alice@example.com", persistence.RoleOfficial, base)); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	err := repo.CreateUser(ctx, testUser("u2", "Alice@example.com", persistence.RoleOfficial, base))
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestUserRepositoryListByRole(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestPool(t))

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	seed := []persistence.User{
		testUser("u1", "a@example.com", persistence.RoleManager, base.Add(time.Minute)),
		testUser("u2", "b@example.com", persistence.RoleOfficial, base),
		testUser("u3", "c@example.com", persistence.RoleManager, base),
	}
	for _, user := range seed {
		if err := repo.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser(%s) returned error: %v", user.ID, err)
		}
	}

	managers, err := repo.ListUsersByRole(ctx, persistence.RoleManager)
	if err != nil {
		t.Fatalf("ListUsersByRole returned error: %v", err)
	}
	if len(managers) != 2 || managers[0].ID != "u3" || managers[1].ID != "u1" {
		t.Fatalf("unexpected manager list: %+v", managers)
	}
}

func TestUserRepositoryUpdatePasswordHash(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestPool(t))

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	if err := repo.CreateUser(ctx, testUser("u1", "alice@example.com", persistence.RoleOfficial, base)); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if err := repo.UpdatePasswordHash(ctx, "u1", "$argon2id$new"); err != nil {
		t.Fatalf("UpdatePasswordHash returned error: %v", err)
	}
	got, err := repo.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if got.PasswordHash != "$argon2id$new" {
		t.Fatalf("expected updated hash, got %q", got.PasswordHash)
	}

	if err := repo.UpdatePasswordHash(ctx, "missing", "$argon2id$x"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
