package testfixtures

import (
	"context"
	"testing"

	"github.com/example/room-booking/internal/application"
)

type capturingUserRepo struct {
	created application.User
	hash    string
}

func (c *capturingUserRepo) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	c.created = user
	c.hash = passwordHash
	return user, nil
}

func (c *capturingUserRepo) GetUser(ctx context.Context, id string) (application.User, error) {
	return application.User{}, application.ErrNotFound
}

func (c *capturingUserRepo) GetUserByEmail(ctx context.Context, email string) (application.User, error) {
	return application.User{}, application.ErrNotFound
}

func (c *capturingUserRepo) ListUsersByRole(ctx context.Context, role application.Role) ([]application.User, error) {
	return nil, nil
}

func (c *capturingUserRepo) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	return nil
}

func TestServiceFactoryNewUserService(t *testing.T) {
	factory := NewServiceFactory()
	repo := &capturingUserRepo{}

	svc := factory.NewUserService(UserServiceDeps{Users: repo})
	params := application.RegisterParams{
		Name:     "Test User",
		Email:    "user@example.com",
		Password: "secret123",
	}

	user, err := svc.Register(context.Background(), params)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if user.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", user.ID)
	}
	if repo.created.ID != user.ID {
		t.Fatalf("repository received unexpected ID: %q", repo.created.ID)
	}
	if repo.hash != "plain:secret123" {
		t.Fatalf("expected test hasher output, got %q", repo.hash)
	}
	if !user.CreatedAt.Equal(factory.Clock.Current()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Current(), user.CreatedAt)
	}
}

func TestPlainTextVerifier(t *testing.T) {
	hash, err := PlainTextHasher("secret123")
	if err != nil {
		t.Fatalf("PlainTextHasher returned error: %v", err)
	}
	if err := PlainTextVerifier(hash, "secret123"); err != nil {
		t.Fatalf("expected matching password to verify, got %v", err)
	}
	if err := PlainTextVerifier(hash, "other"); err == nil {
		t.Fatal("expected mismatch to fail verification")
	}
}
