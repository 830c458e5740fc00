package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/room-booking/internal/notification"
	"github.com/example/room-booking/internal/persistence"
)

// UserRepository captures the persistence operations needed by the service.
// The password hash never crosses the service boundary inside a User value.
type UserRepository interface {
	CreateUser(ctx context.Context, user User, passwordHash string) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsersByRole(ctx context.Context, role Role) ([]User, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

// PasswordHasher derives a storable hash from a plaintext password.
type PasswordHasher func(password string) (string, error)

// ResetTokenSource issues and resolves time-limited password reset tokens.
// Tokens carry only the account email.
type ResetTokenSource interface {
	Issue(email string) (string, error)
	Resolve(token string) (string, error)
}

// UserService handles registration, the one-time manager bootstrap, and the
// password reset flow.
type UserService struct {
	users        UserRepository
	hashPassword PasswordHasher
	resetTokens  ResetTokenSource
	notifier     Notifier
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, hashPassword PasswordHasher, resetTokens ResetTokenSource, notifier Notifier, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, hashPassword, resetTokens, notifier, idGenerator, now, nil)
}

// NewUserServiceWithLogger constructs a user service with a specified logger.
func NewUserServiceWithLogger(users UserRepository, hashPassword PasswordHasher, resetTokens ResetTokenSource, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:        users,
		hashPassword: hashPassword,
		resetTokens:  resetTokens,
		notifier:     notifier,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// Register creates a new official-role account. Registration never grants the
// manager role; the only manager comes from the bootstrap.
func (s *UserService) Register(ctx context.Context, params RegisterParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))
	logger := s.loggerWith(ctx, "Register", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user registered")
	}()

	vErr := validateAccountInput(params.Name, email, params.Password)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	user, err = s.createUser(ctx, params.Name, email, params.Phone, params.Password, RoleOfficial)
	return
}

// BootstrapManager guarantees that exactly one manager account exists. When a
// manager is already present the call is a no-op returning that account;
// otherwise it creates one from the supplied parameters. Safe to run at every
// startup.
func (s *UserService) BootstrapManager(ctx context.Context, params BootstrapManagerParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "BootstrapManager")

	managers, err := s.users.ListUsersByRole(ctx, RoleManager)
	if err != nil {
		err = mapUserRepoError(err)
		return
	}
	if len(managers) > 0 {
		user = managers[0]
		return
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))
	vErr := validateAccountInput(params.Name, email, params.Password)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	user, err = s.createUser(ctx, params.Name, email, params.Phone, params.Password, RoleManager)
	if err != nil {
		return
	}
	logger.With("user_id", user.ID).InfoContext(ctx, "manager account bootstrapped")
	return
}

// ListUsersByRole returns all users holding the given role.
func (s *UserService) ListUsersByRole(ctx context.Context, role Role) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return nil, nil
	}
	users, err := s.users.ListUsersByRole(ctx, role)
	if err != nil {
		return nil, mapUserRepoError(err)
	}
	return users, nil
}

// RequestPasswordReset issues a reset token and emails it to the account,
// best-effort. The outcome is identical whether or not the email is
// registered, so the endpoint cannot be used to enumerate accounts.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if s.users == nil || s.resetTokens == nil {
		return fmt.Errorf("password reset not configured")
	}

	email = strings.TrimSpace(strings.ToLower(email))
	logger := s.loggerWith(ctx, "RequestPasswordReset", "email", email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			logger.InfoContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return mapUserRepoError(err)
	}

	token, err := s.resetTokens.Issue(user.Email)
	if err != nil {
		logger.ErrorContext(ctx, "failed to issue reset token", "error", err)
		return nil
	}

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, []notification.Message{{
			Channel:   notification.ChannelEmail,
			Recipient: user.Email,
			Subject:   "Password Reset",
			Body:      fmt.Sprintf("Use this token to reset your password: %s", token),
		}})
	}
	logger.InfoContext(ctx, "password reset token issued")
	return nil
}

// ResetPassword resolves a reset token and replaces the account's password.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if s.users == nil || s.resetTokens == nil {
		return fmt.Errorf("password reset not configured")
	}

	logger := s.loggerWith(ctx, "ResetPassword")

	email, err := s.resetTokens.Resolve(token)
	if err != nil {
		logger.ErrorContext(ctx, "reset token rejected", "error", err, "error_kind", ErrorKind(ErrInvalidResetToken))
		return ErrInvalidResetToken
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return mapUserRepoError(err)
	}

	if len(password) < minPasswordLength {
		vErr := &ValidationError{}
		vErr.add("password", "password is too short")
		return vErr
	}

	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return mapUserRepoError(err)
	}

	logger.With("user_id", user.ID).InfoContext(ctx, "password reset")
	return nil
}

const minPasswordLength = 6

func (s *UserService) createUser(ctx context.Context, name, email, phone, password string, role Role) (User, error) {
	hash, err := s.hash(password)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(name),
		Email:     email,
		Role:      role,
		CreatedAt: s.now(),
	}
	if trimmed := strings.TrimSpace(phone); trimmed != "" {
		user.Phone = &trimmed
	}

	if s.users == nil {
		return user, nil
	}

	persisted, err := s.users.CreateUser(ctx, user, hash)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}
	return persisted, nil
}

func (s *UserService) hash(password string) (string, error) {
	if s.hashPassword == nil {
		return "", fmt.Errorf("password hasher not configured")
	}
	return s.hashPassword(password)
}

func validateAccountInput(name, email, password string) *ValidationError {
	vErr := &ValidationError{}

	if len(strings.TrimSpace(name)) < 2 {
		vErr.add("name", "name is required")
	}
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "email is invalid")
	}
	if len(password) < minPasswordLength {
		vErr.add("password", "password is too short")
	}

	return vErr
}

func mapUserRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}
