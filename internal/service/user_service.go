package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/collab-api/internal/domain"
	"github.com/phrazzld/collab-api/internal/service/auth"
	"github.com/phrazzld/collab-api/internal/store"
)

// ErrInvalidCredentials indicates the email/password pair does not match a
// registered user. API layer should map this to HTTP 401 Unauthorized.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService provides registration, authentication, and user lookups.
type UserService interface {
	// Register creates a new user with a hashed password.
	// Returns ErrEmailExists if the email is already registered.
	Register(ctx context.Context, email, displayName, password string) (*domain.User, error)

	// Authenticate verifies the email/password pair.
	// Returns ErrInvalidCredentials on mismatch or unknown email.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// Get retrieves a user by ID.
	Get(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// List retrieves all users except the given one, ordered by display
	// name. Used for assignee and guest pickers.
	List(ctx context.Context, excludeID uuid.UUID) ([]*domain.User, error)
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	users    store.UserStore
	verifier auth.PasswordVerifier
	logger   *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	users store.UserStore,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) (UserService, error) {
	if users == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "users cannot be nil"}
	}
	if verifier == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "verifier cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		users:    users,
		verifier: verifier,
		logger:   logger.With("component", "user_service"),
	}, nil
}

// Register creates a new user with a bcrypt-hashed password.
func (s *userServiceImpl) Register(
	ctx context.Context,
	email, displayName, password string,
) (*domain.User, error) {
	user, err := domain.NewUser(email, displayName, password)
	if err != nil {
		s.logger.Warn("invalid registration input", "error", err)
		return nil, NewServiceError("register", "invalid user", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, NewServiceError("register", "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		return nil, NewServiceError("register", "failed to save user", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate verifies the email/password pair. Unknown emails and wrong
// passwords produce the same error so the response does not reveal which
// emails are registered.
func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, NewServiceError("authenticate", "failed to retrieve user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Get retrieves a user by ID.
func (s *userServiceImpl) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("get_user", "failed to retrieve user", err)
	}
	return user, nil
}

// List retrieves all users except the given one.
func (s *userServiceImpl) List(ctx context.Context, excludeID uuid.UUID) ([]*domain.User, error) {
	users, err := s.users.List(ctx, excludeID)
	if err != nil {
		return nil, NewServiceError("list_users", "failed to list users", err)
	}
	return users, nil
}
