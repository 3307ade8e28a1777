package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yukikurage/goal-boards-api/internal/constants"
	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/repository"
)

var (
	ErrUsernameRequired = fmt.Errorf("%w: username is required", apierrors.ErrKindValidation)
	ErrUsernameTooLong  = fmt.Errorf("%w: username must be at most %d characters", apierrors.ErrKindValidation, constants.MaxUsernameLength)
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least %d characters", apierrors.ErrKindValidation, constants.MinPasswordLength)
	ErrUsernameTaken    = fmt.Errorf("%w: username already exists", apierrors.ErrKindConflict)
	ErrUserNotFound     = fmt.Errorf("%w: user not found", apierrors.ErrKindNotFound)

	// ErrInvalidCredentials has no kind of its own; the login handler answers 401.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AuthService registers users and checks their passwords.
type AuthService struct {
	users repository.UserRepository
}

func NewAuthService(users repository.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username string
	Password string
}

// Signup creates a user with a bcrypt password hash.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	switch {
	case username == "":
		return nil, ErrUsernameRequired
	case utf8.RuneCountInString(username) > constants.MaxUsernameLength:
		return nil, ErrUsernameTooLong
	case len(input.Password) < constants.MinPasswordLength:
		return nil, ErrPasswordTooShort
	}

	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same name.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login returns the user whose password matches. Unknown users and wrong
// passwords give the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrUserNotFound, "user")
	}
	return user, nil
}
