package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"calcledger/internal/auth"
	apperrors "calcledger/internal/errors"
	"calcledger/internal/model"
	"calcledger/internal/repository"
)

const bcryptCost = 10

// RegisterInput carries registration data.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

// UpdateInput carries an optional-field profile update. Nil fields are left
// untouched.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Username  *string
}

// AuthResult is returned on successful authentication.
type AuthResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// UserService handles user directory and credential operations.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*AuthResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*model.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, current, newPassword, confirm string) (*model.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*model.User, error)
	Activate(ctx context.Context, id uuid.UUID) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Refresh(ctx context.Context, refreshToken string) (string, time.Time, error)
	Logout(ctx context.Context, refreshToken string) error
}

type userService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) UserService {
	return &userService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// validatePassword enforces the strength policy: at least 8 characters with
// uppercase, lowercase, digit, and special characters.
func validatePassword(password string) error {
	if len(password) < 8 {
		return apperrors.ErrWeakPassword
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return apperrors.ErrWeakPassword
	}
	return nil
}

// Register creates a new user with a hashed password. Email and username
// uniqueness is checked case-insensitively before hashing.
func (s *userService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if input.Password != input.ConfirmPassword {
		return nil, apperrors.ErrPasswordMismatch
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.EmailTaken(ctx, input.Email, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, apperrors.ErrEmailExists
	}

	taken, err = s.userRepo.UsernameTaken(ctx, input.Username, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, apperrors.ErrUsernameExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: string(hashed),
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies an identifier (username or email) and password, then
// issues a token pair and records last_login. Unknown identifier and wrong
// password fail identically.
func (s *userService) Authenticate(ctx context.Context, identifier, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// GetByID returns a user by id.
func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Update applies supplied fields only, re-checking uniqueness when email or
// username change.
func (s *userService) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		taken, err := s.userRepo.EmailTaken(ctx, *input.Email, id)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return nil, apperrors.ErrEmailExists
		}
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Username != nil {
		taken, err := s.userRepo.UsernameTaken(ctx, *input.Username, id)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if taken {
			return nil, apperrors.ErrUsernameExists
		}
		user.Username = strings.TrimSpace(*input.Username)
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the current password before replacing the hash.
func (s *userService) ChangePassword(ctx context.Context, id uuid.UUID, current, newPassword, confirm string) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return nil, apperrors.ErrWrongPassword
	}

	if newPassword != confirm {
		return nil, apperrors.ErrPasswordMismatch
	}
	if err := validatePassword(newPassword); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hashed)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}
	return user, nil
}

// Deactivate marks a user inactive.
func (s *userService) Deactivate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.setActive(ctx, id, false)
}

// Activate marks a user active again.
func (s *userService) Activate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.setActive(ctx, id, true)
}

func (s *userService) setActive(ctx context.Context, id uuid.UUID, active bool) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete permanently removes a user and their calculations.
func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// Refresh exchanges a valid, unrevoked refresh token for a new access token.
func (s *userService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return "", time.Time{}, apperrors.ErrInvalidRefreshToken
	}
	if claims.ID == "" {
		return "", time.Time{}, apperrors.ErrInvalidRefreshToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return "", time.Time{}, apperrors.ErrInvalidRefreshToken
	}

	storedUserID, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil || storedUserID != userID {
		return "", time.Time{}, apperrors.ErrInvalidRefreshToken
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(userID)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, expiresAt, nil
}

// Logout revokes a refresh token.
func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return apperrors.ErrInvalidRefreshToken
	}
	return s.tokenStore.DeleteRefreshToken(ctx, claims.ID)
}
