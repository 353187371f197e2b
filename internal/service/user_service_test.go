package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"calcledger/internal/auth"
	apperrors "calcledger/internal/errors"
	"calcledger/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, exclude)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error) {
	args := m.Called(ctx, username, exclude)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FirstName:       "Test",
		LastName:        "User",
		Email:           "test@example.com",
		Username:        "testuser",
		Password:        "SecurePass123!",
		ConfirmPassword: "SecurePass123!",
	}
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*RegisterInput)
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:   "successful registration",
			mutate: func(i *RegisterInput) {},
			setupMock: func(m *MockUserRepository) {
				m.On("EmailTaken", mock.Anything, "test@example.com", uuid.Nil).Return(false, nil)
				m.On("UsernameTaken", mock.Anything, "testuser", uuid.Nil).Return(false, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:   "email already exists",
			mutate: func(i *RegisterInput) {},
			setupMock: func(m *MockUserRepository) {
				m.On("EmailTaken", mock.Anything, "test@example.com", uuid.Nil).Return(true, nil)
			},
			expectedError: apperrors.ErrEmailExists,
		},
		{
			name:   "username already exists",
			mutate: func(i *RegisterInput) {},
			setupMock: func(m *MockUserRepository) {
				m.On("EmailTaken", mock.Anything, "test@example.com", uuid.Nil).Return(false, nil)
				m.On("UsernameTaken", mock.Anything, "testuser", uuid.Nil).Return(true, nil)
			},
			expectedError: apperrors.ErrUsernameExists,
		},
		{
			name: "weak password",
			mutate: func(i *RegisterInput) {
				i.Password = "weak"
				i.ConfirmPassword = "weak"
			},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrWeakPassword,
		},
		{
			name: "missing special character",
			mutate: func(i *RegisterInput) {
				i.Password = "SecurePass123"
				i.ConfirmPassword = "SecurePass123"
			},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrWeakPassword,
		},
		{
			name: "confirmation mismatch",
			mutate: func(i *RegisterInput) {
				i.ConfirmPassword = "OtherPass123!"
			},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrPasswordMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewUserService(mockRepo, auth.NewJWTService("test-secret"), new(MockTokenStore))

			input := validRegisterInput()
			tt.mutate(&input)
			user, err := svc.Register(context.Background(), input)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, "test@example.com", user.Email)
				assert.Equal(t, "testuser", user.Username)
				assert.True(t, user.IsActive)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, input.Password, user.PasswordHash)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("SecurePass123!"), bcryptCost)
	userID := uuid.New()

	tests := []struct {
		name          string
		identifier    string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:       "successful login with username",
			identifier: "testuser",
			password:   "SecurePass123!",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByUsernameOrEmail", mock.Anything, "testuser").Return(&model.User{
					ID:           userID,
					Email:        "test@example.com",
					Username:     "testuser",
					PasswordHash: string(hashed),
					IsActive:     true,
				}, nil)
				mRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, userID, mock.Anything).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:       "unknown identifier",
			identifier: "nobody",
			password:   "SecurePass123!",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByUsernameOrEmail", mock.Anything, "nobody").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:       "wrong password",
			identifier: "testuser",
			password:   "WrongPass123!",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByUsernameOrEmail", mock.Anything, "testuser").Return(&model.User{
					ID:           userID,
					Username:     "testuser",
					PasswordHash: string(hashed),
					IsActive:     true,
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockTokenStore)

			svc := NewUserService(mockRepo, auth.NewJWTService("test-secret"), mockTokenStore)
			result, err := svc.Authenticate(context.Background(), tt.identifier, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, result.AccessToken)
				assert.NotEmpty(t, result.RefreshToken)
				assert.NotNil(t, result.User.LastLogin)
				assert.WithinDuration(t, time.Now().Add(auth.AccessTokenExpiry), result.ExpiresAt, 5*time.Second)
			}

			mockRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestUserService_AuthenticateFailureIsUniform(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("SecurePass123!"), bcryptCost)

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsernameOrEmail", mock.Anything, "nobody").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("FindByUsernameOrEmail", mock.Anything, "testuser").Return(&model.User{
		ID:           uuid.New(),
		Username:     "testuser",
		PasswordHash: string(hashed),
	}, nil)

	svc := NewUserService(mockRepo, auth.NewJWTService("test-secret"), new(MockTokenStore))

	_, unknownErr := svc.Authenticate(context.Background(), "nobody", "SecurePass123!")
	_, wrongErr := svc.Authenticate(context.Background(), "testuser", "WrongPass123!")

	assert.Equal(t, unknownErr, wrongErr)
	assert.Equal(t, apperrors.ErrInvalidCredentials, unknownErr)
}

func TestUserService_Update(t *testing.T) {
	userID := uuid.New()
	strPtr := func(s string) *string { return &s }

	t.Run("partial update keeps other fields", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{
			ID:        userID,
			FirstName: "Old",
			LastName:  "Name",
			Email:     "old@example.com",
			Username:  "olduser",
		}, nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		svc := NewUserService(mockRepo, auth.NewJWTService("test-secret"), new(MockTokenStore))
		user, err := svc.Update(context.Background(), userID, UpdateInput{FirstName: strPtr("New")})

		assert.NoError(t, err)
		assert.Equal(t, "New", user.FirstName)
		assert.Equal(t, "Name", user.LastName)
		assert.Equal(t, "old@example.com", user.Email)
		assert.Equal(t, "olduser", user.Username)
		mockRepo.AssertExpectations(t)
	})

	t.Run("email collision", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID}, nil)
		mockRepo.On("EmailTaken", mock.Anything, "taken@example.com", userID).Return(true, nil)

		svc := NewUserService(mockRepo, auth.NewJWTService("test-secret"), new(MockTokenStore))
		_, err := svc.Update(context.Background(), userID, UpdateInput{Email: strPtr("taken@example.com")})

		assert.Equal(t, apperrors.ErrEmailExists, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)

		svc := NewUserService(mockRepo, auth.NewJWTService("test-secret"), new(MockTokenStore))
		_, err := svc.Update(context.Background(), userID, UpdateInput{FirstName: strPtr("New")})

		assert.Equal(t, apperrors.ErrUserNotFound, err)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	userID := uuid.New()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("SecurePass123!"), bcryptCost)

	t.Run("wrong current password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{
			ID:           userID,
			PasswordHash: string(hashed),
		}, nil)

		svc := NewUserService(mockRepo, auth.NewJWTService("test-secret"), new(MockTokenStore))
		_, err := svc.ChangePassword(context.Background(), userID, "WrongPass123!", "NextPass456$", "NextPass456$")

		assert.Equal(t, apperrors.ErrWrongPassword, err)
	})

	t.Run("successful change replaces hash", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{
			ID:           userID,
			PasswordHash: string(hashed),
		}, nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		svc := NewUserService(mockRepo, auth.NewJWTService("test-secret"), new(MockTokenStore))
		user, err := svc.ChangePassword(context.Background(), userID, "SecurePass123!", "NextPass456$", "NextPass456$")

		assert.NoError(t, err)
		assert.NotEqual(t, string(hashed), user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("NextPass456$")))
		mockRepo.AssertExpectations(t)
	})

	t.Run("weak new password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{
			ID:           userID,
			PasswordHash: string(hashed),
		}, nil)

		svc := NewUserService(mockRepo, auth.NewJWTService("test-secret"), new(MockTokenStore))
		_, err := svc.ChangePassword(context.Background(), userID, "SecurePass123!", "weak", "weak")

		assert.Equal(t, apperrors.ErrWeakPassword, err)
	})
}

func TestUserService_RefreshAndLogout(t *testing.T) {
	userID := uuid.New()
	jwtService := auth.NewJWTService("test-secret")
	tokenID, refreshToken, err := jwtService.GenerateRefreshToken(userID)
	assert.NoError(t, err)

	t.Run("valid refresh", func(t *testing.T) {
		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(userID, nil)

		svc := NewUserService(new(MockUserRepository), jwtService, mockTokenStore)
		accessToken, expiresAt, err := svc.Refresh(context.Background(), refreshToken)

		assert.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.WithinDuration(t, time.Now().Add(auth.AccessTokenExpiry), expiresAt, 5*time.Second)

		claims, err := jwtService.ValidateToken(accessToken)
		assert.NoError(t, err)
		subject, err := claims.UserID()
		assert.NoError(t, err)
		assert.Equal(t, userID, subject)
	})

	t.Run("revoked refresh token", func(t *testing.T) {
		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(uuid.Nil, assert.AnError)

		svc := NewUserService(new(MockUserRepository), jwtService, mockTokenStore)
		_, _, err := svc.Refresh(context.Background(), refreshToken)

		assert.Equal(t, apperrors.ErrInvalidRefreshToken, err)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		accessToken, _, err := jwtService.GenerateAccessToken(userID)
		assert.NoError(t, err)

		svc := NewUserService(new(MockUserRepository), jwtService, new(MockTokenStore))
		_, _, err = svc.Refresh(context.Background(), accessToken)

		assert.Equal(t, apperrors.ErrInvalidRefreshToken, err)
	})

	t.Run("logout revokes", func(t *testing.T) {
		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("DeleteRefreshToken", mock.Anything, tokenID).Return(nil)

		svc := NewUserService(new(MockUserRepository), jwtService, mockTokenStore)
		assert.NoError(t, svc.Logout(context.Background(), refreshToken))
		mockTokenStore.AssertExpectations(t)
	})
}

func TestUserService_DeactivateAndDelete(t *testing.T) {
	userID := uuid.New()

	t.Run("deactivate flips flag", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, IsActive: true}, nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		svc := NewUserService(mockRepo, auth.NewJWTService("test-secret"), new(MockTokenStore))
		user, err := svc.Deactivate(context.Background(), userID)

		assert.NoError(t, err)
		assert.False(t, user.IsActive)
	})

	t.Run("delete unknown user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("Delete", mock.Anything, userID).Return(gorm.ErrRecordNotFound)

		svc := NewUserService(mockRepo, auth.NewJWTService("test-secret"), new(MockTokenStore))
		err := svc.Delete(context.Background(), userID)

		assert.Equal(t, apperrors.ErrUserNotFound, err)
	})
}
