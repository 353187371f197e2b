package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"calcledger/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Calculation{}))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, email, username string) *model.User {
	t.Helper()
	user := &model.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		Username:     username,
		PasswordHash: "not-a-real-hash",
		IsActive:     true,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func TestUserRepository_UniquenessIsCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newTestUser(t, db, "ada@example.com", "ada")

	taken, err := repo.EmailTaken(ctx, "ADA@Example.COM", uuid.Nil)
	assert.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.UsernameTaken(ctx, "Ada", uuid.Nil)
	assert.NoError(t, err)
	assert.True(t, taken)

	// The user's own record is excluded when checking an update.
	taken, err = repo.EmailTaken(ctx, "ada@example.com", user.ID)
	assert.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.EmailTaken(ctx, "other@example.com", uuid.Nil)
	assert.NoError(t, err)
	assert.False(t, taken)
}

func TestUserRepository_FindByUsernameOrEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newTestUser(t, db, "ada@example.com", "ada")

	byUsername, err := repo.FindByUsernameOrEmail(ctx, "ada")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	byEmail, err := repo.FindByUsernameOrEmail(ctx, "ADA@EXAMPLE.COM")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.FindByUsernameOrEmail(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_DeleteCascadesCalculations(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewUserRepository(db)
	calcRepo := NewCalculationRepository(db)
	ctx := context.Background()

	user := newTestUser(t, db, "ada@example.com", "ada")
	other := newTestUser(t, db, "charles@example.com", "charles")

	require.NoError(t, calcRepo.Create(ctx, &model.Calculation{
		UserID: user.ID, Type: "add", Inputs: model.InputList{1, 2}, Result: 3,
	}))
	require.NoError(t, calcRepo.Create(ctx, &model.Calculation{
		UserID: other.ID, Type: "add", Inputs: model.InputList{3, 4}, Result: 7,
	}))

	assert.NoError(t, userRepo.Delete(ctx, user.ID))

	_, err := userRepo.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	orphans, err := calcRepo.ListByUser(ctx, user.ID)
	assert.NoError(t, err)
	assert.Empty(t, orphans)

	// Other users' records survive.
	kept, err := calcRepo.ListByUser(ctx, other.ID)
	assert.NoError(t, err)
	assert.Len(t, kept, 1)

	assert.ErrorIs(t, userRepo.Delete(ctx, user.ID), gorm.ErrRecordNotFound)
}

func TestCalculationRepository_ListIsScopedAndOrdered(t *testing.T) {
	db := newTestDB(t)
	calcRepo := NewCalculationRepository(db)
	ctx := context.Background()

	alice := newTestUser(t, db, "alice@example.com", "alice")
	bob := newTestUser(t, db, "bob@example.com", "bob")

	base := time.Now().Add(-time.Hour)
	for i, typ := range []string{"add", "subtract", "multiply"} {
		require.NoError(t, calcRepo.Create(ctx, &model.Calculation{
			UserID:    alice.ID,
			Type:      typ,
			Inputs:    model.InputList{10, 5},
			Result:    float64(i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, calcRepo.Create(ctx, &model.Calculation{
		UserID: bob.ID, Type: "divide", Inputs: model.InputList{10, 5}, Result: 2,
	}))

	calcs, err := calcRepo.ListByUser(ctx, alice.ID)
	assert.NoError(t, err)
	require.Len(t, calcs, 3)
	assert.Equal(t, "add", calcs[0].Type)
	assert.Equal(t, "subtract", calcs[1].Type)
	assert.Equal(t, "multiply", calcs[2].Type)
	for _, calc := range calcs {
		assert.Equal(t, alice.ID, calc.UserID)
	}
}

func TestCalculationRepository_OwnershipLooksLikeAbsence(t *testing.T) {
	db := newTestDB(t)
	calcRepo := NewCalculationRepository(db)
	ctx := context.Background()

	alice := newTestUser(t, db, "alice@example.com", "alice")
	bob := newTestUser(t, db, "bob@example.com", "bob")

	calc := &model.Calculation{UserID: alice.ID, Type: "add", Inputs: model.InputList{1, 2}, Result: 3}
	require.NoError(t, calcRepo.Create(ctx, calc))

	// Owner sees it.
	found, err := calcRepo.FindByIDAndUser(ctx, calc.ID, alice.ID)
	assert.NoError(t, err)
	assert.Equal(t, calc.ID, found.ID)

	// Someone else gets the same error as for a missing id.
	_, foreignErr := calcRepo.FindByIDAndUser(ctx, calc.ID, bob.ID)
	_, missingErr := calcRepo.FindByIDAndUser(ctx, uuid.New(), bob.ID)
	assert.ErrorIs(t, foreignErr, gorm.ErrRecordNotFound)
	assert.Equal(t, foreignErr, missingErr)

	assert.ErrorIs(t, calcRepo.DeleteByIDAndUser(ctx, calc.ID, bob.ID), gorm.ErrRecordNotFound)

	assert.NoError(t, calcRepo.DeleteByIDAndUser(ctx, calc.ID, alice.ID))
	_, err = calcRepo.FindByIDAndUser(ctx, calc.ID, alice.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCalculationRepository_InputsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	calcRepo := NewCalculationRepository(db)
	ctx := context.Background()

	alice := newTestUser(t, db, "alice@example.com", "alice")

	calc := &model.Calculation{
		UserID: alice.ID,
		Type:   "divide",
		Inputs: model.InputList{100, 2.5, 4},
		Result: 10,
	}
	require.NoError(t, calcRepo.Create(ctx, calc))

	loaded, err := calcRepo.FindByIDAndUser(ctx, calc.ID, alice.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.InputList{100, 2.5, 4}, loaded.Inputs)
}
