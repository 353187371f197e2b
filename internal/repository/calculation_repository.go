package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"calcledger/internal/model"
)

// CalculationRepository defines calculation persistence operations. Lookups
// are always scoped by owner so a foreign record behaves like a missing one.
type CalculationRepository interface {
	Create(ctx context.Context, calc *model.Calculation) error
	Update(ctx context.Context, calc *model.Calculation) error
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.Calculation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Calculation, error)
	DeleteByIDAndUser(ctx context.Context, id, userID uuid.UUID) error
}

type calculationRepository struct {
	db *gorm.DB
}

// NewCalculationRepository creates a new calculation repository.
func NewCalculationRepository(db *gorm.DB) CalculationRepository {
	return &calculationRepository{db: db}
}

// Create creates a new calculation record.
func (r *calculationRepository) Create(ctx context.Context, calc *model.Calculation) error {
	return r.db.WithContext(ctx).Create(calc).Error
}

// Update updates an existing calculation record.
func (r *calculationRepository) Update(ctx context.Context, calc *model.Calculation) error {
	return r.db.WithContext(ctx).Save(calc).Error
}

// FindByIDAndUser finds a calculation owned by the given user.
func (r *calculationRepository) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.Calculation, error) {
	var calc model.Calculation
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&calc).Error; err != nil {
		return nil, err
	}
	return &calc, nil
}

// ListByUser lists a user's calculations in creation order.
func (r *calculationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Calculation, error) {
	var calcs []model.Calculation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&calcs).Error; err != nil {
		return nil, err
	}
	return calcs, nil
}

// DeleteByIDAndUser deletes a calculation owned by the given user.
func (r *calculationRepository) DeleteByIDAndUser(ctx context.Context, id, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Calculation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
