package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"calcledger/internal/engine"
	apperrors "calcledger/internal/errors"
	"calcledger/internal/model"
	"calcledger/internal/repository"
)

// CalculationUpdateInput carries an optional-field calculation update.
type CalculationUpdateInput struct {
	Inputs *[]float64
}

// CalculationService handles the per-user calculation ledger. Results are
// always computed server-side; client-supplied results are ignored.
type CalculationService interface {
	Create(ctx context.Context, userID uuid.UUID, calcType string, inputs []float64) (*model.Calculation, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Calculation, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*model.Calculation, error)
	Update(ctx context.Context, id, userID uuid.UUID, input CalculationUpdateInput) (*model.Calculation, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type calculationService struct {
	calcRepo repository.CalculationRepository
}

// NewCalculationService creates a new calculation service.
func NewCalculationService(calcRepo repository.CalculationRepository) CalculationService {
	return &calculationService{calcRepo: calcRepo}
}

// Create evaluates the operation and persists inputs and result together.
func (s *calculationService) Create(ctx context.Context, userID uuid.UUID, calcType string, inputs []float64) (*model.Calculation, error) {
	t, err := engine.ParseType(calcType)
	if err != nil {
		return nil, err
	}

	result, err := engine.Evaluate(t, inputs)
	if err != nil {
		return nil, err
	}

	calc := &model.Calculation{
		ID:     uuid.New(),
		UserID: userID,
		Type:   string(t),
		Inputs: inputs,
		Result: result,
	}

	if err := s.calcRepo.Create(ctx, calc); err != nil {
		return nil, fmt.Errorf("create calculation: %w", err)
	}
	return calc, nil
}

// ListForUser returns the user's calculations in creation order.
func (s *calculationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Calculation, error) {
	calcs, err := s.calcRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list calculations: %w", err)
	}
	return calcs, nil
}

// Get returns a calculation owned by the user. A record owned by someone else
// is reported exactly like a missing one.
func (s *calculationService) Get(ctx context.Context, id, userID uuid.UUID) (*model.Calculation, error) {
	calc, err := s.calcRepo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCalculationNotFound
		}
		return nil, fmt.Errorf("find calculation: %w", err)
	}
	return calc, nil
}

// Update replaces the inputs when supplied and recomputes the result.
// created_at is preserved.
func (s *calculationService) Update(ctx context.Context, id, userID uuid.UUID, input CalculationUpdateInput) (*model.Calculation, error) {
	calc, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if input.Inputs != nil {
		result, err := engine.Evaluate(engine.Type(calc.Type), *input.Inputs)
		if err != nil {
			return nil, err
		}
		calc.Inputs = *input.Inputs
		calc.Result = result
	}

	if err := s.calcRepo.Update(ctx, calc); err != nil {
		return nil, fmt.Errorf("update calculation: %w", err)
	}
	return calc, nil
}

// Delete removes a calculation owned by the user.
func (s *calculationService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.calcRepo.DeleteByIDAndUser(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCalculationNotFound
		}
		return fmt.Errorf("delete calculation: %w", err)
	}
	return nil
}
