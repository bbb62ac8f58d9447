package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helioskrill/alma-control/internal/domain"
	"github.com/helioskrill/alma-control/internal/dto"
	"github.com/helioskrill/alma-control/internal/repository"
)

// OperatorService manages the operator roster.
type OperatorService struct {
	operators repository.OperatorRepository
	log       *zap.Logger
}

// NewOperatorService creates a new operator service
func NewOperatorService(operators repository.OperatorRepository, log *zap.Logger) *OperatorService {
	return &OperatorService{
		operators: operators,
		log:       log,
	}
}

// List returns every operator.
func (s *OperatorService) List(ctx context.Context) ([]domain.Operator, error) {
	operators, err := s.operators.ListOperators(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}
	return operators, nil
}

// Create registers a new operator. An omitted ID is generated.
func (s *OperatorService) Create(ctx context.Context, req *dto.CreateOperatorRequest) (*domain.Operator, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	op := &domain.Operator{
		ID:          req.ID,
		Name:        req.Name,
		PDAID:       req.PDAID,
		Team:        req.Team,
		Active:      active,
		DailyTarget: req.DailyTarget,
	}
	if op.ID == "" {
		op.ID = uuid.NewString()
	}

	if err := s.operators.InsertOperator(ctx, op); err != nil {
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}

	s.log.Info("Operator created",
		zap.String("operator_id", op.ID),
		zap.String("name", op.Name))

	return op, nil
}

// Delete removes an operator from the roster. Their historical events stay
// in the store.
func (s *OperatorService) Delete(ctx context.Context, operatorID string) error {
	if err := s.operators.DeleteOperator(ctx, operatorID); err != nil {
		return fmt.Errorf("failed to delete operator: %w", err)
	}
	return nil
}
