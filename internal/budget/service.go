package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	CreateBudget(ctx context.Context, b *Budget) error
	ListBudgets(ctx context.Context) ([]*Budget, error)
	DeleteBudget(ctx context.Context, id uuid.UUID) error
	DeleteAllBudgets(ctx context.Context) (int64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Category string
	Amount   float64
	Month    string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Budget, error) {
	if _, err := time.Parse(MonthLayout, params.Month); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMonth, params.Month)
	}

	b := &Budget{
		Category: params.Category,
		Amount:   params.Amount,
		Month:    params.Month,
	}
	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) List(ctx context.Context) ([]*Budget, error) {
	return s.repo.ListBudgets(ctx)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteBudget(ctx, id)
}

// Reset deletes every budget and returns how many were removed.
func (s *Service) Reset(ctx context.Context) (int64, error) {
	return s.repo.DeleteAllBudgets(ctx)
}
