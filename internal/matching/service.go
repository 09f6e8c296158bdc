// Package matching suggests a category for a transaction description from
// user-defined rules. A rule matches when its pattern occurs anywhere in the
// description, ignoring case; the longest matching pattern wins.
package matching

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyRule = errors.New("pattern and category are required")

type Rule struct {
	ID        uuid.UUID
	Pattern   string
	Category  string
	CreatedAt time.Time
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	FindMatch(ctx context.Context, description string) (string, error)
	CreateRule(ctx context.Context, rule *Rule) error
	ListRules(ctx context.Context) ([]*Rule, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the category of the best rule for description, or an empty
// string when no rule matches.
func (s *Service) Suggest(ctx context.Context, description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", nil
	}

	return s.repo.FindMatch(ctx, description)
}

// Learn stores a rule mapping pattern to category.
func (s *Service) Learn(ctx context.Context, pattern, category string) (*Rule, error) {
	rule := &Rule{
		Pattern:  strings.TrimSpace(pattern),
		Category: strings.TrimSpace(category),
	}
	if rule.Pattern == "" || rule.Category == "" {
		return nil, ErrEmptyRule
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}

	return rule, nil
}

func (s *Service) Rules(ctx context.Context) ([]*Rule, error) {
	return s.repo.ListRules(ctx)
}
