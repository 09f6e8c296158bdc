package importer

import (
	"context"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/finviz/internal/importer/csvfile"
	"github.com/MrJamesThe3rd/finviz/internal/matching"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

type Service struct {
	parser     Importer
	categories *matching.Service
}

func NewService(categories *matching.Service) *Service {
	return &Service{
		parser:     csvfile.NewParser(),
		categories: categories,
	}
}

// Import parses r and fills in missing categories from the category rules.
func (s *Service) Import(ctx context.Context, r io.Reader) ([]transaction.CreateParams, error) {
	params, err := s.parser.Parse(r)
	if err != nil {
		return nil, err
	}

	for i, p := range params {
		if p.Category != "" {
			continue
		}

		params[i].Category = s.suggest(ctx, p.Description)
	}

	return params, nil
}

func (s *Service) suggest(ctx context.Context, description string) string {
	if s.categories == nil {
		return FallbackCategory
	}

	category, err := s.categories.Suggest(ctx, description)
	if err != nil {
		slog.Warn("failed to suggest category", "description", description, "error", err)
		return FallbackCategory
	}

	if category == "" {
		return FallbackCategory
	}

	return category
}
