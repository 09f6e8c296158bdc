package importer

import (
	"io"

	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

// FallbackCategory is assigned to imported rows that have no category and
// match no rule.
const FallbackCategory = "Uncategorized"

type Importer interface {
	Parse(r io.Reader) ([]transaction.CreateParams, error)
}
