// Package csvfile parses transaction exports in the CSV layouts listed in
// profiles. The layout and delimiter are detected from the header row.
package csvfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/finviz/internal/encoding"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

// sniffLines is how many leading lines are inspected to pick a delimiter.
const sniffLines = 10

var delimiters = []rune{',', ';', '\t'}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]transaction.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching CSV layout: expected Date, Description, Category and Amount columns")
	}

	return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
}

// sniffDelimiter picks the candidate that occurs most often in the first
// lines, outside quoted fields.
func sniffDelimiter(data []byte) rune {
	counts := make(map[rune]int, len(delimiters))
	inQuotes := false
	lines := 0

	for _, c := range string(data) {
		if c == '"' {
			inQuotes = !inQuotes
			continue
		}

		if inQuotes {
			continue
		}

		if c == '\n' {
			lines++
			if lines >= sniffLines {
				break
			}

			continue
		}

		counts[c]++
	}

	best := delimiters[0]
	for _, d := range delimiters[1:] {
		if counts[d] > counts[best] {
			best = d
		}
	}

	return best
}

type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows skips rows without a usable date or amount, such as totals and
// footers. A dated row without a description is an error.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]transaction.CreateParams, error) {
	var txs []transaction.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		date, ok := parseDate(cellValue(row, cols[p.DateCol]), p.DateLayouts)
		if !ok {
			continue
		}

		desc := cellValue(row, cols[p.DescCol])
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, ok := rowAmount(p, cols, row)
		if !ok {
			continue
		}

		category := ""
		if p.CategoryCol != "" {
			category = cellValue(row, cols[p.CategoryCol])
		}

		txs = append(txs, transaction.CreateParams{
			Amount:         amount,
			Date:           date,
			Description:    desc,
			RawDescription: desc,
			Category:       category,
		})
	}

	return txs, nil
}

func parseDate(s string, layouts []string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	t, err := transaction.ParseDate(s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// rowAmount returns the signed amount of a row. Spending is positive: in
// split layouts a debit is returned as is and a credit is negated.
func rowAmount(p *Profile, cols colIndex, row []string) (float64, bool) {
	switch p.AmountMode {
	case amountSingle:
		return cellAmount(row, cols[p.AmountCol], p.Decimal)
	case amountSplit:
		if v, ok := cellAmount(row, cols[p.DebitCol], p.Decimal); ok {
			return abs(v), true
		}

		if v, ok := cellAmount(row, cols[p.CreditCol], p.Decimal); ok {
			return -abs(v), true
		}
	}

	return 0, false
}

func cellAmount(row []string, idx int, style decimalStyle) (float64, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return 0, false
	}

	v, err := parseAmount(s, style)
	if err != nil || v == 0 {
		return 0, false
	}

	return v, true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}
