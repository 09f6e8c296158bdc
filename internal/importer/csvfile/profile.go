package csvfile

type amountMode int

const (
	// amountSingle is one signed column.
	amountSingle amountMode = iota
	// amountSplit is a debit and a credit column.
	amountSplit
)

type decimalStyle int

const (
	// decimalPoint reads "1,234.56".
	decimalPoint decimalStyle = iota
	// decimalComma reads "1.234,56".
	decimalComma
)

// Profile describes the column layout of a supported CSV export. Header
// names are matched case-insensitively.
type Profile struct {
	Name        string
	DateCol     string
	DescCol     string
	CategoryCol string // optional; empty categories are filled from rules
	AmountMode  amountMode
	AmountCol   string
	DebitCol    string
	CreditCol   string
	Decimal     decimalStyle
	DateLayouts []string
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	if p.CategoryCol != "" {
		cols = append(cols, p.CategoryCol)
	}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles are tried in order; the first whose columns are all present wins.
var profiles = []Profile{
	{
		Name:        "ledger",
		DateCol:     "data",
		DescCol:     "descrição",
		CategoryCol: "categoria",
		AmountMode:  amountSingle,
		AmountCol:   "montante",
		Decimal:     decimalComma,
		DateLayouts: []string{"02-01-2006", "02/01/2006"},
	},
	{
		Name:        "split",
		DateCol:     "date",
		DescCol:     "description",
		AmountMode:  amountSplit,
		DebitCol:    "debit",
		CreditCol:   "credit",
		Decimal:     decimalPoint,
		DateLayouts: []string{"2006-01-02", "02/01/2006"},
	},
	{
		Name:        "standard",
		DateCol:     "date",
		DescCol:     "description",
		CategoryCol: "category",
		AmountMode:  amountSingle,
		AmountCol:   "amount",
		Decimal:     decimalPoint,
		DateLayouts: []string{"2006-01-02", "02/01/2006"},
	},
}
