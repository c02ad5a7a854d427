package entity

import (
	"strings"
	"time"
)

// DateLayout is the layout of Document.Date as produced by the extractor, e.g. "08-Jan-2025".
const DateLayout = "02-Jan-2006"

const (
	DefaultCurrency = "INR"
	DefaultStatus   = "processed"
)

type DocumentType string

const (
	DocumentTypeIncome  DocumentType = "income"
	DocumentTypeExpense DocumentType = "expense"
	DocumentTypeUnknown DocumentType = "unknown"
)

func DocumentTypeFromString(raw string) DocumentType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "income":
		return DocumentTypeIncome
	case "expense":
		return DocumentTypeExpense
	default:
		return DocumentTypeUnknown
	}
}

func (t DocumentType) String() string {
	return string(t)
}

type Document struct {
	ID        int64
	OrgID     int64
	Date      string
	Name      string
	File      string
	Type      DocumentType
	Amount    float64
	Currency  string
	Status    string
	CreatedAt time.Time
}

// IssuedIn reports whether Date parses and falls in the same month as t.
func (d Document) IssuedIn(t time.Time) bool {
	if d.Date == "" {
		return false
	}

	dt, err := time.Parse(DateLayout, d.Date)
	if err != nil {
		return false
	}

	return dt.Year() == t.Year() && dt.Month() == t.Month()
}

// Stats are per organization document counts.
type Stats struct {
	Total   int64 `json:"total"`
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
}

type DocumentFilter struct {
	OrgID  int64
	Type   DocumentType
	Limit  int32
	Offset int32
}
