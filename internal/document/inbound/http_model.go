package inbound

import "time"

type IngestDocumentRequest struct {
	OrgSlug  string  `json:"org_slug"`
	Date     string  `json:"date"`
	Name     string  `json:"name"`
	File     string  `json:"file"`
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Status   string  `json:"status"`
}

type IngestResponse struct {
	OK       bool  `json:"ok"`
	Inserted int64 `json:"inserted"`
}

type DocumentResponse struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Name      string    `json:"name"`
	File      string    `json:"file"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type DashboardStats struct {
	TotalDocs       int64   `json:"total_docs"`
	IncomeCount     int64   `json:"income_count"`
	ExpenseCount    int64   `json:"expense_count"`
	ThisMonthAmount float64 `json:"this_month_amount"`
	Currency        string  `json:"currency"`
}

type DashboardResponse struct {
	Stats DashboardStats     `json:"stats"`
	Docs  []DocumentResponse `json:"docs"`
}

type ListDocumentsResponse struct {
	Items []DocumentResponse `json:"items"`

	total int64
	page  int32
	size  int32
}

func (r ListDocumentsResponse) Meta() map[string]any {
	return map[string]any{
		"total": r.total,
		"page":  r.page,
		"size":  r.size,
	}
}

type DocumentFileURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
