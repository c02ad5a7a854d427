package inbound

import (
	"strconv"

	"github.com/gocount/dashboard/internal/document/entity"
	"github.com/gocount/dashboard/internal/document/usecase"
	"github.com/gocount/dashboard/internal/pkg/router"
	"github.com/samber/lo"
)

type HTTPEndpoint struct {
	uc uc
}

// Ingest accepts a JSON array of documents from the extraction pipeline.
// Headers: X-API-Key (required), Idempotency-Key (optional).
func (h *HTTPEndpoint) Ingest(r *router.Request) (any, error) {
	var req []IngestDocumentRequest
	if err := r.DecodeBodyLenient(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Ingest(r.Context(), usecase.IngestInput{
		APIKey:         r.GetHeader("X-API-Key"),
		IdempotencyKey: r.GetHeader("Idempotency-Key"),
		Documents: lo.Map(req, func(d IngestDocumentRequest, _ int) usecase.IngestDocument {
			return usecase.IngestDocument(d)
		}),
	})
	if err != nil {
		return nil, err
	}

	return IngestResponse{OK: true, Inserted: resp.Inserted}, nil
}

func (h *HTTPEndpoint) Dashboard(r *router.Request) (any, error) {
	resp, err := h.uc.Dashboard(r.Context())
	if err != nil {
		return nil, err
	}

	return DashboardResponse{
		Stats: DashboardStats{
			TotalDocs:       resp.Stats.Total,
			IncomeCount:     resp.Stats.Income,
			ExpenseCount:    resp.Stats.Expense,
			ThisMonthAmount: resp.ThisMonthAmount,
			Currency:        resp.Currency,
		},
		Docs: lo.Map(resp.Recent, toDocumentResponse),
	}, nil
}

// ListDocuments pages through the organization's documents.
// Query: type, page, size.
func (h *HTTPEndpoint) ListDocuments(r *router.Request) (any, error) {
	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ListDocuments(r.Context(), usecase.ListDocumentsInput{
		Type: r.GetQuery("type"),
		Page: page,
		Size: size,
	})
	if err != nil {
		return nil, err
	}

	return ListDocumentsResponse{
		Items: lo.Map(resp.Items, toDocumentResponse),
		total: resp.Total,
		page:  resp.Page,
		size:  resp.Size,
	}, nil
}

func (h *HTTPEndpoint) DocumentFileURL(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.DocumentFileURL(r.Context(), usecase.DocumentFileURLInput{ID: id})
	if err != nil {
		return nil, err
	}

	return DocumentFileURLResponse{URL: resp.URL, ExpiresAt: resp.ExpiresAt}, nil
}

func toDocumentResponse(d entity.Document, _ int) DocumentResponse {
	return DocumentResponse{
		ID:        strconv.FormatInt(d.ID, 10),
		Date:      d.Date,
		Name:      d.Name,
		File:      d.File,
		Type:      d.Type.String(),
		Amount:    d.Amount,
		Currency:  d.Currency,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
	}
}
