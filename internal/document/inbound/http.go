package inbound

import (
	"context"

	"github.com/gocount/dashboard/internal/document/usecase"
	"github.com/gocount/dashboard/internal/pkg/router"
)

type uc interface {
	Ingest(ctx context.Context, in usecase.IngestInput) (*usecase.IngestOutput, error)
	Dashboard(ctx context.Context) (*usecase.DashboardOutput, error)
	ListDocuments(ctx context.Context, in usecase.ListDocumentsInput) (*usecase.ListDocumentsOutput, error)
	DocumentFileURL(ctx context.Context, in usecase.DocumentFileURLInput) (*usecase.DocumentFileURLOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/ingest", end.Ingest) // X-API-Key

	r.GET("/api/v1/dashboard", end.Dashboard)
	r.GET("/api/v1/documents", end.ListDocuments)
	r.GET("/api/v1/documents/:id/file", end.DocumentFileURL)
}
