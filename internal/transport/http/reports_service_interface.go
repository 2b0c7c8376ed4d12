package http

import (
	"context"

	"salespulse/internal/dataprocessing"
	"salespulse/pkg/contracts/domain"
)

// ReportServiceInterface runs one analytics pipeline over uploaded sources
type ReportServiceInterface interface {
	Run(ctx context.Context, src dataprocessing.Sources, runID string) (*domain.RunResult, error)
}
