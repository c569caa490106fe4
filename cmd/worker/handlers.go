package main

import (
	"github.com/hibiken/asynq"

	discountJob "repairhub-backend/internal/domains/discount/job"
	"repairhub-backend/internal/shared"
	"repairhub-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	deactivateExpired *discountJob.DeactivateExpiredHandler
	exportReport      *discountJob.ExportReportHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	// Storage down -> export tasks fail and are retried by asynq
	var reports discountJob.ReportStore
	if c.Storage != nil {
		reports = c.Storage
	}

	return &HandlerRegistry{
		deactivateExpired: discountJob.NewDeactivateExpiredHandler(c.DiscountService),
		exportReport:      discountJob.NewExportReportHandler(c.DiscountService, reports, c.Config.Worker.ExportReportMail),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeDeactivateExpiredDiscounts, h.deactivateExpired.ProcessTask)
	mux.HandleFunc(shared.TypeExportDiscountReport, h.exportReport.ProcessTask)
}
