package job

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"repairhub-backend/internal/domains/discount/model"
	"repairhub-backend/internal/shared"
	"repairhub-backend/internal/shared/utils"
	"repairhub-backend/pkg/logger"
)

// DiscountExporter is satisfied by the admin discount service.
type DiscountExporter interface {
	ExportDiscounts(ctx context.Context, filter *model.ListDiscountsFilter, w io.Writer) (int, error)
}

// ReportStore is satisfied by *storage.MinIOStorage.
type ReportStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ExportReportHandler builds the discount workbook off the request path
// and stores it under shared.DiscountReportKey(task id).
// Mail delivery lives outside this service; the handler only records
// who the report is addressed to.
type ExportReportHandler struct {
	exporter  DiscountExporter
	store     ReportStore
	recipient string
}

func NewExportReportHandler(exporter DiscountExporter, store ReportStore, recipient string) *ExportReportHandler {
	return &ExportReportHandler{
		exporter:  exporter,
		store:     store,
		recipient: recipient,
	}
}

func (h *ExportReportHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.ExportDiscountReportPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		// payload hỏng thì retry cũng không thành công
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	// Storage chưa sẵn sàng lúc worker khởi động -> để asynq retry sau
	if h.store == nil {
		return errors.New("export report: report storage is not configured")
	}

	filter := &model.ListDiscountsFilter{
		Status:    payload.Status,
		ScopeType: payload.ScopeType,
		Search:    payload.Search,
	}

	// 1. Build workbook vào memory
	var buf bytes.Buffer
	rows, err := h.exporter.ExportDiscounts(ctx, filter, &buf)
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return fmt.Errorf("export discounts: %v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("export discounts: %w", err)
	}

	// 2. Upload theo task id, admin lấy link qua GET /export/:taskId
	taskID, ok := asynq.GetTaskID(ctx)
	if !ok {
		taskID = uuid.NewString()
	}
	key := shared.DiscountReportKey(taskID)

	location, err := h.store.Upload(ctx, key, buf.Bytes(), shared.XLSXContentType)
	if err != nil {
		return fmt.Errorf("upload report: %w", err)
	}

	// 3. Ghi key vào task result (xem được trong asynq inspector khi còn retention)
	if w := t.ResultWriter(); w != nil {
		if _, err := w.Write([]byte(key)); err != nil {
			logger.Warn("Failed to write export task result", map[string]interface{}{
				"task_id": taskID,
				"error":   err.Error(),
			})
		}
	}

	logger.Info("Discount report stored", map[string]interface{}{
		"task_id":      taskID,
		"report_key":   key,
		"location":     location,
		"requested_by": payload.RequestedBy.String(),
		"recipient":    h.recipient,
		"status":       filter.Status,
		"rows":         rows,
		"bytes":        buf.Len(),
	})
	return nil
}
