package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"repairhub-backend/internal/domains/discount/model"
	"repairhub-backend/internal/domains/discount/service"
	"repairhub-backend/internal/infrastructure/storage"
	"repairhub-backend/internal/shared"
	"repairhub-backend/internal/shared/middleware"
	"repairhub-backend/internal/shared/response"
	"repairhub-backend/pkg/logger"
)

// TaskEnqueuer is the part of *asynq.Client the handler needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReportLinker is satisfied by *storage.MinIOStorage.
type ReportLinker interface {
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// reportRetention keeps finished export tasks inspectable for a day.
const reportRetention = 24 * time.Hour

// AdminHandler serves /admin/discounts. Routes are mounted behind the
// auth and admin middlewares.
type AdminHandler struct {
	service   service.AdminServiceInterface
	tasks     TaskEnqueuer
	reports   ReportLinker // nil when object storage is down
	urlExpiry time.Duration
}

func NewAdminHandler(svc service.AdminServiceInterface, tasks TaskEnqueuer, reports ReportLinker, urlExpiry time.Duration) *AdminHandler {
	return &AdminHandler{
		service:   svc,
		tasks:     tasks,
		reports:   reports,
		urlExpiry: urlExpiry,
	}
}

// -------------------------------------------------------------------
// CREATE & UPDATE
// -------------------------------------------------------------------

// CreateDiscount
// @Router /v1/admin/discounts [post]
func (h *AdminHandler) CreateDiscount(c *gin.Context) {
	var req model.CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	d, err := h.service.CreateDiscount(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, d)
}

// UpdateDiscount applies a partial update.
// @Router /v1/admin/discounts/{id} [put]
func (h *AdminHandler) UpdateDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	d, err := h.service.UpdateDiscount(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, d)
}

// UpdateStatus switches a discount on or off.
// @Router /v1/admin/discounts/{id}/status [patch]
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ValidationError(c, validationDetails(err))
		return
	}

	if err := h.service.UpdateDiscountStatus(c.Request.Context(), id, *req.IsActive); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"id":        id,
		"is_active": *req.IsActive,
	})
}

// DeleteDiscount
// @Router /v1/admin/discounts/{id} [delete]
func (h *AdminHandler) DeleteDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteDiscount(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// -------------------------------------------------------------------
// READ OPERATIONS
// -------------------------------------------------------------------

// GetDiscount
// @Router /v1/admin/discounts/{id} [get]
func (h *AdminHandler) GetDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	d, err := h.service.GetDiscount(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, d)
}

// ListDiscounts supports status, scope_type, search, page and limit.
// @Router /v1/admin/discounts [get]
func (h *AdminHandler) ListDiscounts(c *gin.Context) {
	var filter model.ListDiscountsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	items, total, err := h.service.ListDiscounts(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, response.NewMeta(filter.Page, filter.Limit, total))
}

// -------------------------------------------------------------------
// EXPORT & MAINTENANCE
// -------------------------------------------------------------------

// ExportDiscounts streams an XLSX of the filtered discounts.
// The workbook is built in memory so failures still get a JSON error.
// @Router /v1/admin/discounts/export [get]
func (h *AdminHandler) ExportDiscounts(c *gin.Context) {
	var filter model.ListDiscountsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	var buf bytes.Buffer
	rows, err := h.service.ExportDiscounts(c.Request.Context(), &filter, &buf)
	if err != nil {
		handleError(c, err)
		return
	}

	logger.Info("Discount export downloaded", map[string]interface{}{
		"rows":  rows,
		"bytes": buf.Len(),
	})

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="discounts_%s.xlsx"`, filter.Status))
	c.Data(http.StatusOK, shared.XLSXContentType, buf.Bytes())
}

// RequestExportReport queues a report build; the file is fetched later
// through GetExportReport with the returned task_id.
// @Router /v1/admin/discounts/export [post]
func (h *AdminHandler) RequestExportReport(c *gin.Context) {
	var filter model.ListDiscountsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	filter.Normalize()
	if err := filter.Validate(); err != nil {
		response.ValidationError(c, validationDetails(err))
		return
	}

	userID, _ := middleware.GetUserID(c)
	payload, err := json.Marshal(shared.ExportDiscountReportPayload{
		RequestedBy: userID,
		Status:      filter.Status,
		ScopeType:   filter.ScopeType,
		Search:      filter.Search,
	})
	if err != nil {
		response.InternalServerError(c, "Failed to build report task")
		return
	}

	task := asynq.NewTask(shared.TypeExportDiscountReport, payload,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(3),
		asynq.Retention(reportRetention),
	)
	info, err := h.tasks.EnqueueContext(c.Request.Context(), task)
	if err != nil {
		logger.Error("Failed to enqueue discount export", err)
		response.ServiceUnavailable(c, "Report queue is unavailable")
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{
		"task_id":    info.ID,
		"queue":      info.Queue,
		"report_key": shared.DiscountReportKey(info.ID),
	})
}

// GetExportReport returns a short-lived download link for a queued report.
// @Router /v1/admin/discounts/export/{taskId} [get]
func (h *AdminHandler) GetExportReport(c *gin.Context) {
	taskID := c.Param("taskId")
	if _, err := uuid.Parse(taskID); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, string(model.ErrCodeValidationFailed),
			"Invalid taskId", err.Error())
		return
	}

	if h.reports == nil {
		response.ServiceUnavailable(c, "Report storage is unavailable")
		return
	}

	link, err := h.reports.PresignedGetURL(c.Request.Context(), shared.DiscountReportKey(taskID), h.urlExpiry)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			handleError(c, model.ErrReportNotReady)
			return
		}
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"task_id":    taskID,
		"url":        link,
		"expires_in": int(h.urlExpiry.Seconds()),
	})
}

// DeactivateStale runs the expiry sweep immediately.
// @Router /v1/admin/discounts/deactivate-stale [post]
func (h *AdminHandler) DeactivateStale(c *gin.Context) {
	n, err := h.service.DeactivateStaleDiscounts(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deactivated": n})
}
