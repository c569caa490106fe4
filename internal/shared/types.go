package shared

import "github.com/google/uuid"

// Asynq task types
const (
	TypeDeactivateExpiredDiscounts = "discount:deactivate_expired"
	TypeExportDiscountReport       = "discount:export_report"
)

// Asynq queues and their weights
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// QueueWeights is the priority map handed to asynq.Config.Queues.
var QueueWeights = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
	QueueLow:      1,
}

// Context keys set by middleware
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
)

// RoleAdmin is the JWT role that may use the back-office routes.
const RoleAdmin = "admin"

// ExportDiscountReportPayload is the body of TypeExportDiscountReport.
type ExportDiscountReportPayload struct {
	RequestedBy uuid.UUID `json:"requested_by"`
	Status      string    `json:"status,omitempty"`
	ScopeType   string    `json:"scope_type,omitempty"`
	Search      string    `json:"search,omitempty"`
}

// XLSXContentType is the MIME type of generated discount reports.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DiscountReportKey is the object key of the report built by an export task.
func DiscountReportKey(taskID string) string {
	return "reports/discounts/" + taskID + ".xlsx"
}
