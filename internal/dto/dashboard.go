package dto

import "github.com/noah-isme/hostel-outing-api/internal/models"

// DashboardPayload is the role-scoped landing view: aggregate counts, a
// preview of the pending queue, and the latest notices.
type DashboardPayload struct {
	Stats        models.OutingStats     `json:"stats"`
	PendingQueue []models.OutingRequest `json:"pending_queue"`
	Notices      []models.Notice        `json:"notices"`
	GeneratedAt  string                 `json:"generated_at"`
}
