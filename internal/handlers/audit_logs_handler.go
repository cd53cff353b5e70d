package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/interview-scheduler/internal/httperr"
	"github.com/BruksfildServices01/interview-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/interview-scheduler/internal/models"
)

// AuditLogsHandler lists the booking trail written by audit.Logger. Only
// the gorm host schema has the table.
type AuditLogsHandler struct {
	db      *gorm.DB
	ownerID uint
}

func NewAuditLogsHandler(db *gorm.DB, ownerID uint) *AuditLogsHandler {
	return &AuditLogsHandler{db: db, ownerID: ownerID}
}

type auditLogPage struct {
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
	Logs  []models.AuditLog `json:"logs"`
}

// auditFilter holds the query string of GET /api/audit-logs. Dates that do
// not parse are ignored.
type auditFilter struct {
	action   string
	entityID string
	from     time.Time
	to       time.Time
}

func parseAuditFilter(c *gin.Context) auditFilter {
	f := auditFilter{
		action:   c.Query("action"),
		entityID: c.Query("slot_id"),
	}
	if d, err := time.Parse(slot.DateLayout, c.Query("from")); err == nil {
		f.from = d
	}
	if d, err := time.Parse(slot.DateLayout, c.Query("to")); err == nil {
		f.to = d.AddDate(0, 0, 1)
	}
	return f
}

func (f auditFilter) apply(q *gorm.DB) *gorm.DB {
	if f.action != "" {
		q = q.Where("action = ?", f.action)
	}
	if f.entityID != "" {
		q = q.Where("entity_id = ?", f.entityID)
	}
	if !f.from.IsZero() {
		q = q.Where("created_at >= ?", f.from)
	}
	if !f.to.IsZero() {
		q = q.Where("created_at < ?", f.to)
	}
	return q
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := h.db.
		WithContext(c.Request.Context()).
		Model(&models.AuditLog{}).
		Where("entity = ?", "slot")
	if h.ownerID != 0 {
		q = q.Where("owner_id = ?", h.ownerID)
	}
	q = parseAuditFilter(c).apply(q)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		_ = c.Error(err)
		httperr.Internal(c, "audit_count_failed", "Could not count audit logs.")
		return
	}

	logs := make([]models.AuditLog, 0)
	if err := q.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&logs).Error; err != nil {
		_ = c.Error(err)
		httperr.Internal(c, "audit_list_failed", "Could not list audit logs.")
		return
	}

	httpresp.OK(c, auditLogPage{
		Page:  page,
		Limit: limit,
		Total: total,
		Logs:  logs,
	})
}
