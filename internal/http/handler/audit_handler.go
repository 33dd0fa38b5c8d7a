package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/repository"
	"github.com/hatzaot-app/quotes-api/internal/service"
)

// AuditHandler exposes the audit trail to administrators.
type AuditHandler struct {
	auditService *service.AuditLogService
	logger       *zap.Logger
}

func NewAuditHandler(auditService *service.AuditLogService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// List returns audit entries, newest first. Supports ?userId=, ?action=,
// ?entityType=, ?entityId=, ?from=, ?to= (RFC 3339) and ?requestId=.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	filter := &repository.AuditLogFilter{
		UserID:     r.URL.Query().Get("userId"),
		EntityType: r.URL.Query().Get("entityType"),
		RequestID:  r.URL.Query().Get("requestId"),
	}

	if raw := r.URL.Query().Get("action"); raw != "" {
		action := domain.AuditAction(raw)
		filter.Action = &action
	}

	if raw := r.URL.Query().Get("entityId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid entityId format")
			return
		}
		filter.EntityID = &id
	}

	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'from' timestamp, expected RFC 3339")
			return
		}
		filter.StartTime = &t
	}

	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'to' timestamp, expected RFC 3339")
			return
		}
		filter.EndTime = &t
	}

	result, err := h.auditService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list audit logs")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListByEntity returns the recent audit trail for one entity.
func (h *AuditHandler) ListByEntity(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityID, err := uuid.Parse(chi.URLParam(r, "entityId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid entity ID format")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.auditService.ListByEntity(r.Context(), entityType, entityID, limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list audit logs")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}
