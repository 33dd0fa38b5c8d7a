package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/service"
)

type QuoteHandler struct {
	quoteService     *service.QuoteService
	lifecycleService *service.QuoteLifecycleService
	logger           *zap.Logger
}

func NewQuoteHandler(quoteService *service.QuoteService, lifecycleService *service.QuoteLifecycleService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService:     quoteService,
		lifecycleService: lifecycleService,
		logger:           logger,
	}
}

// List returns a paginated list of quotes.
// Supports ?customerId=, ?status= and ?search= over quote number and title.
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	search := r.URL.Query().Get("search")

	var customerID *uuid.UUID
	if raw := r.URL.Query().Get("customerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid customerId format")
			return
		}
		customerID = &id
	}

	var status *domain.QuoteStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.QuoteStatus(raw)
		status = &s
	}

	result, err := h.quoteService.List(r.Context(), page, pageSize, customerID, status, search)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list quotes")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Stats returns the count of quotes per status for the dashboard.
func (h *QuoteHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.quoteService.CountByStatus(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get quote stats")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"byStatus": counts,
	})
}

func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get quote")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create quote")
		return
	}

	w.Header().Set("Location", "/api/v1/quotes/"+quote.ID.String())
	respondJSON(w, http.StatusCreated, quote)
}

func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var req domain.UpdateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update quote")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	if err := h.quoteService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete quote")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetStatus performs a manual lifecycle transition on a quote.
func (h *QuoteHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var req domain.SetQuoteStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.lifecycleService.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to change quote status")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// IssuePublicLink creates (or returns) the shareable customer link for a quote.
func (h *QuoteHandler) IssuePublicLink(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	link, err := h.lifecycleService.IssuePublicLink(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to issue public link")
		return
	}

	respondJSON(w, http.StatusOK, link)
}

// Render returns the quote body with variables substituted, as HTML.
func (h *QuoteHandler) Render(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	html, err := h.lifecycleService.RenderQuote(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to render quote")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

// GeneratePDF renders the quote document and streams the PDF back.
func (h *QuoteHandler) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	data, filename, err := h.lifecycleService.GeneratePDF(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	_, _ = w.Write(data)
}
