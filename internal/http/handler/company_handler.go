package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/service"
)

// maxLogoSize caps logo uploads at 5 MB
const maxLogoSize = 5 << 20

type CompanyHandler struct {
	companyService *service.CompanyService
	logger         *zap.Logger
}

func NewCompanyHandler(companyService *service.CompanyService, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		logger:         logger,
	}
}

// Get returns the caller's business profile.
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	company, err := h.companyService.Get(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get company profile")
		return
	}

	respondJSON(w, http.StatusOK, company)
}

// Update saves the business profile, creating it on first save.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	company, err := h.companyService.Update(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to save company profile")
		return
	}

	respondJSON(w, http.StatusOK, company)
}

// UploadLogo accepts a multipart form with a "file" field.
func (h *CompanyHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLogoSize)
	if err := r.ParseMultipartForm(maxLogoSize); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing 'file' field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	company, err := h.companyService.UploadLogo(r.Context(), header.Filename, contentType, file)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to upload logo")
		return
	}

	respondJSON(w, http.StatusOK, company)
}
