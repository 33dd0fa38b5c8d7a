package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/hatzaot-app/quotes-api/internal/config"
	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/service"
)

// PublicHandler serves the unauthenticated, token-addressed customer flow:
// viewing a quote, verifying the recipient email, and signing.
type PublicHandler struct {
	lifecycleService *service.QuoteLifecycleService
	companyService   *service.CompanyService
	publicCfg        *config.PublicConfig
	logger           *zap.Logger
}

func NewPublicHandler(lifecycleService *service.QuoteLifecycleService, companyService *service.CompanyService, publicCfg *config.PublicConfig, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{
		lifecycleService: lifecycleService,
		companyService:   companyService,
		publicCfg:        publicCfg,
		logger:           logger,
	}
}

// GetQuote returns the customer-facing view of a quote.
func (h *PublicHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	quote, err := h.lifecycleService.GetPublic(r.Context(), token, h.isVerified(r, token), clientIP(r), r.UserAgent())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to load quote")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// Render returns the quote as a standalone HTML document.
func (h *PublicHandler) Render(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	html, err := h.lifecycleService.RenderPublic(r.Context(), token)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to render quote")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

// GeneratePDF streams the quote document as a PDF.
func (h *PublicHandler) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	data, filename, err := h.lifecycleService.GeneratePublicPDF(r.Context(), token)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	_, _ = w.Write(data)
}

// VerifyEmail checks the typed address against the quote's customer and sets
// the verification cookie on success.
func (h *PublicHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req domain.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.lifecycleService.VerifyEmail(r.Context(), token, req.Email, clientIP(r), r.UserAgent()); err != nil {
		respondServiceError(w, h.logger, err, "Failed to verify email")
		return
	}

	value, err := h.signVerification(token)
	if err != nil {
		h.logger.Error("failed to sign verification cookie", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to verify email")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     verificationCookieName(token),
		Value:    value,
		Path:     "/",
		MaxAge:   h.publicCfg.VerificationTTLDays * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   h.publicCfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	respondJSON(w, http.StatusOK, map[string]bool{"verified": true})
}

// Sign applies the customer's signature to the quote.
func (h *PublicHandler) Sign(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req domain.SignQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.lifecycleService.Sign(r.Context(), token, &req, h.isVerified(r, token), clientIP(r), r.UserAgent())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to sign quote")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// GetAsset serves stored public assets such as the company logo.
func (h *PublicHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	if path == "" || strings.Contains(path, "..") {
		respondError(w, http.StatusBadRequest, "Invalid asset path")
		return
	}

	rc, err := h.companyService.OpenAsset(r.Context(), path)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to load asset")
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = io.Copy(w, rc)
}

// verificationScope identifies the only claim purpose accepted in
// verification cookies.
const verificationScope = "quote_email_verified"

// signVerification issues the signed cookie value bound to the quote token.
// The value carries its own expiry so a replayed cookie outliving MaxAge is
// still rejected.
func (h *PublicHandler) signVerification(token string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   token,
		"scope": verificationScope,
		"exp":   jwt.NewNumericDate(time.Now().Add(h.publicCfg.VerificationTTL())),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.publicCfg.CookieSecret))
}

func (h *PublicHandler) isVerified(r *http.Request, token string) bool {
	cookie, err := r.Cookie(verificationCookieName(token))
	if err != nil || cookie.Value == "" {
		return false
	}

	parsed, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(h.publicCfg.CookieSecret), nil
	})
	if err != nil || !parsed.Valid {
		return false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	sub, _ := claims["sub"].(string)
	scope, _ := claims["scope"].(string)
	return sub == token && scope == verificationScope
}

func verificationCookieName(token string) string {
	return "quote_" + token + "_verified"
}

// clientIP extracts the originating address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
