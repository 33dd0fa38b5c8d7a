package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hatzaot-app/quotes-api/internal/auth"
	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/repository"
)

// defaultTokenTTL is used when a provision request does not specify one
const defaultTokenTTL = 24 * time.Hour

// AuthHandler handles user provisioning and token issuance. Issuing tokens
// is an admin operation; there is no self-service login.
type AuthHandler struct {
	validator *auth.JWTValidator
	userRepo  *repository.UserRepository
	logger    *zap.Logger
}

func NewAuthHandler(validator *auth.JWTValidator, userRepo *repository.UserRepository, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		validator: validator,
		userRepo:  userRepo,
		logger:    logger,
	}
}

type issueTokenRequest struct {
	UserID      string   `json:"userId" validate:"required,max=100"`
	Email       string   `json:"email" validate:"required,email"`
	DisplayName string   `json:"displayName" validate:"required,max=200"`
	Roles       []string `json:"roles" validate:"required,min=1,dive,oneof=admin user"`
	TTLHours    int      `json:"ttlHours,omitempty" validate:"omitempty,gte=1,lte=720"`
}

type issueTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IssueToken provisions (or refreshes) a user record and returns a signed JWT.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req issueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := &domain.User{
		ID:          req.UserID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Roles:       req.Roles,
		IsActive:    true,
	}
	if err := h.userRepo.Upsert(r.Context(), user); err != nil {
		h.logger.Error("failed to upsert user", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to provision user")
		return
	}

	ttl := defaultTokenTTL
	if req.TTLHours > 0 {
		ttl = time.Duration(req.TTLHours) * time.Hour
	}

	token, err := h.validator.IssueToken(req.UserID, req.Email, req.DisplayName, req.Roles, ttl)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, issueTokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Me returns the authenticated caller's identity.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.userRepo.TouchLastLogin(r.Context(), userCtx.UserID); err != nil {
		h.logger.Debug("failed to touch last login", zap.Error(err))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"userId":      userCtx.UserID,
		"email":       userCtx.Email,
		"displayName": userCtx.DisplayName,
		"roles":       userCtx.Roles,
	})
}
