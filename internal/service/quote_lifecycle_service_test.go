package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/service"
)

const (
	testIP        = "203.0.113.7"
	testUserAgent = "test-agent"
)

// issuePublicQuote creates a quote and issues its public link, returning the token
func issuePublicQuote(t *testing.T, env *serviceEnv, ctx context.Context) (*domain.QuoteDTO, string) {
	t.Helper()
	dto := env.createQuote(t, ctx)
	link, err := env.lifecycle.IssuePublicLink(ctx, dto.ID)
	require.NoError(t, err)
	return dto, link.Token
}

func TestLifecycle_SetStatus(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	dto := env.createQuote(t, ctx)

	updated, err := env.lifecycle.SetStatus(ctx, dto.ID, domain.QuoteStatusSent)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusSent, updated.Status)
	assert.NotNil(t, updated.SentAt)

	updated, err = env.lifecycle.SetStatus(ctx, dto.ID, domain.QuoteStatusPendingApproval)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusPendingApproval, updated.Status)
}

func TestLifecycle_SetStatus_InvalidTransition(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	dto := env.createQuote(t, ctx)

	_, err := env.lifecycle.SetStatus(ctx, dto.ID, domain.QuoteStatusApproved)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestLifecycle_SetStatus_SigningNotAllowed(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	dto := env.createQuote(t, ctx)
	env.setQuoteStatus(t, dto.ID, domain.QuoteStatusSent)

	// The signed state is only reachable through the signature endpoint.
	_, err := env.lifecycle.SetStatus(ctx, dto.ID, domain.QuoteStatusSigned)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestLifecycle_IssuePublicLink(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	dto := env.createQuote(t, ctx)

	link, err := env.lifecycle.IssuePublicLink(ctx, dto.ID)
	require.NoError(t, err)

	assert.Len(t, link.Token, 32)
	assert.Equal(t, "https://quotes.example.test/quotes/public/"+link.Token, link.PublicURL)

	// Issuing the link moves a draft to sent.
	reloaded, err := env.quotes.GetByID(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusSent, reloaded.Status)
}

func TestLifecycle_IssuePublicLink_Idempotent(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	dto := env.createQuote(t, ctx)

	first, err := env.lifecycle.IssuePublicLink(ctx, dto.ID)
	require.NoError(t, err)
	second, err := env.lifecycle.IssuePublicLink(ctx, dto.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Token, second.Token)
}

func TestLifecycle_GetPublic(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	env.seedCompany(t, 17)
	_, token := issuePublicQuote(t, env, ctx)

	view, err := env.lifecycle.GetPublic(context.Background(), token, false, testIP, testUserAgent)
	require.NoError(t, err)

	assert.Equal(t, "Q1", view.QuoteNumber)
	assert.Equal(t, "העסק שלי", view.CompanyName)
	assert.Equal(t, "דנה לוי", view.CustomerName)
	assert.Equal(t, domain.QuoteStatusSent, view.Status)
	assert.Equal(t, "נשלחה", view.StatusLabel)
	assert.False(t, view.EmailVerified)
	assert.InDelta(t, 170, view.VATAmount, 0.001)
	assert.InDelta(t, 1170, view.FinalAmount, 0.001)
}

func TestLifecycle_GetPublic_UnknownToken(t *testing.T) {
	env := newServiceEnv(t)

	_, err := env.lifecycle.GetPublic(context.Background(), "nosuchtoken", false, testIP, testUserAgent)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestLifecycle_GetPublic_Expired(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	dto, token := issuePublicQuote(t, env, ctx)

	yesterday := time.Now().Add(-24 * time.Hour)
	require.NoError(t, env.db.Model(&domain.Quote{}).
		Where("id = ?", dto.ID).
		Update("valid_until", yesterday).Error)

	_, err := env.lifecycle.GetPublic(context.Background(), token, false, testIP, testUserAgent)
	assert.ErrorIs(t, err, service.ErrQuoteExpired)

	// The gate holds regardless of status, signed included.
	env.setQuoteStatus(t, dto.ID, domain.QuoteStatusSigned)
	_, err = env.lifecycle.GetPublic(context.Background(), token, false, testIP, testUserAgent)
	assert.ErrorIs(t, err, service.ErrQuoteExpired)

	_, err = env.lifecycle.RenderPublic(context.Background(), token)
	assert.ErrorIs(t, err, service.ErrQuoteExpired)
}

func TestLifecycle_VerifyEmail(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	_, token := issuePublicQuote(t, env, ctx)

	err := env.lifecycle.VerifyEmail(context.Background(), token, "someone.else@example.com", testIP, testUserAgent)
	assert.ErrorIs(t, err, service.ErrEmailMismatch)

	// Matching is case-insensitive and ignores surrounding whitespace.
	err = env.lifecycle.VerifyEmail(context.Background(), token, "  DANA@example.co.il ", testIP, testUserAgent)
	assert.NoError(t, err)
}

func TestLifecycle_Sign(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	_, token := issuePublicQuote(t, env, ctx)

	req := &domain.SignQuoteRequest{
		Signature:  "data:image/png;base64,aGVsbG8=",
		SignerName: "דנה לוי",
	}

	view, err := env.lifecycle.Sign(context.Background(), token, req, true, testIP, testUserAgent)
	require.NoError(t, err)

	assert.Equal(t, domain.QuoteStatusSigned, view.Status)
	assert.Equal(t, "דנה לוי", view.SignerName)
	require.NotNil(t, view.SignedAt)
}

func TestLifecycle_Sign_RequiresVerification(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	_, token := issuePublicQuote(t, env, ctx)

	req := &domain.SignQuoteRequest{Signature: "data:image/png;base64,aGVsbG8="}
	_, err := env.lifecycle.Sign(context.Background(), token, req, false, testIP, testUserAgent)
	assert.ErrorIs(t, err, service.ErrNotVerified)
}

func TestLifecycle_Sign_EmptySignature(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	_, token := issuePublicQuote(t, env, ctx)

	_, err := env.lifecycle.Sign(context.Background(), token, &domain.SignQuoteRequest{}, true, testIP, testUserAgent)
	assert.ErrorIs(t, err, service.ErrEmptySignature)
}

func TestLifecycle_Sign_Once(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	_, token := issuePublicQuote(t, env, ctx)

	req := &domain.SignQuoteRequest{Signature: "data:image/png;base64,aGVsbG8="}
	_, err := env.lifecycle.Sign(context.Background(), token, req, true, testIP, testUserAgent)
	require.NoError(t, err)

	_, err = env.lifecycle.Sign(context.Background(), token, req, true, testIP, testUserAgent)
	assert.ErrorIs(t, err, service.ErrAlreadySigned)
}

func TestLifecycle_Sign_Expired(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	dto, token := issuePublicQuote(t, env, ctx)

	yesterday := time.Now().Add(-24 * time.Hour)
	require.NoError(t, env.db.Model(&domain.Quote{}).
		Where("id = ?", dto.ID).
		Update("valid_until", yesterday).Error)

	req := &domain.SignQuoteRequest{Signature: "data:image/png;base64,aGVsbG8="}
	_, err := env.lifecycle.Sign(context.Background(), token, req, true, testIP, testUserAgent)
	assert.ErrorIs(t, err, service.ErrQuoteExpired)
}

func TestLifecycle_Sign_SignerNameFallback(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	_, token := issuePublicQuote(t, env, ctx)

	req := &domain.SignQuoteRequest{Signature: "data:image/png;base64,aGVsbG8="}
	view, err := env.lifecycle.Sign(context.Background(), token, req, true, testIP, testUserAgent)
	require.NoError(t, err)

	assert.Equal(t, "דנה לוי", view.SignerName)
}

func TestLifecycle_RenderQuote(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	env.seedCompany(t, 17)
	dto := env.createQuote(t, ctx)

	out, err := env.lifecycle.RenderQuote(ctx, dto.ID)
	require.NoError(t, err)

	assert.Contains(t, out, "דנה לוי")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "₪1,170")
}

func TestLifecycle_RenderPublic(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	env.seedCompany(t, 17)
	_, token := issuePublicQuote(t, env, ctx)

	out, err := env.lifecycle.RenderPublic(context.Background(), token)
	require.NoError(t, err)

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, `dir="rtl"`)
	assert.Contains(t, out, "דנה לוי")
}

func TestLifecycle_GeneratePublicPDF_NoCompanyProfile(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	_, token := issuePublicQuote(t, env, ctx)

	// No business profile seeded: the printed document cannot be produced.
	_, _, err := env.lifecycle.GeneratePublicPDF(context.Background(), token)
	assert.ErrorIs(t, err, service.ErrCompanyNotFound)
}

func TestLifecycle_AuditTrail(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	_, token := issuePublicQuote(t, env, ctx)

	req := &domain.SignQuoteRequest{Signature: "data:image/png;base64,aGVsbG8="}
	_, err := env.lifecycle.Sign(context.Background(), token, req, true, testIP, testUserAgent)
	require.NoError(t, err)

	var actions []string
	require.NoError(t, env.db.Model(&domain.AuditLog{}).
		Order("created_at").
		Pluck("action", &actions).Error)

	assert.Contains(t, actions, string(domain.AuditActionCreate))
	assert.Contains(t, actions, string(domain.AuditActionLinkIssued))
	assert.Contains(t, actions, string(domain.AuditActionSigned))
}
