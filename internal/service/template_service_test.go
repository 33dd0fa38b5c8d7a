package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/render"
	"github.com/hatzaot-app/quotes-api/internal/service"
)

func TestTemplateService_Create(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()

	dto, err := env.templates.Create(ctx, &domain.CreateTemplateRequest{
		Name:    "תבנית סדנאות",
		Type:    domain.TemplateTypeWorkshops,
		Content: "שלום {{clientName}}, מצורפת הצעת מחיר {{quoteNumber}}",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TemplateTypeWorkshops, dto.Type)
	assert.Contains(t, dto.Content, "{{clientName}}")
}

func TestTemplateService_Create_UnknownVariable(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()

	_, err := env.templates.Create(ctx, &domain.CreateTemplateRequest{
		Name:    "תבנית שבורה",
		Type:    domain.TemplateTypeServices,
		Content: "שלום {{customerFullName}}",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Contains(t, err.Error(), "customerFullName")
}

func TestTemplateService_Create_InvalidType(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()

	_, err := env.templates.Create(ctx, &domain.CreateTemplateRequest{
		Name:    "תבנית",
		Type:    domain.TemplateType("consulting"),
		Content: "תוכן",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestTemplateService_DefaultPerType(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()

	first, err := env.templates.Create(ctx, &domain.CreateTemplateRequest{
		Name:      "ברירת מחדל ראשונה",
		Type:      domain.TemplateTypeServices,
		Content:   "תוכן",
		IsDefault: true,
	})
	require.NoError(t, err)

	second, err := env.templates.Create(ctx, &domain.CreateTemplateRequest{
		Name:      "ברירת מחדל שנייה",
		Type:      domain.TemplateTypeServices,
		Content:   "תוכן",
		IsDefault: true,
	})
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	// Only one default per type; the earlier one is cleared.
	reloaded, err := env.templates.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault)
}

func TestTemplateService_Delete_InUse(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	dto := env.createQuote(t, ctx)

	err := env.templates.Delete(ctx, dto.TemplateID)
	assert.ErrorIs(t, err, service.ErrTemplateInUse)
}

func TestTemplateService_Variables(t *testing.T) {
	env := newServiceEnv(t)

	assert.Equal(t, render.KnownVariables(), env.templates.Variables())
}
