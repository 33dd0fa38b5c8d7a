package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs for API responses

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

type CompanyDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Logo        string    `json:"logo,omitempty"`
	Address     string    `json:"address,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	Website     string    `json:"website,omitempty"`
	Signature   string    `json:"signature,omitempty"`
	TaxID       string    `json:"taxId,omitempty"`
	BankName    string    `json:"bankName,omitempty"`
	BankBranch  string    `json:"bankBranch,omitempty"`
	BankAccount string    `json:"bankAccount,omitempty"`
	VATRate     float64   `json:"vatRate"`
	CreatedAt   string    `json:"createdAt"` // ISO 8601
	UpdatedAt   string    `json:"updatedAt"` // ISO 8601
}

type CustomerDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	CompanyName string    `json:"companyName,omitempty"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	ZipCode     string    `json:"zipCode,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	QuoteCount  int       `json:"quoteCount,omitempty"`
	CreatedAt   string    `json:"createdAt"` // ISO 8601
	UpdatedAt   string    `json:"updatedAt"` // ISO 8601
}

type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       float64   `json:"price"`
	Discount    float64   `json:"discount"`
	Unit        string    `json:"unit,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

type QuoteTemplateDTO struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Type        TemplateType `json:"type"`
	Description string       `json:"description,omitempty"`
	Content     string       `json:"content"`
	IsActive    bool         `json:"isActive"`
	IsDefault   bool         `json:"isDefault"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

type QuoteItemDTO struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   *uuid.UUID `json:"productId,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Quantity    float64    `json:"quantity"`
	UnitPrice   float64    `json:"unitPrice"`
	Discount    float64    `json:"discount"`
	Total       float64    `json:"total"`
	Position    int        `json:"position"`
}

type QuoteDTO struct {
	ID           uuid.UUID      `json:"id"`
	QuoteNumber  string         `json:"quoteNumber"`
	CustomerID   uuid.UUID      `json:"customerId"`
	CustomerName string         `json:"customerName,omitempty"`
	TemplateID   uuid.UUID      `json:"templateId"`
	TemplateName string         `json:"templateName,omitempty"`
	Type         TemplateType   `json:"type"`
	Status       QuoteStatus    `json:"status"`
	Title        string         `json:"title,omitempty"`
	TotalAmount  float64        `json:"totalAmount"`
	Discount     float64        `json:"discount"`
	VATAmount    float64        `json:"vatAmount"`
	FinalAmount  float64        `json:"finalAmount"`
	ValidUntil   string         `json:"validUntil"` // ISO 8601
	IsExpired    bool           `json:"isExpired"`
	PublicToken  string         `json:"publicToken,omitempty"`
	SentAt       *string        `json:"sentAt,omitempty"`
	SignedAt     *string        `json:"signedAt,omitempty"`
	SignerName   string         `json:"signerName,omitempty"`
	Items        []QuoteItemDTO `json:"items"`
	CreatedAt    string         `json:"createdAt"`
	UpdatedAt    string         `json:"updatedAt"`
}

// PublicQuoteDTO is the customer-facing view served on the public link.
// It never exposes owner identifiers or the raw template.
type PublicQuoteDTO struct {
	QuoteNumber   string         `json:"quoteNumber"`
	CompanyName   string         `json:"companyName"`
	CompanyLogo   string         `json:"companyLogo,omitempty"`
	CustomerName  string         `json:"customerName"`
	Status        QuoteStatus    `json:"status"`
	StatusLabel   string         `json:"statusLabel"`
	Title         string         `json:"title,omitempty"`
	TotalAmount   float64        `json:"totalAmount"`
	Discount      float64        `json:"discount"`
	VATAmount     float64        `json:"vatAmount"`
	FinalAmount   float64        `json:"finalAmount"`
	ValidUntil    string         `json:"validUntil"`
	SignedAt      *string        `json:"signedAt,omitempty"`
	SignerName    string         `json:"signerName,omitempty"`
	EmailVerified bool           `json:"emailVerified"`
	Items         []QuoteItemDTO `json:"items"`
}

type AuditLogDTO struct {
	ID          uuid.UUID   `json:"id"`
	UserID      string      `json:"userId,omitempty"`
	UserEmail   string      `json:"userEmail,omitempty"`
	Action      AuditAction `json:"action"`
	EntityType  string      `json:"entityType"`
	EntityID    *uuid.UUID  `json:"entityId,omitempty"`
	EntityName  string      `json:"entityName,omitempty"`
	Detail      string      `json:"detail,omitempty"`
	PerformedAt string      `json:"performedAt"`
}

// Request payloads

type UpdateCompanyRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Logo        string   `json:"logo,omitempty" validate:"max=500"`
	Address     string   `json:"address,omitempty" validate:"max=500"`
	Phone       string   `json:"phone,omitempty" validate:"max=50"`
	Email       string   `json:"email,omitempty" validate:"omitempty,email"`
	Website     string   `json:"website,omitempty" validate:"omitempty,max=500"`
	Signature   string   `json:"signature,omitempty"`
	TaxID       string   `json:"taxId,omitempty" validate:"max=50"`
	BankName    string   `json:"bankName,omitempty" validate:"max=100"`
	BankBranch  string   `json:"bankBranch,omitempty" validate:"max=50"`
	BankAccount string   `json:"bankAccount,omitempty" validate:"max=50"`
	VATRate     *float64 `json:"vatRate,omitempty" validate:"omitempty,gte=0,lte=100"`
}

type CreateCustomerRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	CompanyName string `json:"companyName,omitempty" validate:"max=200"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone,omitempty" validate:"max=50"`
	Address     string `json:"address,omitempty" validate:"max=500"`
	City        string `json:"city,omitempty" validate:"max=100"`
	ZipCode     string `json:"zipCode,omitempty" validate:"max=20"`
	Notes       string `json:"notes,omitempty" validate:"max=2000"`
}

type UpdateCustomerRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	CompanyName string `json:"companyName,omitempty" validate:"max=200"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone,omitempty" validate:"max=50"`
	Address     string `json:"address,omitempty" validate:"max=500"`
	City        string `json:"city,omitempty" validate:"max=100"`
	ZipCode     string `json:"zipCode,omitempty" validate:"max=20"`
	Notes       string `json:"notes,omitempty" validate:"max=2000"`
}

type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description,omitempty" validate:"max=2000"`
	Category    string  `json:"category,omitempty" validate:"max=100"`
	Price       float64 `json:"price" validate:"gte=0"`
	Discount    float64 `json:"discount,omitempty" validate:"gte=0,lte=100"`
	Unit        string  `json:"unit,omitempty" validate:"max=50"`
}

type UpdateProductRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description,omitempty" validate:"max=2000"`
	Category    string  `json:"category,omitempty" validate:"max=100"`
	Price       float64 `json:"price" validate:"gte=0"`
	Discount    float64 `json:"discount,omitempty" validate:"gte=0,lte=100"`
	Unit        string  `json:"unit,omitempty" validate:"max=50"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

type CreateTemplateRequest struct {
	Name        string       `json:"name" validate:"required,max=200"`
	Type        TemplateType `json:"type" validate:"required,oneof=services workshops products"`
	Description string       `json:"description,omitempty" validate:"max=500"`
	Content     string       `json:"content" validate:"required"`
	IsDefault   bool         `json:"isDefault,omitempty"`
}

type UpdateTemplateRequest struct {
	Name        string       `json:"name" validate:"required,max=200"`
	Type        TemplateType `json:"type" validate:"required,oneof=services workshops products"`
	Description string       `json:"description,omitempty" validate:"max=500"`
	Content     string       `json:"content" validate:"required"`
	IsActive    *bool        `json:"isActive,omitempty"`
	IsDefault   *bool        `json:"isDefault,omitempty"`
}

type QuoteItemRequest struct {
	ProductID   *uuid.UUID `json:"productId,omitempty"`
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description,omitempty" validate:"max=2000"`
	Quantity    float64    `json:"quantity" validate:"gt=0"`
	UnitPrice   float64    `json:"unitPrice" validate:"gte=0"`
	Discount    float64    `json:"discount,omitempty" validate:"gte=0,lte=100"`
}

type CreateQuoteRequest struct {
	CustomerID uuid.UUID          `json:"customerId" validate:"required"`
	TemplateID uuid.UUID          `json:"templateId" validate:"required"`
	Type       TemplateType       `json:"type,omitempty" validate:"omitempty,oneof=services workshops products"`
	Title      string             `json:"title,omitempty" validate:"max=200"`
	Discount   float64            `json:"discount,omitempty" validate:"gte=0"`
	ValidUntil *time.Time         `json:"validUntil,omitempty"`
	Items      []QuoteItemRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdateQuoteRequest struct {
	Title      string             `json:"title,omitempty" validate:"max=200"`
	Discount   *float64           `json:"discount,omitempty" validate:"omitempty,gte=0"`
	ValidUntil *time.Time         `json:"validUntil,omitempty"`
	Items      []QuoteItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

type SetQuoteStatusRequest struct {
	Status QuoteStatus `json:"status" validate:"required,oneof=draft sent pending_approval approved rejected signed"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SignQuoteRequest struct {
	Signature  string `json:"signature" validate:"required"`
	SignerName string `json:"signerName,omitempty" validate:"max=200"`
}

type PublicLinkDTO struct {
	Token     string `json:"token"`
	PublicURL string `json:"publicUrl"`
}

// PaginatedResponse wraps list results
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}
