package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID when the application inserts a row, so the
// models behave the same on postgres and on the sqlite test databases.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// QuoteStatus represents the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteStatusDraft           QuoteStatus = "draft"
	QuoteStatusSent            QuoteStatus = "sent"
	QuoteStatusPendingApproval QuoteStatus = "pending_approval"
	QuoteStatusApproved        QuoteStatus = "approved"
	QuoteStatusRejected        QuoteStatus = "rejected"
	QuoteStatusSigned          QuoteStatus = "signed"
)

// IsValid checks if the QuoteStatus is a valid enum value
func (qs QuoteStatus) IsValid() bool {
	switch qs {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusPendingApproval,
		QuoteStatusApproved, QuoteStatusRejected, QuoteStatusSigned:
		return true
	}
	return false
}

// IsTerminal reports whether no further status changes are allowed
func (qs QuoteStatus) IsTerminal() bool {
	return qs == QuoteStatusRejected || qs == QuoteStatusSigned
}

// CanTransitionTo reports whether a manual status change from qs to target
// is allowed. Signing is handled separately and may also occur from the
// sent and pending_approval states.
func (qs QuoteStatus) CanTransitionTo(target QuoteStatus) bool {
	allowed, ok := statusTransitions[qs]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

var statusTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft:           {QuoteStatusSent},
	QuoteStatusSent:            {QuoteStatusPendingApproval, QuoteStatusSigned},
	QuoteStatusPendingApproval: {QuoteStatusApproved, QuoteStatusRejected, QuoteStatusSigned},
	QuoteStatusApproved:        {QuoteStatusSigned},
}

// DisplayName returns the Hebrew label shown to end customers
func (qs QuoteStatus) DisplayName() string {
	switch qs {
	case QuoteStatusDraft:
		return "טיוטה"
	case QuoteStatusSent:
		return "נשלחה"
	case QuoteStatusPendingApproval:
		return "ממתינה לאישור"
	case QuoteStatusApproved:
		return "אושרה"
	case QuoteStatusRejected:
		return "נדחתה"
	case QuoteStatusSigned:
		return "נחתמה"
	}
	return string(qs)
}

// TemplateType classifies a quote template by the kind of offering it covers
type TemplateType string

const (
	TemplateTypeServices  TemplateType = "services"
	TemplateTypeWorkshops TemplateType = "workshops"
	TemplateTypeProducts  TemplateType = "products"
)

// IsValid checks if the TemplateType is a valid enum value
func (tt TemplateType) IsValid() bool {
	switch tt {
	case TemplateTypeServices, TemplateTypeWorkshops, TemplateTypeProducts:
		return true
	}
	return false
}

// DisplayName returns the Hebrew label for the template type
func (tt TemplateType) DisplayName() string {
	switch tt {
	case TemplateTypeServices:
		return "שירותים"
	case TemplateTypeWorkshops:
		return "סדנאות"
	case TemplateTypeProducts:
		return "מוצרים"
	}
	return string(tt)
}

// Company holds the issuing business profile. Each account owns exactly one
// row; it feeds the company* template variables and the PDF letterhead.
type Company struct {
	BaseModel
	OwnerID   string `gorm:"type:varchar(100);not null;uniqueIndex;column:owner_id"`
	Name      string `gorm:"type:varchar(200);not null"`
	Logo      string `gorm:"type:varchar(500)"`
	Address   string `gorm:"type:varchar(500)"`
	Phone     string `gorm:"type:varchar(50)"`
	Email     string `gorm:"type:varchar(255)"`
	Website   string `gorm:"type:varchar(500)"`
	Signature string `gorm:"type:text"` // data-URL image, stamped on signed quotes
	TaxID     string `gorm:"type:varchar(50);column:tax_id"`
	// Bank details printed on the quote document for payment
	BankName    string  `gorm:"type:varchar(100);column:bank_name"`
	BankBranch  string  `gorm:"type:varchar(50);column:bank_branch"`
	BankAccount string  `gorm:"type:varchar(50);column:bank_account"`
	VATRate     float64 `gorm:"type:decimal(5,2);not null;default:17;column:vat_rate"`
}

// Customer represents a client that quotes are issued to
type Customer struct {
	BaseModel
	OwnerID     string  `gorm:"type:varchar(100);not null;index;column:owner_id"`
	Name        string  `gorm:"type:varchar(200);not null;index"`
	CompanyName string  `gorm:"type:varchar(200);column:company_name"`
	Email       string  `gorm:"type:varchar(255);not null;index"`
	Phone       string  `gorm:"type:varchar(50)"`
	Address     string  `gorm:"type:varchar(500)"` // street line
	City        string  `gorm:"type:varchar(100)"`
	ZipCode     string  `gorm:"type:varchar(20);column:zip_code"`
	Notes       string  `gorm:"type:text"`
	Quotes      []Quote `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

// FullAddress joins the address parts into the single line shown on documents
func (c *Customer) FullAddress() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.Address, c.City, c.ZipCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Product represents a catalog item that can be placed on a quote
type Product struct {
	BaseModel
	OwnerID     string  `gorm:"type:varchar(100);not null;index;column:owner_id"`
	Name        string  `gorm:"type:varchar(200);not null;index"`
	Description string  `gorm:"type:text"`
	Category    string  `gorm:"type:varchar(100);index"`
	Price       float64 `gorm:"type:decimal(15,2);not null;default:0"`
	// Discount is the default line discount percent applied when the
	// product is placed on a quote
	Discount float64 `gorm:"type:decimal(5,2);not null;default:0"`
	Unit     string  `gorm:"type:varchar(50)"`
	IsActive bool    `gorm:"not null;default:true;column:is_active"`
}

// QuoteTemplate holds the document body a quote is rendered from.
// Content is free text with {{variable}} placeholders drawn from the
// closed catalog in the render package.
type QuoteTemplate struct {
	BaseModel
	OwnerID     string       `gorm:"type:varchar(100);not null;index;column:owner_id"`
	Name        string       `gorm:"type:varchar(200);not null"`
	Type        TemplateType `gorm:"type:varchar(50);not null;index"`
	Description string       `gorm:"type:varchar(500)"`
	Content     string       `gorm:"type:text;not null"`
	IsActive    bool         `gorm:"not null;default:true;column:is_active"`
	IsDefault   bool         `gorm:"not null;default:false;column:is_default"`
}

// Quote represents a priced offer issued to a customer
type Quote struct {
	BaseModel
	OwnerID      string         `gorm:"type:varchar(100);not null;index;column:owner_id"`
	QuoteNumber  string         `gorm:"type:varchar(50);not null;uniqueIndex;column:quote_number"`
	CustomerID   uuid.UUID      `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer     *Customer      `gorm:"foreignKey:CustomerID"`
	TemplateID   uuid.UUID      `gorm:"type:uuid;not null;index;column:template_id"`
	Template     *QuoteTemplate `gorm:"foreignKey:TemplateID"`
	Type         TemplateType   `gorm:"type:varchar(50);not null"`
	Status       QuoteStatus    `gorm:"type:varchar(50);not null;default:'draft';index"`
	Title        string         `gorm:"type:varchar(200)"`
	Content      string         `gorm:"type:text;not null"` // template content snapshot taken at creation
	TotalAmount  float64        `gorm:"type:decimal(15,2);not null;default:0;column:total_amount"`
	Discount     float64        `gorm:"type:decimal(15,2);not null;default:0"`
	ValidUntil   time.Time      `gorm:"not null;column:valid_until"`
	PublicToken  *string        `gorm:"type:varchar(64);uniqueIndex;column:public_token"` // NULL until a link is issued
	SentAt       *time.Time     `gorm:"column:sent_at"`
	Signature    string         `gorm:"type:text"` // data-URL image captured at signing
	SignedAt     *time.Time     `gorm:"column:signed_at"`
	SignerName   string         `gorm:"type:varchar(200);column:signer_name"`
	Items        []QuoteItem    `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
}

// IsExpired reports whether the quote's validity window has passed.
// Expiry is derived at read time, applies regardless of status, and is
// never written back as a status.
func (q *Quote) IsExpired(now time.Time) bool {
	return now.After(q.ValidUntil)
}

// IsSigned reports whether the quote carries a customer signature
func (q *Quote) IsSigned() bool {
	return q.Status == QuoteStatusSigned
}

// QuoteItem represents a line item on a quote
type QuoteItem struct {
	BaseModel
	QuoteID     uuid.UUID  `gorm:"type:uuid;not null;index;column:quote_id"`
	Quote       *Quote     `gorm:"foreignKey:QuoteID"`
	ProductID   *uuid.UUID `gorm:"type:uuid;index;column:product_id"`
	Product     *Product   `gorm:"foreignKey:ProductID"`
	Name        string     `gorm:"type:varchar(200);not null"`
	Description string     `gorm:"type:text"`
	Quantity    float64    `gorm:"type:decimal(10,2);not null;default:1"`
	UnitPrice   float64    `gorm:"type:decimal(15,2);not null;column:unit_price"`
	Discount    float64    `gorm:"type:decimal(5,2);not null;default:0"` // percent
	Position    int        `gorm:"not null;default:0"`
}

// LineTotal returns quantity times unit price, after the line's discount
func (qi *QuoteItem) LineTotal() float64 {
	return qi.Quantity * qi.UnitPrice * (1 - qi.Discount/100)
}

// QuoteSequence allocates sequential quote numbers per owner
type QuoteSequence struct {
	OwnerID   string    `gorm:"type:varchar(100);primaryKey;column:owner_id"`
	LastValue int64     `gorm:"not null;default:0;column:last_value"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// AuditAction represents the type of audit action
type AuditAction string

const (
	AuditActionCreate        AuditAction = "create"
	AuditActionUpdate        AuditAction = "update"
	AuditActionDelete        AuditAction = "delete"
	AuditActionStatusChange  AuditAction = "status_change"
	AuditActionLinkIssued    AuditAction = "link_issued"
	AuditActionEmailVerified AuditAction = "email_verified"
	AuditActionSigned        AuditAction = "signed"
	AuditActionViewed        AuditAction = "viewed"
)

// AuditLog represents an audit trail entry
type AuditLog struct {
	ID          uuid.UUID   `gorm:"type:uuid;primary_key"`
	UserID      string      `gorm:"type:varchar(100);column:user_id"`
	UserEmail   string      `gorm:"type:varchar(255);column:user_email"`
	Action      AuditAction `gorm:"type:varchar(50);not null"`
	EntityType  string      `gorm:"type:varchar(50);not null;column:entity_type"`
	EntityID    *uuid.UUID  `gorm:"type:uuid;column:entity_id"`
	EntityName  string      `gorm:"type:varchar(200);column:entity_name"`
	Detail      string      `gorm:"type:text"`
	IPAddress   string      `gorm:"type:varchar(64);column:ip_address"`
	UserAgent   string      `gorm:"type:text;column:user_agent"`
	RequestID   string      `gorm:"type:varchar(100);column:request_id"`
	PerformedAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP;column:performed_at"`
	CreatedAt   time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the entry ID on insert
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// User mirrors an identity-provider account that owns quoting data
type User struct {
	ID          string         `gorm:"type:varchar(100);primaryKey" json:"id"`
	Email       string         `gorm:"type:varchar(255);not null;unique" json:"email"`
	DisplayName string         `gorm:"type:varchar(200);not null;column:name" json:"displayName"`
	Roles       pq.StringArray `gorm:"type:text[];not null" json:"roles"`
	IsActive    bool           `gorm:"not null;default:true;column:is_active" json:"isActive"`
	LastLoginAt *time.Time     `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}
