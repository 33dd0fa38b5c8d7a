package service

import (
	"context"
	"errors"

	"github.com/hatzaot-app/quotes-api/internal/auth"
)

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidTransition is returned when a status change is not allowed
	// from the quote's current state
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrQuoteNotEditable is returned when modifying a quote past the draft stage
	ErrQuoteNotEditable = errors.New("quote can no longer be edited")

	// ErrQuoteExpired is returned when a public caller reaches a quote whose
	// validity window has passed
	ErrQuoteExpired = errors.New("quote has expired")

	// ErrAlreadySigned is returned when signing a quote that carries a signature
	ErrAlreadySigned = errors.New("quote is already signed")

	// ErrEmptySignature is returned when a sign request carries no signature image
	ErrEmptySignature = errors.New("signature is required")

	// ErrEmailMismatch is returned when public email verification fails
	ErrEmailMismatch = errors.New("email does not match quote customer")

	// ErrNotVerified is returned when a public caller has not completed email verification
	ErrNotVerified = errors.New("email verification required")

	// ErrTemplateTypeMismatch is returned when a quote references a template
	// of a different type than the quote's
	ErrTemplateTypeMismatch = errors.New("template type does not match quote type")

	// ErrTemplateInUse is returned when deleting a template that quotes still reference
	ErrTemplateInUse = errors.New("template is referenced by existing quotes")

	// ErrCompanyNotFound is returned when the owner has no business profile yet
	ErrCompanyNotFound = errors.New("company profile not found")
)

// requireUser extracts the authenticated user from the context. Writes on
// the dashboard surface need an owner to attribute records to.
func requireUser(ctx context.Context) (*auth.UserContext, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	return userCtx, nil
}
