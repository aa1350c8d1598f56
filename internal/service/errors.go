package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Error kinds. Match with errors.Is; use errors.As with *LedgerError for context.
var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrConflict      = errors.New("conflict")
	ErrConsistency   = errors.New("consistency error")
)

var (
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrTenantInactive    = errors.New("tenant is inactive")
	ErrDocumentFinalized = errors.New("document is finalized; only notes and annotations may change")
)

// LedgerError carries the kind plus enough context for the caller to act on it.
type LedgerError struct {
	Kind       error
	Op         string
	TenantID   uuid.UUID
	DocumentID uuid.UUID
	Field      string
	Message    string
	Err        error
}

func (e *LedgerError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Op != "" {
		fmt.Fprintf(&b, " in %s", e.Op)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " [%s]", e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.DocumentID != uuid.Nil {
		fmt.Fprintf(&b, " (document %s)", e.DocumentID)
	}
	return b.String()
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

func (e *LedgerError) Is(target error) bool {
	return target == e.Kind
}

func newLedgerError(kind error, op, field, message string, cause error) *LedgerError {
	return &LedgerError{Kind: kind, Op: op, Field: field, Message: message, Err: cause}
}

func validationError(op, field, message string) *LedgerError {
	return newLedgerError(ErrValidation, op, field, message, nil)
}

func configurationError(op, field, message string) *LedgerError {
	return newLedgerError(ErrConfiguration, op, field, message, nil)
}

func conflictError(op, field, message string, cause error) *LedgerError {
	return newLedgerError(ErrConflict, op, field, message, cause)
}

func consistencyError(op, field, message string) *LedgerError {
	return newLedgerError(ErrConsistency, op, field, message, nil)
}

// withContext fills tenant and document ids on ledger errors that lack them.
func withContext(err error, tenantID, documentID uuid.UUID) error {
	var le *LedgerError
	if errors.As(err, &le) {
		if le.TenantID == uuid.Nil {
			le.TenantID = tenantID
		}
		if le.DocumentID == uuid.Nil {
			le.DocumentID = documentID
		}
	}
	return err
}
