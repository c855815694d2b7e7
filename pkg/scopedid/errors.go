package scopedid

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrInvalidSequenceNumber = errors.New("invalid sequence number")
	ErrExhaustedNamespace    = errors.New("namespace exhausted")
	ErrMalformedIdentifier   = errors.New("malformed scoped identifier")
)

// InvalidSequenceNumberError is returned by Encode when the requested
// number lies outside [MinSequence, MaxSequence].
type InvalidSequenceNumberError struct {
	Kind      Kind
	Namespace Prefix
	Value     int64
	Min       int64
	Max       int64
}

func (e *InvalidSequenceNumberError) Error() string {
	return fmt.Sprintf("%s number %d in namespace %s must be between %d and %d",
		e.Kind, e.Value, e.Namespace, e.Min, e.Max)
}

func (e *InvalidSequenceNumberError) Unwrap() error {
	return ErrInvalidSequenceNumber
}

// ExhaustedNamespaceError is returned by an Allocator once every number
// in range has been issued for an (organization, kind) pair.
type ExhaustedNamespaceError struct {
	Kind         Kind
	Organization uuid.UUID
}

func (e *ExhaustedNamespaceError) Error() string {
	return fmt.Sprintf("no %s numbers left for organization %s (max %d)",
		e.Kind, e.Organization, MaxSequence)
}

func (e *ExhaustedNamespaceError) Unwrap() error {
	return ErrExhaustedNamespace
}

// MalformedIdentifierError is returned by Decode for identifiers that
// were not produced by Encode for the codec's kind.
type MalformedIdentifierError struct {
	Kind   Kind
	ID     string
	Reason string
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("malformed %s id %q: %s", e.Kind, e.ID, e.Reason)
}

func (e *MalformedIdentifierError) Unwrap() error {
	return ErrMalformedIdentifier
}

// IsInvalidSequenceNumber reports whether err is a range violation.
func IsInvalidSequenceNumber(err error) bool {
	return errors.Is(err, ErrInvalidSequenceNumber)
}

// IsExhausted reports whether err means a namespace has no numbers left.
func IsExhausted(err error) bool {
	return errors.Is(err, ErrExhaustedNamespace)
}

// IsMalformed reports whether err is a decode failure.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedIdentifier)
}
