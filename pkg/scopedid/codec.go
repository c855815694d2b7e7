// Package scopedid maps per-organization sequence numbers to UUID-shaped
// identifiers and back.
//
// An organization identifier's first four groups form its namespace
// prefix. Scoped identifiers reuse that prefix and carry the sequence
// number in the fifth group as twelve zero-padded decimal digits:
//
//	org:     00000010-0000-0000-0001-000000000010
//	task 1:  00000010-0000-0000-0001-000000000001
//	task 42: 00000010-0000-0000-0001-000000000042
//
// Encoding and decoding are pure string compositions; no lookup is
// needed in either direction. Uniqueness of prefixes across
// organizations is the caller's responsibility.
package scopedid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	MinSequence int64 = 1
	MaxSequence int64 = 999_999_999_999

	// sequenceDigits is the width of the fifth UUID group.
	sequenceDigits = 12
	// prefixLen is the length of "xxxxxxxx-xxxx-xxxx-xxxx".
	prefixLen = 23
)

// Kind names an independent sequence inside an organization namespace.
type Kind string

const (
	KindTask    Kind = "task"
	KindFeature Kind = "feature"
)

// Kinds lists every kind that has its own sequence.
var Kinds = []Kind{KindTask, KindFeature}

// ParseKind converts a textual kind, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown id kind %q", s)
}

// Prefix is the namespace shared by an organization and its scoped ids.
type Prefix string

// PrefixOf returns the first four groups of id.
func PrefixOf(id uuid.UUID) Prefix {
	return Prefix(id.String()[:prefixLen])
}

// Codec encodes and decodes identifiers of a single kind. The zero value
// is not usable; use New or one of the package instances.
type Codec struct {
	kind Kind
}

var (
	Tasks    = New(KindTask)
	Features = New(KindFeature)
)

// New returns a codec for kind.
func New(kind Kind) Codec {
	return Codec{kind: kind}
}

// For returns the package codec for kind.
func For(kind Kind) (Codec, error) {
	switch kind {
	case KindTask:
		return Tasks, nil
	case KindFeature:
		return Features, nil
	default:
		return Codec{}, fmt.Errorf("unknown id kind %q", kind)
	}
}

// Kind returns the kind this codec handles.
func (c Codec) Kind() Kind {
	return c.kind
}

// Encode builds the identifier for sequence number n in the namespace of
// org. The first four groups of org are copied unchanged.
func (c Codec) Encode(org uuid.UUID, n int64) (uuid.UUID, error) {
	prefix := PrefixOf(org)
	if n < MinSequence || n > MaxSequence {
		return uuid.Nil, &InvalidSequenceNumberError{
			Kind:      c.kind,
			Namespace: prefix,
			Value:     n,
			Min:       MinSequence,
			Max:       MaxSequence,
		}
	}

	// Decimal digits are valid hex, so the result always parses.
	return uuid.MustParse(fmt.Sprintf("%s-%012d", prefix, n)), nil
}

// GenerateID is Encode under the name client code uses.
func (c Codec) GenerateID(org uuid.UUID, n int64) (uuid.UUID, error) {
	return c.Encode(org, n)
}

// Decode returns the sequence number carried by id. The fifth group must
// be exactly twelve decimal digits and the value must lie in range;
// anything else is reported as a MalformedIdentifierError.
func (c Codec) Decode(id uuid.UUID) (int64, error) {
	group := id.String()[prefixLen+1:]
	for i := 0; i < len(group); i++ {
		if group[i] < '0' || group[i] > '9' {
			return 0, c.malformed(id, "sequence group is not decimal")
		}
	}

	n, err := strconv.ParseInt(group, 10, 64)
	if err != nil {
		return 0, c.malformed(id, err.Error())
	}
	if n < MinSequence {
		return 0, c.malformed(id, "sequence number is zero")
	}
	return n, nil
}

// ExtractSequenceNumber is Decode under the name client code uses.
func (c Codec) ExtractSequenceNumber(id uuid.UUID) (int64, error) {
	return c.Decode(id)
}

// DecodeLenient parses the fifth group as base 10 without checking that
// id came from Encode. Zero is returned for the nil UUID's group, and
// identifiers whose fifth group contains hex letters fail. Kept for
// callers that stored identifiers before strict decoding existed.
func (c Codec) DecodeLenient(id uuid.UUID) (int64, error) {
	group := id.String()[prefixLen+1:]
	n, err := strconv.ParseInt(group, 10, 64)
	if err != nil {
		return 0, c.malformed(id, "sequence group is not base 10")
	}
	return n, nil
}

// Owns reports whether id is a well-formed identifier of this kind in
// org's namespace.
func (c Codec) Owns(org, id uuid.UUID) bool {
	if PrefixOf(org) != PrefixOf(id) {
		return false
	}
	_, err := c.Decode(id)
	return err == nil
}

// EncodeString is Encode over canonical text forms.
func (c Codec) EncodeString(org string, n int64) (string, error) {
	orgID, err := uuid.Parse(org)
	if err != nil {
		return "", fmt.Errorf("invalid organization id %q: %w", org, err)
	}
	id, err := c.Encode(orgID, n)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// DecodeString is Decode over a textual identifier.
func (c Codec) DecodeString(s string) (int64, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return 0, &MalformedIdentifierError{Kind: c.kind, ID: s, Reason: "not a uuid"}
	}
	return c.Decode(id)
}

func (c Codec) malformed(id uuid.UUID, reason string) error {
	return &MalformedIdentifierError{Kind: c.kind, ID: id.String(), Reason: reason}
}
