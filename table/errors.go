package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the failure taxonomy shared by the loader and the pipeline.
type ErrorKind string

const (
	// KindSourceUnavailable: input missing or unreadable. Fatal.
	KindSourceUnavailable ErrorKind = "source_unavailable"

	// KindSchemaMismatch: an expected column is absent. Fatal.
	KindSchemaMismatch ErrorKind = "schema_mismatch"

	// KindMalformedRow: a row does not conform to its layout. Fatal unless
	// the loader runs in lenient mode.
	KindMalformedRow ErrorKind = "malformed_row"

	// KindUnresolvedRegion: an entity has no region lookup entry.
	// Recoverable; the row gets UnknownRegion.
	KindUnresolvedRegion ErrorKind = "unresolved_region"

	// KindEmptyIntersection: panel and snapshot share no entity. Fatal.
	KindEmptyIntersection ErrorKind = "empty_intersection"

	// KindInternal: anything outside the taxonomy.
	KindInternal ErrorKind = "internal"
)

// Error carries the kind plus enough context to name the culprit.
type Error struct {
	Kind   ErrorKind
	Source string // "panel", "snapshot"
	Path   string
	Column string
	Entity string
	Line   int
	Detail string
	Err    error
}

// Sentinels for errors.Is. Matching compares kinds only.
var (
	ErrSourceUnavailable = &Error{Kind: KindSourceUnavailable}
	ErrSchemaMismatch    = &Error{Kind: KindSchemaMismatch}
	ErrMalformedRow      = &Error{Kind: KindMalformedRow}
	ErrUnresolvedRegion  = &Error{Kind: KindUnresolvedRegion}
	ErrEmptyIntersection = &Error{Kind: KindEmptyIntersection}
)

func (e *Error) Error() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString(e.Source)
		if e.Path != "" {
			fmt.Fprintf(&b, " (%s)", e.Path)
		}
		b.WriteString(": ")
	}
	b.WriteString(strings.ReplaceAll(string(e.Kind), "_", " "))
	if e.Line > 0 {
		fmt.Fprintf(&b, ": line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %q", e.Column)
	}
	if e.Entity != "" {
		fmt.Fprintf(&b, ": entity %q", e.Entity)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the kind of err, KindInternal when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsFatal reports whether err must abort the pipeline.
func IsFatal(err error) bool {
	return err != nil && KindOf(err) != KindUnresolvedRegion
}
