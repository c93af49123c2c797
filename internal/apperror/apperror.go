package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a workflow failure
type Kind string

const (
	KindNotReady         Kind = "not_ready"
	KindMissingComment   Kind = "missing_comment"
	KindStaleReview      Kind = "stale_review"
	KindForbidden        Kind = "forbidden"
	KindPositionConflict Kind = "position_conflict"
	KindNotFound         Kind = "not_found"
	KindInvalid          Kind = "invalid"
)

// Error is the typed failure returned across the workflow boundary
type Error struct {
	Kind    Kind
	Field   string
	OwnerID uint
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Field)
	}
	return e.Message
}

// WithOwner returns a copy of the error tagged with the owning unit
func (e *Error) WithOwner(ownerID uint) *Error {
	out := *e
	out.OwnerID = ownerID
	return &out
}

func NotReady(field, msg string) error {
	return &Error{Kind: KindNotReady, Field: field, Message: msg}
}

func MissingComment(msg string) error {
	return &Error{Kind: KindMissingComment, Field: "comment", Message: msg}
}

func StaleReview(msg string) error { return &Error{Kind: KindStaleReview, Message: msg} }
func Forbidden(msg string) error   { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) error    { return &Error{Kind: KindNotFound, Message: msg} }

func PositionConflict(msg string) error {
	return &Error{Kind: KindPositionConflict, Field: "position", Message: msg}
}

func Invalid(field, msg string) error {
	return &Error{Kind: KindInvalid, Field: field, Message: msg}
}

// As extracts an *Error from the chain
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}

// WithOwner tags err with the owning unit if it is an *Error without one
func WithOwner(err error, ownerID uint) error {
	ae, ok := As(err)
	if !ok || ae.OwnerID != 0 {
		return err
	}
	return ae.WithOwner(ownerID)
}
