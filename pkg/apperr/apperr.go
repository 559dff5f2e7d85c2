// Package apperr holds the error taxonomy shared by repositories, services
// and handlers. Handlers map a Kind to an HTTP status.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthenticated
	KindForbidden
)

var (
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "authentication credentials were not provided"}
	ErrForbidden       = &Error{Kind: KindForbidden, Message: "you do not have permission to perform this action"}
)

type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNotFound)
// holds for every not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Invalid(field, msg string) *Error {
	return &Error{Kind: KindValidation, Message: "invalid request", Fields: map[string]string{field: msg}}
}

func InvalidFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "invalid request", Fields: fields}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
