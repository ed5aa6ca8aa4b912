package types

import "fmt"

// Kind classifies a failure so callers can branch on the category
// without parsing the message.
type Kind string

// Failure categories surfaced by every operation.
const (
	KindNotFound          Kind = "not_found"
	KindValidation        Kind = "validation"
	KindConflict          Kind = "conflict"
	KindDependentChildren Kind = "dependent_children"
	KindStorage           Kind = "storage"
	KindInvalidState      Kind = "invalid_state"
)

// Error is the structured failure returned by all operations: a kind
// plus a human-readable message. It satisfies errors.Is against the
// kind sentinels below, so callers can write
// errors.Is(err, types.ErrNotFound).
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is reports whether target carries the same kind. Messages are not
// compared; sentinels match any error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Kind sentinels for use with errors.Is.
var (
	ErrNotFound          = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrValidation        = &Error{Kind: KindValidation, Msg: "validation failed"}
	ErrConflict          = &Error{Kind: KindConflict, Msg: "conflict"}
	ErrDependentChildren = &Error{Kind: KindDependentChildren, Msg: "dependent children exist"}
	ErrStorage           = &Error{Kind: KindStorage, Msg: "storage failure"}
	ErrInvalidState      = &Error{Kind: KindInvalidState, Msg: "invalid state"}
)

// NotFoundf builds a KindNotFound error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Validationf builds a KindValidation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Conflictf builds a KindConflict error with a formatted message.
func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// DependentChildrenf builds a KindDependentChildren error.
func DependentChildrenf(format string, args ...any) *Error {
	return &Error{Kind: KindDependentChildren, Msg: fmt.Sprintf(format, args...)}
}

// Storagef builds a KindStorage error with a formatted message.
func Storagef(format string, args ...any) *Error {
	return &Error{Kind: KindStorage, Msg: fmt.Sprintf(format, args...)}
}

// InvalidStatef builds a KindInvalidState error with a formatted message.
func InvalidStatef(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Msg: fmt.Sprintf(format, args...)}
}
