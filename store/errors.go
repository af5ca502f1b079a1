package store

import "errors"

type Kind int

const (
	KindNotFound Kind = iota + 1
	KindInactive
	KindDuplicateName
	KindValidation
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindInactive:
		return "Inactive"
	case KindDuplicateName:
		return "DuplicateName"
	case KindValidation:
		return "ValidationError"
	case KindConflict:
		return "Conflict"
	}
	return "Unknown"
}

// Error is returned by every failing store operation. A failed operation
// never leaves a partial mutation behind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Kind, and on Message too when the target carries one, so
// errors.Is(err, ErrValidation) holds for any validation failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrQueueNotFound    = &Error{Kind: KindNotFound, Message: "Queue not found"}
	ErrCustomerNotFound = &Error{Kind: KindNotFound, Message: "Customer not found"}
	ErrQueueInactive    = &Error{Kind: KindInactive, Message: "Queue is not active"}
	ErrDuplicateName    = &Error{Kind: KindDuplicateName, Message: "Customer already in queue"}
	ErrQueueExists      = &Error{Kind: KindConflict, Message: "Queue already exists"}
	ErrValidation       = &Error{Kind: KindValidation}
)

func validationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// KindOf reports the Kind of a store error, or 0 for anything else.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
