package ledger

import "errors"

// Kind classifies a ledger failure.
type Kind int

const (
	KindInternal Kind = iota
	KindAuthorization
	KindPrecondition
	KindResource
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindPrecondition:
		return "precondition"
	case KindResource:
		return "resource"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Error is a failed operation with a stable, user visible reason.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

var (
	ErrUnauthorized  = &Error{KindAuthorization, "unauthorized"}
	ErrNotTokenOwner = &Error{KindAuthorization, "Caller is not token owner"}

	ErrDistributionDone  = &Error{KindPrecondition, "Initial distribution already done"}
	ErrCourseExists      = &Error{KindPrecondition, "Course already exists"}
	ErrCourseNotFound    = &Error{KindPrecondition, "Course not found or inactive"}
	ErrAlreadyPurchased  = &Error{KindPrecondition, "Already purchased"}
	ErrNotPurchased      = &Error{KindPrecondition, "Course not purchased"}
	ErrAlreadyCompleted  = &Error{KindPrecondition, "Course already completed"}
	ErrNotConfirmed      = &Error{KindPrecondition, "Completion not confirmed"}
	ErrOracleUnavailable = &Error{KindPrecondition, "Completion oracle not configured"}
	ErrReentrantCall     = &Error{KindPrecondition, "Reentrant call"}

	ErrExceedsMaxSupply    = &Error{KindResource, "Would exceed max supply"}
	ErrInsufficientBalance = &Error{KindResource, "Insufficient balance"}
	ErrInsufficientAllow   = &Error{KindResource, "Insufficient allowance"}
	ErrInsufficientReserve = &Error{KindResource, "Insufficient reserve"}
	ErrInsufficientNative  = &Error{KindResource, "Insufficient native balance"}
	ErrArithmeticOverflow  = &Error{KindResource, "Arithmetic overflow"}

	ErrInvalidAddress      = &Error{KindValidation, "Invalid address"}
	ErrInvalidHolder       = &Error{KindValidation, "Invalid holder address"}
	ErrInvalidAmount       = &Error{KindValidation, "Invalid amount"}
	ErrInvalidCourse       = &Error{KindValidation, "Invalid course id"}
	ErrEmptyBatch          = &Error{KindValidation, "Empty holder list"}
	ErrCertificateNotFound = &Error{KindValidation, "Certificate does not exist"}
)

// KindOf reports the kind of a ledger error, or KindInternal for anything else.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindInternal
}

// Reason returns the stable reason for ledger errors and the raw message otherwise.
func Reason(err error) string {
	var le *Error
	if errors.As(err, &le) {
		return le.Reason
	}
	return err.Error()
}
