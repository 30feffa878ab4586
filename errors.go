package nestsearch

import "github.com/cockroachdb/errors"

// ErrorCode identifies the class of a search failure.
type ErrorCode int

const (
	// ErrCodeInvalidOption is returned when an invalid option is provided.
	ErrCodeInvalidOption ErrorCode = iota + 1000

	// ErrCodeInvalidIndex is returned when a search targets an unknown or empty index name.
	ErrCodeInvalidIndex

	// ErrCodeTimeout is returned when a search operation times out.
	ErrCodeTimeout

	// ErrCodeCanceled is returned when a search operation is canceled.
	ErrCodeCanceled

	// ErrCodeBackendUnavailable is returned when the search backend cannot be reached
	// or rejects the request.
	ErrCodeBackendUnavailable

	// ErrCodeNotFound is returned when a keyed lookup matches no record.
	ErrCodeNotFound
)

// String returns the human-readable string representation of the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeInvalidOption:
		return "invalid option"
	case ErrCodeInvalidIndex:
		return "invalid index"
	case ErrCodeTimeout:
		return "operation timed out"
	case ErrCodeCanceled:
		return "operation canceled"
	case ErrCodeBackendUnavailable:
		return "backend unavailable"
	case ErrCodeNotFound:
		return "not found"
	default:
		return "unknown error"
	}
}

// newErrorWithCode creates a new error with a code and message.
func newErrorWithCode(code ErrorCode, msg string) error {
	err := errors.New(msg)
	return errors.WithSecondaryError(err, errors.Newf("code: %d", int(code)))
}

var (
	// ErrInvalidOption is returned when an invalid option is provided.
	ErrInvalidOption = newErrorWithCode(ErrCodeInvalidOption, "nestsearch: invalid option")

	// ErrInvalidIndex is returned when the index name is empty or unknown.
	ErrInvalidIndex = newErrorWithCode(ErrCodeInvalidIndex, "nestsearch: invalid index")

	// ErrTimeout is returned when a search operation times out.
	ErrTimeout = newErrorWithCode(ErrCodeTimeout, "nestsearch: operation timed out")

	// ErrCanceled is returned when a search operation is canceled.
	ErrCanceled = newErrorWithCode(ErrCodeCanceled, "nestsearch: operation canceled")

	// ErrBackendUnavailable is returned when the fetch itself failed.
	ErrBackendUnavailable = newErrorWithCode(ErrCodeBackendUnavailable, "nestsearch: backend unavailable")

	// ErrNotFound is returned by keyed lookups with zero hits.
	ErrNotFound = newErrorWithCode(ErrCodeNotFound, "nestsearch: not found")
)

// CodeOf returns the code of the first known sentinel found in err's chain, or 0.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, ErrTimeout):
		return ErrCodeTimeout
	case errors.Is(err, ErrCanceled):
		return ErrCodeCanceled
	case errors.Is(err, ErrInvalidOption):
		return ErrCodeInvalidOption
	case errors.Is(err, ErrInvalidIndex):
		return ErrCodeInvalidIndex
	case errors.Is(err, ErrBackendUnavailable):
		return ErrCodeBackendUnavailable
	default:
		return 0
	}
}
