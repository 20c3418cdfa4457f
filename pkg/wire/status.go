package wire

import "fmt"

// StatusCode is the result code of a pending request.
type StatusCode uint8

const (
	// StatusSuccess indicates the request completed successfully.
	StatusSuccess StatusCode = 0

	// StatusError indicates an unspecified failure.
	StatusError StatusCode = 1

	// StatusInterrupted indicates the request was interrupted before completion.
	StatusInterrupted StatusCode = 2

	// StatusTimeout indicates the service gave up waiting.
	StatusTimeout StatusCode = 3

	// StatusCanceled indicates the request was canceled.
	StatusCanceled StatusCode = 4

	// StatusAPINotConnected indicates the request was issued on a client that
	// is not connected.
	StatusAPINotConnected StatusCode = 5

	// StatusNetworkError indicates the service could not be reached.
	StatusNetworkError StatusCode = 6

	// StatusAccessDenied indicates missing permissions or credentials.
	StatusAccessDenied StatusCode = 7

	// StatusTooManyFences indicates the per-credential fence limit was reached.
	StatusTooManyFences StatusCode = 8

	// StatusUnknownFence indicates a remove for a name that is not registered.
	StatusUnknownFence StatusCode = 9

	// StatusInvalidRequest indicates a malformed request.
	StatusInvalidRequest StatusCode = 10
)

// String returns the status code name.
func (c StatusCode) String() string {
	switch c {
	case StatusSuccess:
		return "SUCCESS"
	case StatusError:
		return "ERROR"
	case StatusInterrupted:
		return "INTERRUPTED"
	case StatusTimeout:
		return "TIMEOUT"
	case StatusCanceled:
		return "CANCELED"
	case StatusAPINotConnected:
		return "API_NOT_CONNECTED"
	case StatusNetworkError:
		return "NETWORK_ERROR"
	case StatusAccessDenied:
		return "ACCESS_DENIED"
	case StatusTooManyFences:
		return "TOO_MANY_FENCES"
	case StatusUnknownFence:
		return "UNKNOWN_FENCE"
	case StatusInvalidRequest:
		return "INVALID_REQUEST"
	default:
		return "UNKNOWN"
	}
}

// Status is the outcome attached to every resolved pending result.
type Status struct {
	Code    StatusCode `cbor:"1,keyasint"`
	Message string     `cbor:"2,keyasint,omitempty"`
}

// OK is the success status.
var OK = Status{Code: StatusSuccess}

// NewStatus creates a status with a formatted message.
func NewStatus(code StatusCode, format string, args ...any) Status {
	return Status{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s.Code == StatusSuccess
}

// Description returns the message, falling back to the code name.
func (s Status) Description() string {
	if s.Message != "" {
		return s.Message
	}
	return s.Code.String()
}

// String returns "CODE" or "CODE: message".
func (s Status) String() string {
	if s.Message == "" {
		return s.Code.String()
	}
	return s.Code.String() + ": " + s.Message
}
