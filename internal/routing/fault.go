package routing

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// FaultKind classifies a pipeline failure.
type FaultKind int

const (
	FaultRouting FaultKind = iota + 1
	FaultAuthentication
	FaultAuthorization
	FaultBodyParse
	FaultConfiguration
	FaultUnhandled
)

func (k FaultKind) String() string {
	switch k {
	case FaultRouting:
		return "routing"
	case FaultAuthentication:
		return "authentication"
	case FaultAuthorization:
		return "authorization"
	case FaultBodyParse:
		return "body_parse"
	case FaultConfiguration:
		return "configuration"
	case FaultUnhandled:
		return "unhandled"
	}
	return "unknown"
}

// Client-facing messages. Authentication failures share one message so the
// response never reveals which check rejected the token.
const (
	MessageNotFound          = "Endpoint not found"
	MessageUnauthenticated   = "Authentication required"
	MessageForbidden         = "Insufficient permissions"
	MessageInternal          = "Internal server error"
	messageBodyParsePrefix   = "Invalid JSON body: "
	messageBodyTooLargeError = "request body exceeds limit"
)

// Fault terminates the pipeline. Status and Message are what the client sees;
// Err carries the detail (with a stack) for logs and debug output.
type Fault struct {
	Kind    FaultKind
	Status  int
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s fault: %s", f.Kind, f.Message)
	}
	return fmt.Sprintf("%s fault: %v", f.Kind, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// NewFault builds a fault of kind with the standard status and message.
// A nil cause is replaced by a stack-carrying error naming the kind.
func NewFault(kind FaultKind, cause error) *Fault {
	if cause == nil {
		cause = errors.Errorf("%s fault", kind)
	} else {
		cause = errors.WithStack(cause)
	}
	f := &Fault{Kind: kind, Err: cause}
	switch kind {
	case FaultRouting:
		f.Status, f.Message = http.StatusNotFound, MessageNotFound
	case FaultAuthentication:
		f.Status, f.Message = http.StatusUnauthorized, MessageUnauthenticated
	case FaultAuthorization:
		f.Status, f.Message = http.StatusForbidden, MessageForbidden
	case FaultBodyParse:
		f.Status, f.Message = http.StatusBadRequest, messageBodyParsePrefix+errors.Cause(cause).Error()
	default:
		f.Status, f.Message = http.StatusInternalServerError, MessageInternal
	}
	return f
}

// AsFault unwraps err into a Fault. Any other error becomes an unhandled fault.
func AsFault(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return NewFault(FaultUnhandled, err)
}
