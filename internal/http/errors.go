package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/repository"
	"github.com/splax/learnhub/internal/routing"
	"github.com/splax/learnhub/internal/service/token"
	"github.com/splax/learnhub/internal/service/upload"
)

const (
	messageValidation      = "Validation failed"
	messageBodyRequired    = "Request body required"
	messageNotFound        = "Resource not found"
	messageConflict        = "Resource already exists"
	messageInvalidToken    = "Invalid or expired token"
	messageTooLarge        = "File too large"
	messageTooManyRequests = "Too many requests"
	messageInvalidBody     = "Invalid JSON body: "
	messageBadPathParam    = "Invalid path parameter"
)

// fail maps a service error onto a status and writes the error envelope.
// Unexpected errors are logged and hidden behind the generic message.
func (r *Router) fail(w http.ResponseWriter, req *routing.Request, err error) {
	var (
		validation validator.ValidationErrors
		inputErr   *domain.InputError
		syntaxErr  *json.SyntaxError
		typeErr    *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &validation):
		writeErrorDetails(w, http.StatusUnprocessableEntity, messageValidation, r.validator.Fields(validation), nil)
	case errors.As(err, &inputErr):
		writeError(w, http.StatusBadRequest, inputErr.Message)
	case errors.Is(err, routing.ErrEmptyBody):
		writeError(w, http.StatusBadRequest, messageBodyRequired)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		writeError(w, http.StatusBadRequest, messageInvalidBody+err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, messageNotFound)
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, messageConflict)
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrAccountInactive):
		writeError(w, http.StatusForbidden, capitalize(err))
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, capitalize(err))
	case isTokenError(err):
		writeError(w, http.StatusUnauthorized, messageInvalidToken)
	case errors.Is(err, upload.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, messageTooLarge)
	default:
		r.writeFault(w, req.HTTP, routing.NewFault(routing.FaultUnhandled, err))
	}
}

func isTokenError(err error) bool {
	for _, target := range []error{
		token.ErrTokenExpired,
		token.ErrTokenMalformed,
		token.ErrTokenSignature,
		token.ErrTokenIssuer,
		token.ErrTokenType,
		token.ErrTokenRevoked,
		token.ErrAccountInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func capitalize(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	if c := msg[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + msg[1:]
	}
	return msg
}

// writeFault writes the envelope of a pipeline fault. Server faults are logged
// and, when debugging is enabled, expose their cause.
func (r *Router) writeFault(w http.ResponseWriter, req *http.Request, f *routing.Fault) {
	if f.Status >= http.StatusInternalServerError {
		fields := []any{"kind", f.Kind.String(), "error", f.Err}
		if req != nil {
			fields = append(fields, "method", req.Method, "path", req.URL.Path)
		}
		r.logger.Error("request failed", fields...)
	}
	// Client-side faults keep their fixed envelope even in debug mode, so a 401
	// never reveals which token check failed.
	var debug any
	if r.opts.Debug && f.Status >= http.StatusInternalServerError {
		debug = faultDebug(f)
	}
	writeErrorDetails(w, f.Status, f.Message, nil, debug)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// faultDebug exposes the cause and the innermost recorded stack.
func faultDebug(f *routing.Fault) map[string]any {
	out := map[string]any{"kind": f.Kind.String()}
	if f.Err == nil {
		return out
	}
	out["error"] = f.Err.Error()
	var tracer stackTracer
	for err := error(f.Err); err != nil; err = errors.Unwrap(err) {
		if st, ok := err.(stackTracer); ok {
			tracer = st
		}
	}
	if tracer != nil {
		frames := make([]string, 0, len(tracer.StackTrace()))
		for _, fr := range tracer.StackTrace() {
			frames = append(frames, fmt.Sprintf("%n (%s:%d)", fr, fr, fr))
		}
		out["trace"] = frames
	}
	return out
}
