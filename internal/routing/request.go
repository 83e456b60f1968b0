package routing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/splax/learnhub/internal/domain"
)

// ErrEmptyBody is returned by Bind when the request carried no JSON body.
var ErrEmptyBody = errors.New("request body is empty")

// Request is the explicit per-request context threaded from the normalizer
// through matching, the auth gate and into the handler.
type Request struct {
	Method   Method
	Path     string
	Segments []string
	Header   http.Header
	Query    url.Values
	// Body is the decoded JSON document, nil when the request had none.
	Body    any
	RawBody []byte
	Params  Params
	// Identity is nil on public routes.
	Identity *domain.Identity
	HTTP     *http.Request
}

// Context returns the underlying request context.
func (r *Request) Context() context.Context {
	if r.HTTP == nil {
		return context.Background()
	}
	return r.HTTP.Context()
}

// Bind decodes the JSON body into dst.
func (r *Request) Bind(dst any) error {
	if len(r.RawBody) == 0 {
		return ErrEmptyBody
	}
	return json.Unmarshal(r.RawBody, dst)
}

// Param returns a path parameter or "".
func (r *Request) Param(name string) string {
	v, _ := r.Params.Get(name)
	return v
}

// ParamID parses a positive integer path parameter.
func (r *Request) ParamID(name string) (int64, error) {
	raw, ok := r.Params.Get(name)
	if !ok {
		return 0, errors.Errorf("missing path parameter %q", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// QueryInt reads an integer query parameter, falling back to def when absent or malformed.
func (r *Request) QueryInt(name string, def int) int {
	raw := r.Query.Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// CallerID returns the authenticated caller's id, or 0 on public routes.
func (r *Request) CallerID() int64 {
	if r.Identity == nil {
		return 0
	}
	return r.Identity.ID
}
