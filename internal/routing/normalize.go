package routing

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// apiPrefix is stripped after the deployment base path.
const apiPrefix = "/api"

// DefaultMaxBodyBytes caps JSON bodies when the normalizer has no limit configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// Normalizer turns an *http.Request into a Request ready for matching.
type Normalizer struct {
	// BasePath is the sub-path the API is mounted under, e.g. "/learnhub". Empty for domain root.
	BasePath string
	// MaxBodyBytes caps parsed JSON bodies.
	MaxBodyBytes int64
}

// Normalize strips prefixes, splits the path and parses JSON bodies for
// body-bearing methods. Body errors are returned as FaultBodyParse before any
// routing happens.
func (n Normalizer) Normalize(r *http.Request) (*Request, error) {
	path := NormalizePath(r.URL.Path, n.BasePath)
	req := &Request{
		Method:   Method(r.Method),
		Path:     path,
		Segments: Segments(path),
		Header:   r.Header,
		Query:    r.URL.Query(),
		HTTP:     r,
	}
	if !req.Method.HasBody() || !isJSON(r.Header.Get("Content-Type")) || r.Body == nil {
		return req, nil
	}

	limit := n.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, NewFault(FaultBodyParse, err)
	}
	if int64(len(raw)) > limit {
		return nil, NewFault(FaultBodyParse, errors.New(messageBodyTooLargeError))
	}
	// Handlers that read r.Body directly still see the original bytes.
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if len(bytes.TrimSpace(raw)) == 0 {
		return req, nil
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, NewFault(FaultBodyParse, err)
	}
	req.RawBody = raw
	req.Body = body
	return req, nil
}

// NormalizePath removes the base path and the /api prefix, trims trailing
// slashes and maps the empty path to "/".
func NormalizePath(raw, basePath string) string {
	path := raw
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	basePath = strings.TrimRight(basePath, "/")
	if basePath != "" {
		path = stripPrefix(path, basePath)
	}
	path = stripPrefix(path, apiPrefix)
	path = strings.TrimRight(path, "/")
	if path == "" {
		return "/"
	}
	return path
}

// stripPrefix removes prefix only on a segment boundary, so "/apiary" keeps its name.
func stripPrefix(path, prefix string) string {
	if !strings.HasPrefix(path, prefix) {
		return path
	}
	rest := path[len(prefix):]
	if rest == "" || rest[0] == '/' {
		return rest
	}
	return path
}

// Segments splits a normalized path into its non-empty segments.
func Segments(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
