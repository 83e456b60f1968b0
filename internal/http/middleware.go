package httpx

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/splax/learnhub/internal/routing"
)

// recoverer turns a panic into the generic 500 envelope.
func (r *Router) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			r.logger.Error("panic recovered", "panic", rec, "path", req.URL.Path, "stack", string(debug.Stack()))
			fault := routing.NewFault(routing.FaultUnhandled, fmt.Errorf("panic: %v", rec))
			r.writeFault(w, nil, fault)
		}()
		next.ServeHTTP(w, req)
	})
}

// cors answers preflight requests and decorates every response. OPTIONS never
// reaches the pipeline.
func (r *Router) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		headers := w.Header()
		if origin := req.Header.Get("Origin"); origin != "" && r.originAllowed(origin) {
			headers.Set("Access-Control-Allow-Origin", origin)
			headers.Set("Access-Control-Allow-Credentials", "true")
			headers.Add("Vary", "Origin")
		}
		headers.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		headers.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, X-Request-ID")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (r *Router) originAllowed(origin string) bool {
	origin = strings.TrimRight(origin, "/")
	if _, ok := r.origins[origin]; ok {
		return true
	}
	return r.opts.Debug && (strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1"))
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "" || strings.HasSuffix(req.URL.Path, "/") {
			http.NotFound(w, req)
			return
		}
		next.ServeHTTP(w, req)
	})
}
