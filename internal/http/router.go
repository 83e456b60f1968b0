package httpx

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/routing"
	"github.com/splax/learnhub/internal/service/achievement"
	"github.com/splax/learnhub/internal/service/analytics"
	"github.com/splax/learnhub/internal/service/assessment"
	"github.com/splax/learnhub/internal/service/auth"
	"github.com/splax/learnhub/internal/service/catalog"
	"github.com/splax/learnhub/internal/service/learning"
	"github.com/splax/learnhub/internal/service/token"
	"github.com/splax/learnhub/internal/service/upload"
	"github.com/splax/learnhub/internal/service/user"
	"github.com/splax/learnhub/internal/ws"
)

// Services are the collaborators the handlers dispatch to.
type Services struct {
	Auth         auth.Service
	Tokens       *token.Service
	Users        user.Service
	Catalog      catalog.Service
	Assessment   assessment.Service
	Learning     learning.Service
	Achievements achievement.Service
	Analytics    analytics.Service
	Uploads      upload.Service
	Hub          *ws.Hub
}

// Options tune the outer HTTP surface.
type Options struct {
	BasePath          string
	Debug             bool
	AllowedOrigins    []string
	MaxBodyBytes      int64
	RateLimitRequests int
	RateLimitWindow   time.Duration
	DBHealth          func(context.Context) error
}

// Router wires HTTP endpoints to services.
type Router struct {
	mux       chi.Router
	logger    *slog.Logger
	svc       Services
	opts      Options
	pipeline  *routing.Pipeline
	validator *Validator
	upgrader  websocket.Upgrader
	limiter   RateLimiter
	origins   map[string]struct{}

	metricsOnce         sync.Once
	metricsInitialized  bool
	requestTotal        *prometheus.CounterVec
	requestLatency      *prometheus.HistogramVec
	rateLimitHits       *prometheus.CounterVec
	notificationStreams *prometheus.GaugeVec
}

const (
	rateWindowDefault  = time.Minute
	rateLimitAuth      = 10
	rateLimitUserWrite = 60
	healthCheckTimeout = 2 * time.Second
	sseHeartbeat       = 25 * time.Second
	wsPingInterval     = 30 * time.Second
)

// NewRouter assembles routes with dependencies. It fails when the route table
// references a handler that does not exist.
func NewRouter(logger *slog.Logger, svc Services, limiter RateLimiter, opts Options) (*Router, error) {
	if svc.Tokens == nil {
		return nil, errors.New("token service required")
	}
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = rateWindowDefault
	}
	r := &Router{
		logger:    logger,
		svc:       svc,
		opts:      opts,
		validator: NewValidator(),
		limiter:   limiter,
		origins:   make(map[string]struct{}, len(opts.AllowedOrigins)),
	}
	r.upgrader = websocket.Upgrader{
		CheckOrigin: func(req *http.Request) bool {
			origin := req.Header.Get("Origin")
			return origin == "" || r.originAllowed(origin)
		},
	}
	for _, origin := range opts.AllowedOrigins {
		r.origins[origin] = struct{}{}
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}

	table, err := routing.NewTable(Routes())
	if err != nil {
		return nil, err
	}
	normalizer := routing.Normalizer{BasePath: opts.BasePath, MaxBodyBytes: opts.MaxBodyBytes}
	gate := routing.NewGate(svc.Tokens, logger)
	pipeline, err := routing.NewPipeline(normalizer, table, gate, r.registry())
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	r.pipeline = pipeline

	r.initMetrics()
	r.register()
	return r, nil
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID, middleware.RealIP, r.audit, r.recoverer, r.cors)
	mux.Method(http.MethodGet, "/metrics", promhttp.Handler())
	if dir := r.svc.Uploads.Dir(); dir != "" {
		prefix := path.Join("/", r.opts.BasePath, "files")
		mux.Handle(prefix+"/*", http.StripPrefix(prefix, noDirListing(http.FileServer(http.Dir(dir)))))
	}
	mux.With(r.rateLimit).HandleFunc("/*", r.serveAPI)
	r.mux = mux
}

// serveAPI runs the routing pipeline and renders any fault it returns.
func (r *Router) serveAPI(w http.ResponseWriter, req *http.Request) {
	match, err := r.pipeline.Serve(w, req)
	if match != nil {
		if setter, ok := w.(annotator); ok {
			setter.SetRoute(match.Route.Pattern)
		}
	}
	if err != nil {
		r.writeFault(w, req, routing.AsFault(err))
	}
}

func (r *Router) handleHealth(w http.ResponseWriter, req *routing.Request) {
	components := make(map[string]any)
	status := "ok"
	if r.opts.DBHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.opts.DBHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{"status": "down"}
			r.logger.Warn("database health check failed", "error", err)
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if status != "ok" {
		writeJSON(w, http.StatusServiceUnavailable, envelope{Message: "Service degraded", Data: payload})
		return
	}
	writeData(w, http.StatusOK, payload)
}

func (r *Router) audit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		route := recorder.route
		if route == "" {
			route = "unmatched"
		}
		actor := "anonymous"
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"route", route,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if reqID := middleware.GetReqID(req.Context()); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		if recorder.identity != nil {
			actor = recorder.identity.Role
			fields = append(fields, "user_id", recorder.identity.ID)
		}
		fields = append(fields, "actor", actor)
		r.recordRequestMetrics(req.Method, route, status, duration)

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status   int
	bytes    int
	route    string
	identity *domain.Identity
}

// annotator receives request details discovered after routing, for the audit log.
type annotator interface {
	SetRoute(pattern string)
	SetIdentity(identity *domain.Identity)
}

func (sr *statusRecorder) SetRoute(pattern string) { sr.route = pattern }

func (sr *statusRecorder) SetIdentity(identity *domain.Identity) { sr.identity = identity }

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		if sr.status == 0 {
			sr.status = http.StatusSwitchingProtocols
		}
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (r *Router) applyRateHeaders(w http.ResponseWriter, limit int, decision rateDecision) {
	if limit <= 0 {
		return
	}
	remaining := limit - decision.count
	if remaining < 0 {
		remaining = 0
	}
	headers := w.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if !decision.windowEnd.IsZero() {
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.windowEnd.Unix(), 10))
	}
}
