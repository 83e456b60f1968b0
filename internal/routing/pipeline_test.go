package routing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/splax/learnhub/internal/domain"
)

type authenticatorStub struct {
	identities map[string]domain.Identity
	calls      int
}

func (a *authenticatorStub) ExtractBearer(header http.Header) (string, bool) {
	parts := strings.Fields(header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func (a *authenticatorStub) AuthenticateAccess(_ context.Context, token string) (domain.Identity, error) {
	a.calls++
	identity, ok := a.identities[token]
	if !ok {
		return domain.Identity{}, errors.New("bad token")
	}
	return identity, nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type pipelineFixture struct {
	pipeline *Pipeline
	auth     *authenticatorStub
	calls    map[HandlerRef]int
	last     *Request
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	f := &pipelineFixture{
		auth: &authenticatorStub{identities: map[string]domain.Identity{
			"student-token":    {ID: 7, Email: "s@example.com", Role: domain.RoleStudent},
			"instructor-token": {ID: 8, Email: "i@example.com", Role: domain.RoleInstructor},
		}},
		calls: make(map[HandlerRef]int),
	}
	routes := testRoutes()
	registry := Registry{}
	for _, route := range routes {
		ref := route.Handler
		registry[ref] = func(w http.ResponseWriter, req *Request) {
			f.calls[ref]++
			f.last = req
			w.WriteHeader(http.StatusNoContent)
		}
	}
	p, err := NewPipeline(Normalizer{}, MustTable(routes), NewGate(f.auth, newLogger()), registry)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	f.pipeline = p
	return f
}

func (f *pipelineFixture) serve(method, path, token string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	_, err := f.pipeline.Serve(rec, req)
	return rec, err
}

func faultOf(t *testing.T, err error) *Fault {
	t.Helper()
	var fault *Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected fault, got %v", err)
	}
	return fault
}

func TestPipelineRejectsMissingTokenWithoutCallingHandler(t *testing.T) {
	f := newPipelineFixture(t)
	_, err := f.serve(http.MethodGet, "/api/achievements", "")
	fault := faultOf(t, err)
	if fault.Status != http.StatusUnauthorized || fault.Message != MessageUnauthenticated {
		t.Fatalf("unexpected fault %+v", fault)
	}
	if total := f.calls["achievements@index"]; total != 0 {
		t.Fatalf("handler must not run, ran %d times", total)
	}
	if f.auth.calls != 0 {
		t.Fatalf("no token means no verification attempt")
	}
}

func TestPipelineRejectsInvalidToken(t *testing.T) {
	f := newPipelineFixture(t)
	_, err := f.serve(http.MethodGet, "/api/achievements", "forged")
	if fault := faultOf(t, err); fault.Kind != FaultAuthentication || fault.Message != MessageUnauthenticated {
		t.Fatalf("unexpected fault %+v", fault)
	}
}

func TestPipelineRoleGate(t *testing.T) {
	f := newPipelineFixture(t)
	_, err := f.serve(http.MethodGet, "/api/grading/analytics/42", "student-token")
	fault := faultOf(t, err)
	if fault.Status != http.StatusForbidden || fault.Message != MessageForbidden {
		t.Fatalf("unexpected fault %+v", fault)
	}
	if f.calls["grading@quizAnalytics"] != 0 {
		t.Fatalf("handler must not run for a forbidden role")
	}

	rec, err := f.serve(http.MethodGet, "/api/grading/analytics/42", "instructor-token")
	if err != nil {
		t.Fatalf("instructor should pass: %v", err)
	}
	if rec.Code != http.StatusNoContent || f.calls["grading@quizAnalytics"] != 1 {
		t.Fatalf("handler should run once, code=%d calls=%d", rec.Code, f.calls["grading@quizAnalytics"])
	}
	if f.last.Identity == nil || f.last.Identity.ID != 8 {
		t.Fatalf("identity not passed to handler: %+v", f.last.Identity)
	}
	if f.last.Param("quizId") != "42" {
		t.Fatalf("params not passed to handler: %v", f.last.Params)
	}
}

func TestPipelinePublicRouteHasNoIdentity(t *testing.T) {
	f := newPipelineFixture(t)
	if _, err := f.serve(http.MethodPost, "/api/auth/login", "student-token"); err != nil {
		t.Fatalf("serve: %v", err)
	}
	if f.last.Identity != nil {
		t.Fatalf("public routes do not resolve identity")
	}
	if f.auth.calls != 0 {
		t.Fatalf("public routes do not verify tokens")
	}
}

func TestPipelineUnmatchedRoute(t *testing.T) {
	f := newPipelineFixture(t)
	_, err := f.serve(http.MethodPatch, "/no/such/route", "")
	fault := faultOf(t, err)
	if fault.Kind != FaultRouting || fault.Status != http.StatusNotFound || fault.Message != MessageNotFound {
		t.Fatalf("unexpected fault %+v", fault)
	}
}

func TestPipelineBodyFaultBeforeRouting(t *testing.T) {
	f := newPipelineFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/no/such/route", strings.NewReader(`{oops`))
	req.Header.Set("Content-Type", "application/json")
	_, err := f.pipeline.Serve(httptest.NewRecorder(), req)
	if fault := faultOf(t, err); fault.Kind != FaultBodyParse {
		t.Fatalf("body must be parsed before routing, got %+v", fault)
	}
}

func TestNewPipelineRejectsIncompleteRegistry(t *testing.T) {
	_, err := NewPipeline(Normalizer{}, MustTable(testRoutes()), NewGate(&authenticatorStub{}, nil), Registry{})
	if err == nil || !strings.Contains(err.Error(), "achievements@categories") {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}

func TestDispatchMissingHandlerIsConfigurationFault(t *testing.T) {
	d := NewDispatcher(Registry{})
	match := MatchedRoute{Route: Public(GET, "/health", "health@check")}
	err := d.Dispatch(httptest.NewRecorder(), match, &Request{})
	fault := faultOf(t, err)
	if fault.Kind != FaultConfiguration || fault.Status != http.StatusInternalServerError || fault.Message != MessageInternal {
		t.Fatalf("unexpected fault %+v", fault)
	}
}

func TestAsFault(t *testing.T) {
	if AsFault(errors.New("boom")).Kind != FaultUnhandled {
		t.Fatalf("plain errors become unhandled faults")
	}
	original := NewFault(FaultAuthorization, nil)
	if AsFault(original) != original {
		t.Fatalf("faults pass through unchanged")
	}
	if NewFault(FaultRouting, nil).Err == nil {
		t.Fatalf("faults always carry an error")
	}
}
