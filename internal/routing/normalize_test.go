package routing

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		raw, base, want string
	}{
		{"/api/courses/", "", "/courses"},
		{"/learnhub/api/courses/5", "/learnhub", "/courses/5"},
		{"/learnhub/api", "/learnhub/", "/"},
		{"/courses", "", "/courses"},
		{"/", "", "/"},
		{"", "", "/"},
		{"/apiary/x", "", "/apiary/x"},
		{"/other/api/x", "/learnhub", "/other/api/x"},
		{"/api/health///", "", "/health"},
	}
	for _, tc := range cases {
		if got := NormalizePath(tc.raw, tc.base); got != tc.want {
			t.Fatalf("NormalizePath(%q, %q) = %q, want %q", tc.raw, tc.base, got, tc.want)
		}
	}
}

func TestSegments(t *testing.T) {
	if got := Segments("/users/5/profile"); !reflect.DeepEqual(got, []string{"users", "5", "profile"}) {
		t.Fatalf("unexpected segments %v", got)
	}
	if got := Segments("/"); len(got) != 0 {
		t.Fatalf("root has no segments, got %v", got)
	}
}

func TestNormalizeParsesJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login?x=1", strings.NewReader(`{"email":"a@b.com"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	got, err := Normalizer{}.Normalize(req)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.Path != "/auth/login" || got.Method != POST || got.Query.Get("x") != "1" {
		t.Fatalf("unexpected request %+v", got)
	}
	body, ok := got.Body.(map[string]any)
	if !ok || body["email"] != "a@b.com" {
		t.Fatalf("unexpected body %#v", got.Body)
	}
	var dst struct {
		Email string `json:"email"`
	}
	if err := got.Bind(&dst); err != nil || dst.Email != "a@b.com" {
		t.Fatalf("bind: %v %+v", err, dst)
	}
}

func TestNormalizeRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(`{"first_name":`))
	req.Header.Set("Content-Type", "application/json")

	_, err := Normalizer{}.Normalize(req)
	var fault *Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected fault, got %v", err)
	}
	if fault.Kind != FaultBodyParse || fault.Status != http.StatusBadRequest {
		t.Fatalf("unexpected fault %+v", fault)
	}
	if !strings.Contains(fault.Message, "unexpected end of JSON input") {
		t.Fatalf("message should carry the parser error, got %q", fault.Message)
	}
}

func TestNormalizeRejectsOversizedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/notes", strings.NewReader(`{"content":"`+strings.Repeat("a", 64)+`"}`))
	req.Header.Set("Content-Type", "application/json")

	_, err := Normalizer{MaxBodyBytes: 16}.Normalize(req)
	var fault *Fault
	if !errors.As(err, &fault) || fault.Kind != FaultBodyParse {
		t.Fatalf("expected body fault, got %v", err)
	}
}

func TestNormalizeSkipsBodyForGetAndNonJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/courses", strings.NewReader(`{broken`))
	req.Header.Set("Content-Type", "application/json")
	if _, err := (Normalizer{}).Normalize(req); err != nil {
		t.Fatalf("GET bodies are not parsed: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/uploads", strings.NewReader(`{broken`))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	got, err := Normalizer{}.Normalize(req)
	if err != nil {
		t.Fatalf("non-JSON bodies are not parsed: %v", err)
	}
	if got.Body != nil || got.RawBody != nil {
		t.Fatalf("expected no parsed body")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", strings.NewReader("  "))
	req.Header.Set("Content-Type", "application/json")
	got, err = Normalizer{}.Normalize(req)
	if err != nil {
		t.Fatalf("empty JSON body is allowed: %v", err)
	}
	if err := got.Bind(&struct{}{}); !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}
