package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cli, err := New(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return cli
}

func TestLoginUnwrapsEnvelope(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["email"] != "ada@example.com" {
			t.Errorf("expected email in body, got %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"Login successful","data":{"user":{"id":7,"email":"ada@example.com","role":"student"},"tokens":{"access_token":"a","refresh_token":"r","token_type":"Bearer","expires_in":3600}}}`))
	})

	session, err := cli.Login(context.Background(), "ada@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.User.ID != 7 || session.User.Role != "student" {
		t.Fatalf("unexpected user %+v", session.User)
	}
	if session.Tokens.AccessToken != "a" || session.Tokens.ExpiresIn != 3600 {
		t.Fatalf("unexpected tokens %+v", session.Tokens)
	}
}

func TestErrorEnvelopeBecomesAPIError(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success":false,"message":"Validation failed","errors":{"email":"email is required"}}`))
	})

	_, err := cli.Login(context.Background(), "", "x")
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity || apiErr.Message != "Validation failed" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if apiErr.Fields["email"] != "email is required" {
		t.Fatalf("expected field errors, got %v", apiErr.Fields)
	}
}

func TestMeSendsBearer(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Authentication required"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":1,"email":"root@example.com","role":"admin"}}`))
	})

	user, err := cli.Me(context.Background(), " tok ")
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if user.Role != "admin" {
		t.Fatalf("expected admin, got %+v", user)
	}
}

func TestListCoursesEncodesQuery(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("category") != "go" || q.Get("limit") != "5" || q.Has("level") {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":3,"title":"Concurrency"}]}`))
	})

	courses, err := cli.ListCourses(context.Background(), CourseQuery{Category: "go", Limit: 5})
	if err != nil {
		t.Fatalf("list courses: %v", err)
	}
	if len(courses) != 1 || courses[0].Title != "Concurrency" {
		t.Fatalf("unexpected courses %+v", courses)
	}
}

func TestNewNormalizesBaseURL(t *testing.T) {
	cli, err := New("api.example.com/api/")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if cli.baseURL != "http://api.example.com/api" {
		t.Fatalf("unexpected base url %q", cli.baseURL)
	}
}
