package routing

import (
	"reflect"
	"testing"
)

func testRoutes() []Route {
	return []Route{
		Private(GET, "/achievements", "achievements@index"),
		Private(GET, "/achievements/categories", "achievements@categories"),
		Private(GET, "/achievements/:id", "achievements@show"),
		Private(GET, "/grading/analytics/:quizId", "grading@quizAnalytics", "admin", "instructor"),
		Private(GET, "/courses/:courseId/modules/:moduleId", "modules@nested"),
		Public(POST, "/auth/login", "auth@login"),
	}
}

func TestMatchFirstDeclaredRouteWins(t *testing.T) {
	table := MustTable(testRoutes())

	match, ok := table.Match(GET, "/achievements/categories")
	if !ok {
		t.Fatalf("expected a match")
	}
	if match.Route.Handler != "achievements@categories" {
		t.Fatalf("expected categories handler, got %s", match.Route.Handler)
	}
	if len(match.Params) != 0 {
		t.Fatalf("expected no params, got %v", match.Params)
	}

	match, ok = table.Match(GET, "/achievements/17")
	if !ok || match.Route.Handler != "achievements@show" {
		t.Fatalf("expected show handler, got %+v", match)
	}
	if v, _ := match.Params.Get("id"); v != "17" {
		t.Fatalf("expected id=17, got %q", v)
	}
}

func TestMatchDeclarationOrderDecidesOverlap(t *testing.T) {
	table := MustTable([]Route{
		Private(GET, "/achievements/:id", "achievements@show"),
		Private(GET, "/achievements/categories", "achievements@categories"),
	})
	match, _ := table.Match(GET, "/achievements/categories")
	if match.Route.Handler != "achievements@show" {
		t.Fatalf("earlier parameter route must shadow the literal one, got %s", match.Route.Handler)
	}
}

func TestMatchExtractsParamsInPatternOrder(t *testing.T) {
	table := MustTable(testRoutes())

	match, ok := table.Match(GET, "/grading/analytics/42")
	if !ok {
		t.Fatalf("expected a match")
	}
	if got := match.Params.Map(); !reflect.DeepEqual(got, map[string]string{"quizId": "42"}) {
		t.Fatalf("unexpected params %v", got)
	}

	match, ok = table.Match(GET, "/courses/3/modules/9")
	if !ok {
		t.Fatalf("expected nested match")
	}
	want := Params{{Name: "courseId", Value: "3"}, {Name: "moduleId", Value: "9"}}
	if !reflect.DeepEqual(match.Params, want) {
		t.Fatalf("expected %v, got %v", want, match.Params)
	}
}

func TestMatchIsAnchoredAndMethodExact(t *testing.T) {
	table := MustTable(testRoutes())
	cases := []struct {
		method Method
		path   string
	}{
		{GET, "/achievements/1/extra"},
		{GET, "/prefix/achievements"},
		{GET, "/grading/analytics/"},
		{POST, "/achievements"},
		{GET, "/auth/login"},
		{PATCH, "/no/such/route"},
	}
	for _, tc := range cases {
		if match, ok := table.Match(tc.method, tc.path); ok {
			t.Fatalf("%s %s: unexpected match %s", tc.method, tc.path, match.Route)
		}
	}
}

func TestMatchTreatsLiteralsLiterally(t *testing.T) {
	table := MustTable([]Route{Public(GET, "/files/v1.0", "files@show")})
	if _, ok := table.Match(GET, "/files/v1x0"); ok {
		t.Fatalf("dot in pattern must not act as a wildcard")
	}
	if _, ok := table.Match(GET, "/files/v1.0"); !ok {
		t.Fatalf("expected literal match")
	}
}

func TestNewTableRejectsBadRoutes(t *testing.T) {
	cases := map[string]Route{
		"method":    {Method: "OPTIONS", Pattern: "/x", Handler: "x@y"},
		"handler":   {Method: GET, Pattern: "/x", Handler: "broken"},
		"pattern":   {Method: GET, Pattern: "x", Handler: "x@y"},
		"duplicate": {Method: GET, Pattern: "/a/:id/b/:id", Handler: "x@y"},
	}
	for name, route := range cases {
		if _, err := NewTable([]Route{route}); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestRoutesReturnsCopy(t *testing.T) {
	table := MustTable(testRoutes())
	routes := table.Routes()
	routes[3].Roles[0] = "student"
	if table.Routes()[3].Roles[0] != "admin" {
		t.Fatalf("table must not be mutable through Routes()")
	}
	if table.Len() != len(testRoutes()) {
		t.Fatalf("unexpected length %d", table.Len())
	}
}

func TestAllowsRoleIsExactMembership(t *testing.T) {
	route := Private(GET, "/x", "x@y", "admin", "instructor")
	if route.AllowsRole("student") || route.AllowsRole("Admin") || route.AllowsRole("admin2") {
		t.Fatalf("role match must be exact")
	}
	if !route.AllowsRole("instructor") {
		t.Fatalf("instructor should be allowed")
	}
	if !Private(GET, "/x", "x@y").AllowsRole("anything") {
		t.Fatalf("route without roles admits any role")
	}
}
