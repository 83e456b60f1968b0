package routing

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var paramToken = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// segmentPattern matches exactly one non-empty path segment.
const segmentPattern = `([^/]+)`

type compiledRoute struct {
	route   Route
	matcher *regexp.Regexp
	names   []string
}

// Table is the ordered, read-only route table. Lookups scan in declaration
// order and the first route whose method and pattern match wins.
type Table struct {
	routes []compiledRoute
}

// NewTable compiles every route. It fails on an unknown method, a malformed
// pattern or handler reference, or a pattern whose parameter names do not line
// up with its capture groups.
func NewTable(routes []Route) (*Table, error) {
	t := &Table{routes: make([]compiledRoute, 0, len(routes))}
	for i, route := range routes {
		if !route.Method.Valid() {
			return nil, fmt.Errorf("route %d (%s): unsupported method %q", i, route.Pattern, route.Method)
		}
		if !route.Handler.Valid() {
			return nil, fmt.Errorf("route %d (%s): malformed handler %q", i, route.Pattern, route.Handler)
		}
		matcher, names, err := compilePattern(route.Pattern)
		if err != nil {
			return nil, fmt.Errorf("route %d: %w", i, err)
		}
		route.Roles = slices.Clone(route.Roles)
		t.routes = append(t.routes, compiledRoute{route: route, matcher: matcher, names: names})
	}
	return t, nil
}

// MustTable is NewTable for static tables; it panics on error.
func MustTable(routes []Route) *Table {
	t, err := NewTable(routes)
	if err != nil {
		panic(err)
	}
	return t
}

// compilePattern turns "/users/:id/profile" into ^/users/([^/]+)/profile$.
// Substitution and name collection are separate passes; the capture count is
// checked against the names so the two can never drift apart.
func compilePattern(pattern string) (*regexp.Regexp, []string, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, nil, fmt.Errorf("pattern %q must start with /", pattern)
	}
	expr := "^" + paramToken.ReplaceAllString(regexp.QuoteMeta(pattern), segmentPattern) + "$"
	matcher, err := regexp.Compile(expr)
	if err != nil {
		return nil, nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}

	var names []string
	seen := make(map[string]struct{})
	for _, m := range paramToken.FindAllStringSubmatch(pattern, -1) {
		if _, dup := seen[m[1]]; dup {
			return nil, nil, fmt.Errorf("pattern %q: duplicate parameter %q", pattern, m[1])
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	if matcher.NumSubexp() != len(names) {
		return nil, nil, fmt.Errorf("pattern %q: %d capture groups for %d parameters", pattern, matcher.NumSubexp(), len(names))
	}
	return matcher, names, nil
}

// Match returns the first route declared for method whose pattern matches the
// whole normalized path.
func (t *Table) Match(method Method, path string) (MatchedRoute, bool) {
	for _, cr := range t.routes {
		if cr.route.Method != method {
			continue
		}
		groups := cr.matcher.FindStringSubmatch(path)
		if groups == nil {
			continue
		}
		params := make(Params, len(cr.names))
		for i, name := range cr.names {
			params[i] = Param{Name: name, Value: groups[i+1]}
		}
		return MatchedRoute{Route: cr.route, Params: params}, true
	}
	return MatchedRoute{}, false
}

// Routes returns the table in declaration order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	for i, cr := range t.routes {
		out[i] = cr.route
		out[i].Roles = slices.Clone(cr.route.Roles)
	}
	return out
}

// Len returns the number of routes.
func (t *Table) Len() int { return len(t.routes) }
