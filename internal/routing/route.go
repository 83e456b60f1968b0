package routing

import (
	"net/http"
	"slices"
	"strings"
)

// Method is an HTTP method a route can be declared for. OPTIONS is answered
// before routing and therefore is not part of the set.
type Method string

const (
	GET    Method = http.MethodGet
	POST   Method = http.MethodPost
	PUT    Method = http.MethodPut
	DELETE Method = http.MethodDelete
	PATCH  Method = http.MethodPatch
)

// Valid reports whether m is a routable method.
func (m Method) Valid() bool {
	switch m {
	case GET, POST, PUT, DELETE, PATCH:
		return true
	}
	return false
}

// HasBody reports whether requests with this method may carry a parsed body.
func (m Method) HasBody() bool {
	return m == POST || m == PUT || m == PATCH || m == DELETE
}

// HandlerRef names a handler as "controller@action".
type HandlerRef string

// Controller returns the part before '@'.
func (h HandlerRef) Controller() string {
	controller, _, _ := strings.Cut(string(h), "@")
	return controller
}

// Action returns the part after '@'.
func (h HandlerRef) Action() string {
	_, action, _ := strings.Cut(string(h), "@")
	return action
}

// Valid reports whether both parts are present.
func (h HandlerRef) Valid() bool {
	controller, action, ok := strings.Cut(string(h), "@")
	return ok && controller != "" && action != ""
}

// Route is one immutable entry of the route table.
type Route struct {
	Method  Method
	Pattern string
	Handler HandlerRef
	Auth    bool
	// Roles restricts an authenticated route to the listed roles. Empty means any role.
	Roles []string
}

// Public declares a route reachable without credentials.
func Public(method Method, pattern string, handler HandlerRef) Route {
	return Route{Method: method, Pattern: pattern, Handler: handler}
}

// Private declares a route that requires an access token and, when roles are
// given, one of those roles.
func Private(method Method, pattern string, handler HandlerRef, roles ...string) Route {
	return Route{Method: method, Pattern: pattern, Handler: handler, Auth: true, Roles: roles}
}

// AllowsRole reports whether role satisfies the route's role requirement.
// Membership is exact: no prefixes, no hierarchy.
func (r Route) AllowsRole(role string) bool {
	if len(r.Roles) == 0 {
		return true
	}
	return slices.Contains(r.Roles, role)
}

func (r Route) String() string {
	return string(r.Method) + " " + r.Pattern + " -> " + string(r.Handler)
}

// Param is one extracted path parameter.
type Param struct {
	Name  string
	Value string
}

// Params keeps path parameters in the order they appear in the pattern.
type Params []Param

// Get returns the value bound to name.
func (p Params) Get(name string) (string, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return "", false
}

// Map copies the parameters into a map.
func (p Params) Map() map[string]string {
	out := make(map[string]string, len(p))
	for _, param := range p {
		out[param.Name] = param.Value
	}
	return out
}

// MatchedRoute is the winning route for one request and its parameters.
type MatchedRoute struct {
	Route  Route
	Params Params
}
