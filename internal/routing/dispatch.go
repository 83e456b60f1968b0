package routing

import (
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// HandlerFunc handles a routed request and is solely responsible for the response.
type HandlerFunc func(w http.ResponseWriter, req *Request)

// Registry maps handler references to their implementations.
type Registry map[HandlerRef]HandlerFunc

// Validate reports every route whose handler is not registered.
func (r Registry) Validate(routes []Route) error {
	var missing []string
	seen := make(map[HandlerRef]struct{})
	for _, route := range routes {
		if _, ok := r[route.Handler]; ok {
			continue
		}
		if _, dup := seen[route.Handler]; dup {
			continue
		}
		seen[route.Handler] = struct{}{}
		missing = append(missing, string(route.Handler))
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.Errorf("unregistered handlers: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Dispatcher invokes exactly one registered handler per matched route.
type Dispatcher struct {
	registry Registry
}

// NewDispatcher wraps registry.
func NewDispatcher(registry Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch calls the handler for match. A missing handler is a server-side
// configuration fault, never a client error.
func (d *Dispatcher) Dispatch(w http.ResponseWriter, match MatchedRoute, req *Request) error {
	handler, ok := d.registry[match.Route.Handler]
	if !ok || handler == nil {
		return NewFault(FaultConfiguration, errors.Errorf("no handler registered for %s", match.Route.Handler))
	}
	req.Params = match.Params
	handler(w, req)
	return nil
}
