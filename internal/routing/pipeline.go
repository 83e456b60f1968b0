package routing

import (
	"net/http"

	"github.com/pkg/errors"
)

// Pipeline runs normalizer, matcher, gate and dispatcher in that order.
type Pipeline struct {
	normalizer Normalizer
	table      *Table
	gate       *Gate
	dispatcher *Dispatcher
}

// NewPipeline wires the stages. It refuses a registry that does not cover
// every route in the table.
func NewPipeline(normalizer Normalizer, table *Table, gate *Gate, registry Registry) (*Pipeline, error) {
	if table == nil || gate == nil {
		return nil, errors.New("routing: table and gate are required")
	}
	if err := registry.Validate(table.Routes()); err != nil {
		return nil, err
	}
	return &Pipeline{
		normalizer: normalizer,
		table:      table,
		gate:       gate,
		dispatcher: NewDispatcher(registry),
	}, nil
}

// Table exposes the route table.
func (p *Pipeline) Table() *Table { return p.table }

// Serve handles one request. When the returned error is non-nil nothing has
// been written and the caller owns the error response; it is always a *Fault.
// The matched route is returned whenever matching succeeded.
func (p *Pipeline) Serve(w http.ResponseWriter, r *http.Request) (*MatchedRoute, error) {
	req, err := p.normalizer.Normalize(r)
	if err != nil {
		return nil, AsFault(err)
	}
	match, ok := p.table.Match(req.Method, req.Path)
	if !ok {
		return nil, NewFault(FaultRouting, errors.Errorf("no route for %s %s", req.Method, req.Path))
	}
	identity, err := p.gate.Check(req.Context(), match.Route, req.Header)
	if err != nil {
		return &match, AsFault(err)
	}
	req.Identity = identity
	if err := p.dispatcher.Dispatch(w, match, req); err != nil {
		return &match, AsFault(err)
	}
	return &match, nil
}
