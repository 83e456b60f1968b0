package routing

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"

	"github.com/splax/learnhub/internal/domain"
)

// Authenticator resolves callers from bearer credentials.
type Authenticator interface {
	ExtractBearer(header http.Header) (string, bool)
	AuthenticateAccess(ctx context.Context, token string) (domain.Identity, error)
}

// Gate enforces a route's auth and role requirements before dispatch.
type Gate struct {
	auth   Authenticator
	logger *slog.Logger
}

// NewGate builds a gate backed by auth.
func NewGate(auth Authenticator, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{auth: auth, logger: logger}
}

// Check returns the caller identity for route, nil on public routes. Failures
// are FaultAuthentication or FaultAuthorization.
func (g *Gate) Check(ctx context.Context, route Route, header http.Header) (*domain.Identity, error) {
	if !route.Auth {
		return nil, nil
	}
	token, ok := g.auth.ExtractBearer(header)
	if !ok {
		return nil, NewFault(FaultAuthentication, errors.New("missing bearer token"))
	}
	identity, err := g.auth.AuthenticateAccess(ctx, token)
	if err != nil {
		// Expired, malformed, wrong type and revoked all collapse into one response.
		g.logger.Debug("token rejected", "error", err, "route", route.Pattern)
		return nil, NewFault(FaultAuthentication, err)
	}
	if !route.AllowsRole(identity.Role) {
		return nil, NewFault(FaultAuthorization, errors.Errorf("role %q not in %v", identity.Role, route.Roles))
	}
	return &identity, nil
}
