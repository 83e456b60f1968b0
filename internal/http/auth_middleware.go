package httpx

import (
	"net/http"
	"strconv"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/routing"
)

// authed runs after the gate has resolved the caller. It records the identity
// for the audit log and throttles authenticated writes per user.
func (r *Router) authed(next routing.HandlerFunc) routing.HandlerFunc {
	return func(w http.ResponseWriter, req *routing.Request) {
		if req.Identity == nil {
			next(w, req)
			return
		}
		if setter, ok := w.(annotator); ok {
			setter.SetIdentity(req.Identity)
		}
		if req.Method != routing.GET {
			if !r.allow(w, req.HTTP, "user_write", rateLimitKeyUser(req.Identity), rateLimitUserWrite) {
				return
			}
		}
		next(w, req)
	}
}

// caller returns the authenticated identity. Private routes always carry one.
func caller(req *routing.Request) domain.Identity {
	if req.Identity == nil {
		return domain.Identity{}
	}
	return *req.Identity
}

func rateLimitKeyUser(identity *domain.Identity) string {
	return "user:" + strconv.FormatInt(identity.ID, 10)
}
