package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/prastiyo12/userhub_api/internal/identity"
	"github.com/prastiyo12/userhub_api/internal/users"
)

// ActorResolver is the external auth collaborator: it maps a request to the
// calling user, or to nil when the request is anonymous.
type ActorResolver interface {
	Resolve(ctx context.Context, r *http.Request) (*users.User, error)
}

// ActorMiddleware resolves the caller identity and stores it on the request
// context. Resolution failures degrade to anonymous instead of rejecting
// the request; the listing endpoint is readable without authentication.
func ActorMiddleware(resolver ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver == nil {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := resolver.Resolve(r.Context(), r)
			if err != nil || actor == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := identity.WithActor(r.Context(), actor.ID, string(actor.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorHeader is the identity header trusted from the fronting gateway.
const ActorHeader = "X-Actor-Id"

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

// HeaderActorResolver loads the user named by the gateway identity header.
// Intended for deployments where an upstream proxy has already
// authenticated the caller.
type HeaderActorResolver struct {
	Users UserLookup
}

func (h *HeaderActorResolver) Resolve(ctx context.Context, r *http.Request) (*users.User, error) {
	id := strings.TrimSpace(r.Header.Get(ActorHeader))
	if id == "" || h.Users == nil {
		return nil, nil
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if users.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}
