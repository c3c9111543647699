package middleware

import (
	"context"
	"net/http"

	apperrors "turfbook/pkg/errors"
	httputil "turfbook/pkg/http"
	"turfbook/pkg/logger"
	"turfbook/pkg/model"
	"turfbook/pkg/token"

	"github.com/julienschmidt/httprouter"
)

const identityKey contextKey = "identity"

// Identity is what a verified access token resolves to.
type Identity struct {
	Principal *model.Principal
	Claims    *token.AccessClaims
}

// Authenticator verifies an access token for one principal kind.
type Authenticator interface {
	Kind() model.Kind
	VerifyAccess(ctx context.Context, accessToken string) (*Identity, error)
}

// RequireAuth rejects the request with an opaque 401 unless the access token
// from the accessToken cookie or bearer header verifies.
func RequireAuth(auth Authenticator, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			identity, err := auth.VerifyAccess(r.Context(), httputil.AccessToken(r))
			if err != nil {
				log.Debug("Access denied",
					"request_id", GetRequestID(r.Context()),
					"kind", auth.Kind(),
					"path", r.URL.Path,
				)
				_ = httputil.WriteError(w, apperrors.Unauthorized("Unauthorized request"))
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next(w, r.WithContext(ctx), ps)
		}
	}
}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFrom(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return identity, ok && identity != nil && identity.Principal != nil
}
