package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Vishwas132/university-admin-panel/internal/httputil"
	"github.com/Vishwas132/university-admin-panel/internal/token"

	"github.com/go-chi/chi/v5"
)

const (
	msgNotAuthorized = "Not authorized"
	msgAccessDenied  = "Access denied"
	msgOwnProfile    = "Access denied. You can only access your own profile."
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated principal decoded from a bearer token.
type Identity struct {
	ID    string
	Email string
	Role  token.Role
}

func (i Identity) IsAdmin() bool   { return i.Role == token.RoleAdmin }
func (i Identity) IsStudent() bool { return i.Role == token.RoleStudent }

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// TokenVerifier is satisfied by *token.Issuer.
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// Authenticate validates the bearer token and stores the caller's Identity in
// the request context.
func Authenticate(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				logger.WarnContext(r.Context(), "missing bearer token", "path", r.URL.Path)
				httputil.RespondWithError(w, http.StatusUnauthorized, msgNotAuthorized)
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid token", "path", r.URL.Path, "error", err)
				httputil.RespondWithError(w, http.StatusUnauthorized, msgNotAuthorized)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{ID: claims.ID, Email: claims.Email, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// RequireRole rejects callers whose role is not one of roles. It must run
// after Authenticate.
func RequireRole(roles ...token.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				httputil.RespondWithError(w, http.StatusUnauthorized, msgNotAuthorized)
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httputil.RespondWithError(w, http.StatusForbidden, msgAccessDenied)
		})
	}
}

func AdminOnly(next http.Handler) http.Handler {
	return RequireRole(token.RoleAdmin)(next)
}

func StudentOnly(next http.Handler) http.Handler {
	return RequireRole(token.RoleStudent)(next)
}

// SelfOrAdmin lets admins through and restricts students to routes whose
// param matches their own id.
func SelfOrAdmin(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				httputil.RespondWithError(w, http.StatusUnauthorized, msgNotAuthorized)
				return
			}
			if id.IsAdmin() || (id.IsStudent() && chi.URLParam(r, param) == id.ID) {
				next.ServeHTTP(w, r)
				return
			}
			httputil.RespondWithError(w, http.StatusForbidden, msgOwnProfile)
		})
	}
}
