package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/warehousepos-backend/api/responses"
	pkgAuth "github.com/angelmondragon/warehousepos-backend/pkg/auth"
	"github.com/angelmondragon/warehousepos-backend/pkg/auth/session"
	"github.com/angelmondragon/warehousepos-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/angelmondragon/warehousepos-backend/pkg/logger"
)

// Auth admits requests carrying a valid access token whose session is still
// open. Logging out closes the session, so a token stops working at logout
// even before it expires.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := authenticate(r, cfg, verifier)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithActor(r.Context(), actor)
			if logg != nil {
				ctx = logg.WithUserID(ctx, actor.UserID)
				ctx = logg.WithField(ctx, "actor_role", actor.Role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, cfg config.JWTConfig, verifier session.AccessSessionChecker) (Actor, error) {
	token, err := BearerToken(r)
	if err != nil {
		return Actor{}, err
	}
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if !claims.Role.IsValid() {
		return Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown role in token")
	}

	if verifier != nil {
		open, err := verifier.HasSession(r.Context(), claims.ID)
		if err != nil {
			return Actor{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !open {
			return Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "session ended")
		}
	}

	return Actor{
		UserID:   claims.UserID.String(),
		Username: claims.Username,
		Role:     claims.Role.String(),
	}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. A bare token without the scheme is accepted as well.
func BearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, rest, found := strings.Cut(raw, " "); found && strings.EqualFold(scheme, "bearer") {
		raw = strings.TrimSpace(rest)
	}
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return raw, nil
}
