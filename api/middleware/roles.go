package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/angelmondragon/warehousepos-backend/api/responses"
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/angelmondragon/warehousepos-backend/pkg/logger"
)

// RequireRole admits actors holding one of roles. A request that reached it
// without an actor is unauthenticated rather than forbidden.
func RequireRole(logg *logger.Logger, roles ...enums.UserRole) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(roles))
	for _, role := range roles {
		allowed = append(allowed, role.String())
	}
	denied := pkgerrors.New(pkgerrors.CodeForbidden, "role required").
		WithDetails(map[string]string{"required": strings.Join(allowed, ",")})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			switch {
			case !ok || actor.UserID == "":
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			case slices.Contains(allowed, actor.Role):
				next.ServeHTTP(w, r)
			default:
				responses.WriteError(r.Context(), logg, w, denied)
			}
		})
	}
}
