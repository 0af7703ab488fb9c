package middleware

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Authorize checks the principal against the required roles. An empty role set allows everyone.
func Authorize(principal *Principal, required ...enums.Role) error {
	if len(required) == 0 {
		return nil
	}
	if principal == nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "User not found in request")
	}
	for _, role := range required {
		if principal.Role == role {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "Access denied: Insufficient role")
}

// RequireRoles rejects requests whose principal holds none of the roles.
func RequireRoles(logg *logger.Logger, roles ...enums.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := Authorize(PrincipalFromContext(r.Context()), roles...); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
