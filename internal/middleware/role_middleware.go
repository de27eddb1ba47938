package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/repositories"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

// RequireRoles gates a handler to users whose role name appears in the
// allowed list. Must run after AuthMiddleware.
func RequireRoles(userRepo repositories.UserRepository, roleRepo repositories.RoleRepository, allowed ...string) func(http.Handler) http.Handler {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := r.Context().Value(ContextKeyUserID).(string)
			if !ok || userID == "" {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing authentication context",
				)
				return
			}

			uid, err := uuid.Parse(userID)
			if err != nil {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Malformed subject", err,
				)
				return
			}

			user, err := userRepo.GetByID(r.Context(), uid)
			if err != nil {
				utils.RespondErrorWithCode(
					w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to resolve user", err,
				)
				return
			}
			if user == nil {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Unknown user",
				)
				return
			}

			role, err := roleRepo.GetByID(r.Context(), user.RoleID)
			if err != nil || role == nil {
				utils.RespondErrorWithCode(
					w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to resolve role", err,
				)
				return
			}

			if _, ok := allowedSet[role.Name]; !ok {
				utils.RespondErrorWithCode(
					w, http.StatusForbidden, utils.ErrCodeForbidden, "Insufficient permissions",
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
