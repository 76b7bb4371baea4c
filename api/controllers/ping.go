package controllers

import (
	"net/http"

	"github.com/angelmondragon/warehousepos-backend/api/middleware"
	"github.com/angelmondragon/warehousepos-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

// PrivatePing echoes the authenticated identity, which tills use to check
// their token before opening a shift.
func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"scope":    "private",
			"status":   "ok",
			"user_id":  middleware.UserIDFromContext(r.Context()),
			"username": middleware.UsernameFromContext(r.Context()),
			"role":     middleware.RoleFromContext(r.Context()),
		})
	}
}
