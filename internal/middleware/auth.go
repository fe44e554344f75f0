package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/almnar0/almeshkat25/internal/apperr"
	"github.com/almnar0/almeshkat25/internal/service"
	"github.com/almnar0/almeshkat25/internal/utils"
)

type ctxKey string

const (
	CtxUserID ctxKey = "uid"
	CtxEmail  ctxKey = "email"
	CtxRole   ctxKey = "role"
)

// WithAuth verifies the Authorization: Bearer token when present. A missing
// token passes through unauthenticated (RequireAuth gates protected routes);
// a present-but-invalid token is rejected outright.
func WithAuth(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			ident, err := auth.Authenticate(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				utils.Fail(w, apperr.New(apperr.InvalidToken, "invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), CtxUserID, ident.UserID)
			ctx = context.WithValue(ctx, CtxEmail, ident.Email)
			ctx = context.WithValue(ctx, CtxRole, ident.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom rebuilds the caller identity out of the request context.
func IdentityFrom(ctx context.Context) (service.Identity, bool) {
	uid, ok := utils.GetString(ctx, CtxUserID)
	if !ok || uid == "" {
		return service.Identity{}, false
	}
	email, _ := utils.GetString(ctx, CtxEmail)
	role, _ := utils.GetString(ctx, CtxRole)
	return service.Identity{UserID: uid, Email: email, Role: role}, true
}
