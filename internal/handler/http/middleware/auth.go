package middleware

import (
	"context"
	"net/http"

	"github.com/worklens/timeledger-backend-go/internal/domain/session"
	"github.com/worklens/timeledger-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

type principalKey struct{}

// AuthRequired verifies the access token and resolves the caller's principal
// from its claims. Services receive the principal explicitly; nothing below
// the handler layer reads the request context for identity.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.Unauthorized(w, "Missing access token")
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.Unauthorized(w, "Invalid access token")
				return
			}
			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.Unauthorized(w, "Invalid access token")
				return
			}

			userID, ok := claims["user_id"].(string)
			if !ok || userID == "" {
				response.Unauthorized(w, "Invalid access token")
				return
			}

			p := session.Principal{UserID: userID}
			if employeeID, ok := claims["employee_id"].(string); ok {
				p.EmployeeID = employeeID
			}
			if organizationID, ok := claims["organization_id"].(string); ok {
				p.OrganizationID = organizationID
			}

			ctx := context.WithValue(r.Context(), principalKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// PrincipalFromContext returns the principal stored by AuthRequired.
func PrincipalFromContext(ctx context.Context) (session.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(session.Principal)
	return p, ok
}

// EmployeeRequired rejects callers whose token carries no employee record.
func EmployeeRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok || p.EmployeeID == "" {
			response.Forbidden(w, "No employee record linked to this account")
			return
		}
		next.ServeHTTP(w, r)
	})
}
