package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/otcheredev/dicomweb-store/internal/models"
)

const ClaimsKey contextKey = "verified_claims"

// VerifiedClaims lifts the token payload into the request context. Signature
// verification happens at the gateway in front of this service; here the
// bearer token is only decoded so downstream logging can attribute requests.
// Requests without a token pass through with no claims attached.
func VerifiedClaims(next http.Handler) http.Handler {
	parser := jwt.NewParser()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		var claims models.Claims
		if _, _, err := parser.ParseUnverified(strings.TrimPrefix(auth, "Bearer "), &claims); err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, &claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClaims returns the decoded claims, or nil when the request carried none.
func GetClaims(ctx context.Context) *models.Claims {
	claims, _ := ctx.Value(ClaimsKey).(*models.Claims)
	return claims
}
