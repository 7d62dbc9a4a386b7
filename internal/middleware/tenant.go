package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

type contextKey string

const TenantIDKey contextKey = "tenant_id"

const maxTenantIDLen = 64

// TenantID middleware extracts the tenant identifier from the X-Tenant-ID
// header. Tenants are opaque non-empty strings of at most 64 bytes.
func TenantID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get("X-Tenant-ID")
		if tenantID == "" {
			log.Warn().Msg("Missing X-Tenant-ID header")
			http.Error(w, "X-Tenant-ID header is required", http.StatusBadRequest)
			return
		}
		if len(tenantID) > maxTenantIDLen {
			log.Warn().Str("tenant_id", tenantID).Msg("Tenant ID too long")
			http.Error(w, "Invalid X-Tenant-ID", http.StatusBadRequest)
			return
		}

		ctx := context.WithValue(r.Context(), TenantIDKey, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetTenantID extracts the tenant id from context.
func GetTenantID(ctx context.Context) (string, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(string)
	return tenantID, ok
}
