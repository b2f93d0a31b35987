package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dutytrack/dutytrack/internal"
	"github.com/dutytrack/dutytrack/pkg/logger"
)

// BearerAuth validates the HMAC-signed token carried in the Authorization
// header. The ops API has a single operator audience; the token subject is
// only used for request attribution.
func BearerAuth(secret string, lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeUnauthorized(w, "missing bearer token")
				return
			}
			tokenStr := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				lg.Warn("rejected ops token", "error", err, "remote_addr", r.RemoteAddr)
				writeUnauthorized(w, "invalid token")
				return
			}

			subject, _ := token.Claims.GetSubject()
			ctx := internal.ContextWithOperator(r.Context(), subject)
			ctx = logger.With(ctx, "operator", subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"code": %d, "message": %q}`, http.StatusUnauthorized, msg)
}
