package authn

import (
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/tasktrack/internal/platform/errors"
	"github.com/louisbranch/tasktrack/internal/platform/httpx"
)

// Middleware returns an HTTP middleware that verifies the bearer token and
// stores the resolved caller in the request context. Requests without valid
// credentials never reach the wrapped handler.
func Middleware(cfg Config) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				httpx.WriteError(w, err)
				return
			}
			claims, err := VerifyToken(token, cfg)
			if err != nil {
				httpx.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), claims.Caller())))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", apperrors.New(apperrors.CodeCredentialsMissing, "authorization header is required")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", apperrors.New(apperrors.CodeCredentialsInvalid, "authorization header must be a bearer token")
	}
	return strings.TrimSpace(token), nil
}
