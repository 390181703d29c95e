package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"

	"ms-seating/internal/config"
	"ms-seating/internal/logger"
	"ms-seating/internal/utils"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Anonymous is the user id set when authentication is disabled.
const Anonymous = "local"

// Verifier turns a raw bearer token into a subject.
type Verifier func(ctx context.Context, rawToken string) (string, error)

// NewVerifier picks the verifier for cfg: an OIDC provider when an issuer is
// set, otherwise a shared HS256 secret. It returns nil when neither is
// configured.
func NewVerifier(ctx context.Context, cfg config.AuthConfig) (Verifier, error) {
	switch {
	case cfg.OIDCIssuer != "":
		provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
		if err != nil {
			return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
		}
		verifier := provider.Verifier(&oidc.Config{SkipClientIDCheck: true})
		return func(ctx context.Context, rawToken string) (string, error) {
			idToken, err := verifier.Verify(ctx, rawToken)
			if err != nil {
				return "", err
			}
			var claims struct {
				Sub string `json:"sub"`
			}
			if err := idToken.Claims(&claims); err != nil {
				return "", fmt.Errorf("failed to parse claims: %w", err)
			}
			return claims.Sub, nil
		}, nil
	case cfg.JWTSecret != "":
		secret := cfg.JWTSecret
		return func(_ context.Context, rawToken string) (string, error) {
			return VerifyHS256(rawToken, secret)
		}, nil
	default:
		return nil, nil
	}
}

// Middleware rejects requests without a valid bearer token. A nil verifier
// lets every request through as Anonymous.
func Middleware(verify Verifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verify == nil {
				next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), Anonymous)))
				return
			}

			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", err.Error()))
				return
			}

			sub, err := verify(r.Context(), rawToken)
			if err != nil {
				log.LogSecurity("AUTH_REJECTED", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", "invalid token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), sub)))
		})
	}
}

func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// Helper to extract user ID in handlers
func UserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey).(string); ok {
		return uid
	}
	return ""
}
