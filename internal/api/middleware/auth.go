package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"Apiverse/internal/api/handlers"
)

// Context keys for storing identity information
type contextKey string

const (
	IdentityKey   contextKey = "identity"
	AuthSourceKey contextKey = "auth_source"
)

// SessionIdentityKey is the session value holding the signed-in user id
const SessionIdentityKey = "user_id"

// Auth sources recorded in the request context
const (
	SourceBearer  = "bearer"
	SourceSession = "session"
)

// IdentityAuthMiddleware answers "current user identity or none".
// It accepts an HS256 Bearer token whose subject is the identity, or a
// cookie session carrying SessionIdentityKey. Session issuance lives elsewhere.
type IdentityAuthMiddleware struct {
	sessions    sessions.Store
	secret      []byte
	sessionName string
}

// NewIdentityAuthMiddleware creates the identity check.
// store may be nil to accept Bearer tokens only.
func NewIdentityAuthMiddleware(secret []byte, store sessions.Store, sessionName string) *IdentityAuthMiddleware {
	return &IdentityAuthMiddleware{
		secret:      secret,
		sessions:    store,
		sessionName: sessionName,
	}
}

// RequireAuth rejects requests without an identity with 401 AuthRequired
func (m *IdentityAuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, source, err := m.resolve(r)
		if err != nil {
			log.Printf("[AUTH_FAILURE] type=%s ip=%s method=%s path=%s error=%v",
				source, r.RemoteAddr, r.Method, r.URL.Path, err)
			writeAuthError(w, "Invalid or expired credentials")
			return
		}
		if identity == "" {
			writeAuthError(w, "Authentication required")
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity, source)))
	})
}

// OptionalAuth loads the identity when present but never rejects
func (m *IdentityAuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, source, err := m.resolve(r)
		if err != nil {
			log.Printf("Optional auth failed: %v", err)
			next.ServeHTTP(w, r)
			return
		}
		if identity == "" {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity, source)))
	})
}

// resolve returns the identity, the source that produced it, and an error
// when a credential was presented but is invalid. No credential at all is
// ("", "", nil).
func (m *IdentityAuthMiddleware) resolve(r *http.Request) (string, string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", SourceBearer, fmt.Errorf("expected Bearer authorization")
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		identity, err := m.verifyToken(token)
		return identity, SourceBearer, err
	}

	if m.sessions == nil {
		return "", "", nil
	}
	session, err := m.sessions.Get(r, m.sessionName)
	if err != nil {
		return "", SourceSession, fmt.Errorf("failed to decode session: %w", err)
	}
	identity, _ := session.Values[SessionIdentityKey].(string)
	return strings.TrimSpace(identity), SourceSession, nil
}

func (m *IdentityAuthMiddleware) verifyToken(token string) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("bearer tokens are not accepted: no signing secret configured")
	}
	parsed, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, m.secret),
		jwt.WithValidate(true),
	)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if parsed.Subject() == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return parsed.Subject(), nil
}

func withIdentity(ctx context.Context, identity, source string) context.Context {
	ctx = context.WithValue(ctx, IdentityKey, identity)
	return context.WithValue(ctx, AuthSourceKey, source)
}

// GetIdentity extracts the identity from the request context.
// Returns empty string if not authenticated.
func GetIdentity(r *http.Request) string {
	return IdentityFromContext(r.Context())
}

// IdentityFromContext is GetIdentity for service layers
func IdentityFromContext(ctx context.Context) string {
	identity, _ := ctx.Value(IdentityKey).(string)
	return identity
}

// GetAuthSource returns "bearer", "session" or ""
func GetAuthSource(r *http.Request) string {
	source, _ := r.Context().Value(AuthSourceKey).(string)
	return source
}

// SetTestIdentity sets the identity in the context for testing purposes.
// This function should ONLY be used in tests to mock authenticated users.
func SetTestIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// IssueToken signs an HS256 identity token for subject
func IssueToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	tok, err := jwt.NewBuilder().
		Subject(subject).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// writeAuthError writes a JSON error response for authentication failures
func writeAuthError(w http.ResponseWriter, message string) {
	handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", message)
}
