package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-medical-booking/internal/session"
	"go-medical-booking/pkg/jwt"
	"go-medical-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	SessionKey contextKey = "session"
	ClaimsKey  contextKey = "claims"
)

// SessionSource resolves the stored session of an access token.
type SessionSource interface {
	Current(ctx context.Context, tokenID string) (*session.Session, error)
}

type AuthMiddleware struct {
	jwtService *jwt.JWTService
	sessions   SessionSource
	log        *logrus.Logger
}

func NewAuthMiddleware(jwtService *jwt.JWTService, sessions SessionSource, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		sessions:   sessions,
		log:        log,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Validate JWT token
		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		// Check if it's an access token
		if claims.TokenType != jwt.AccessToken {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		// The session was derived at sign-in; a missing one means the token was signed out
		sess, err := m.sessions.Current(r.Context(), claims.TokenID)
		if err != nil {
			m.log.Warnf("Failed to load session: %+v", err)
			response.InternalServerError(w, "Failed to validate token")
			return
		}
		if sess == nil || sess.UserID != claims.UserID {
			response.Unauthorized(w, "Token has been revoked")
			return
		}

		ctx := WithSession(r.Context(), sess)
		ctx = context.WithValue(ctx, ClaimsKey, claims)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Identify lets anonymous requests through without a session. A presented token must
// still be valid.
func (m *AuthMiddleware) Identify(next http.Handler) http.Handler {
	authenticated := m.Authenticate(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := bearerToken(r); !ok {
			next.ServeHTTP(w, r)
			return
		}
		authenticated.ServeHTTP(w, r)
	})
}

// bearerToken reads "Authorization: Bearer <token>". Websocket handshakes may pass the
// token as the access_token query parameter instead, since browsers cannot set headers there.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if websocket.IsWebSocketUpgrade(r) {
			if token := r.URL.Query().Get("access_token"); token != "" {
				return token, true
			}
		}
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// WithSession stores the session in ctx.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, SessionKey, sess)
}

// GetSessionFromContext extracts the session from context
func GetSessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(SessionKey).(*session.Session)
	return sess, ok && sess != nil
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	sess, ok := GetSessionFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return sess.UserID, true
}

// GetClaimsFromContext extracts the validated access token claims from context
func GetClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*jwt.Claims)
	return claims, ok
}
