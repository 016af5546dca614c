package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/warp/leave-registry/leave"
)

// =============================================================================
// TOKENS - Signed leave.Session
// =============================================================================

var ErrInvalidToken = errors.New("invalid or expired session token")

// Claims carries the session in a JWT.
type Claims struct {
	EmployeeName string     `json:"name"`
	Role         leave.Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for sess. The subject is the employee id.
func (t *Tokens) Issue(sess leave.Session) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := Claims{
		EmployeeName: sess.EmployeeName,
		Role:         sess.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sess.EmployeeID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies a token and returns its session.
func (t *Tokens) Parse(token string) (leave.Session, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return leave.Session{}, ErrInvalidToken
	}
	return leave.Session{
		EmployeeID:   claims.Subject,
		EmployeeName: claims.EmployeeName,
		Role:         claims.Role,
	}, nil
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type sessionKey struct{}

func withSession(ctx context.Context, sess leave.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFrom returns the session RequireSession stored in ctx.
func SessionFrom(ctx context.Context) (leave.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(leave.Session)
	return sess, ok
}

func bearerToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if c, err := r.Cookie("access_token"); err == nil {
		return c.Value
	}
	return ""
}

// RequireSession rejects requests without a valid token.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			h.writeError(w, r, ErrInvalidToken)
			return
		}
		sess, err := h.tokens.Parse(token)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

// RequireAdmin rejects sessions without the admin role. It runs after
// RequireSession.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFrom(r.Context())
		if !ok || !sess.IsAdmin() {
			h.writeError(w, r, leave.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
