// package auth issues and verifies session cookies and CSRF tokens, and hashes passwords.
//
// Sessions are HS256 JWTs carried in an HttpOnly cookie. CSRF tokens are "nonce.signature"
// pairs signed with the same secret, so any token the server issued can be verified statelessly.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/mixtape/internal/shared"
)

// Cookie names
const (
	SessionCookie = "session"
	CSRFCookie    = "csrf_token"
)

const issuer = "mixtape"

// Manager signs sessions and CSRF tokens with a shared secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewManager returns a [Manager]. The secret must be non-empty.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: session secret is required", shared.ErrInvalidConfig)
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// SetSecure marks issued cookies Secure, for deployments behind TLS.
func (m *Manager) SetSecure(secure bool) { m.secure = secure }

// IssueSession signs a session token for userID.
func (m *Manager) IssueSession(userID string) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
		ID:        uuid.NewString(),
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, expires, nil
}

// ParseSession returns the user id carried by a valid session token.
func (m *Manager) ParseSession(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: session expired", shared.ErrInvalidSession)
		}
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidSession, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", shared.ErrInvalidSession
	}
	return claims.Subject, nil
}

// SetSession writes the session cookie for userID.
func (m *Manager) SetSession(w http.ResponseWriter, userID string) error {
	token, expires, err := m.IssueSession(userID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSession expires the session cookie.
func (m *Manager) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Authenticate resolves the caller from the session cookie.
func (m *Manager) Authenticate(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return "", shared.ErrNotAuthenticated
	}
	return m.ParseSession(cookie.Value)
}

// IssueCSRF returns a fresh "nonce.signature" token.
func (m *Manager) IssueCSRF() string {
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")
	return nonce + "." + m.sign(nonce)
}

// VerifyCSRF reports whether token was issued by this manager.
func (m *Manager) VerifyCSRF(token string) bool {
	nonce, sig, ok := strings.Cut(token, ".")
	if !ok || nonce == "" || sig == "" {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(m.sign(nonce)))
}

// SetCSRF issues a token into the csrf_token cookie and returns it.
// The cookie is readable by scripts so the client can echo it back.
func (m *Manager) SetCSRF(w http.ResponseWriter) string {
	token := m.IssueCSRF()
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookie,
		Value:    token,
		Path:     "/",
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return token
}

func (m *Manager) sign(nonce string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte("csrf:" + nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type contextKey struct{}

// WithUserID stores the authenticated caller on ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the authenticated caller stored on ctx.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}
