package auth

import (
    "strings"
    "sync"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// Session is the client's view of the login state kept by the external
// auth collaborator.  It only answers whether a usable bearer token is
// present; it never talks to the auth service.
type Session struct {
    mu   sync.RWMutex
    raw  string
    now  func() time.Time
    skew time.Duration
}

// NewSession wraps a bearer token.  An empty token means logged out.
func NewSession(token string) *Session {
    return &Session{raw: strings.TrimSpace(token), now: time.Now, skew: 5 * time.Second}
}

// SetToken replaces the token, e.g. after login or refresh.
func (s *Session) SetToken(token string) {
    s.mu.Lock()
    s.raw = strings.TrimSpace(token)
    s.mu.Unlock()
}

// Token returns the bearer token and whether it is usable: present, a
// well-formed JWT, and not expiring within a few seconds.  The signature
// is not checked here; the server does that.
func (s *Session) Token() (string, bool) {
    s.mu.RLock()
    raw := s.raw
    s.mu.RUnlock()
    if raw == "" {
        return "", false
    }
    claims := jwt.RegisteredClaims{}
    if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
        return "", false
    }
    if claims.ExpiresAt != nil && !claims.ExpiresAt.Time.After(s.now().Add(s.skew)) {
        return "", false
    }
    return raw, true
}

// Authenticated reports whether Token would succeed.
func (s *Session) Authenticated() bool {
    _, ok := s.Token()
    return ok
}
