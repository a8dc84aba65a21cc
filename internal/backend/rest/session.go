package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"

	"tick/internal/service"
)

// Session persists the access and refresh tokens as an oauth2.Token JSON
// file with mode 0600.
type Session struct {
	path string
	mu   sync.Mutex
}

// NewSession returns a session stored at path.
func NewSession(path string) *Session {
	return &Session{path: path}
}

// Load reads the stored token. Returns service.ErrUnauthorized when no
// session exists.
func (s *Session) Load() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, service.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid session file: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, service.ErrUnauthorized
	}
	return &tok, nil
}

// Save writes tok, replacing any previous session.
func (s *Session) Save(tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Remove deletes the session. A missing file is not an error.
func (s *Session) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// tokenFromAuth builds the stored token from a login or refresh response.
// The expiry is read, unverified, from the access token's exp claim so
// the transport can refresh before the server starts rejecting it.
func tokenFromAuth(r authResponseDTO) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    "Bearer",
	}
	if exp, ok := accessExpiry(r.AccessToken); ok {
		tok.Expiry = exp
	}
	return tok
}

func accessExpiry(access string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(access, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
