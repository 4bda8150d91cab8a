package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"recruitment_portal/internal/model"
	"recruitment_portal/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the token persisted between portalctl invocations. The role
// is decoded without verifying the signature, so it only decides which
// commands are offered. The server checks every request on its own.
type Session struct {
	path  string
	token string
}

// LoadSession reads the token stored at path. A missing file yields an
// empty session.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	s.token = strings.TrimSpace(string(data))
	return s, nil
}

// DefaultSessionPath is ~/.portalctl/token
func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".portalctl-token"
	}
	return filepath.Join(home, ".portalctl", "token")
}

func (s *Session) Token() string { return s.token }

func (s *Session) LoggedIn() bool { return s.token != "" }

// Save stores the token readable by the current user only
func (s *Session) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	s.token = token
	return nil
}

// Clear forgets the token locally. The server is not contacted.
func (s *Session) Clear() error {
	s.token = ""
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// Claims decodes the stored token without checking its signature
func (s *Session) Claims() (*utils.JWTClaims, error) {
	if s.token == "" {
		return nil, ErrNotLoggedIn
	}
	claims := &utils.JWTClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode stored token: %w", err)
	}
	return claims, nil
}

// Role returns the role claimed by the stored token, or "" when unknown
func (s *Session) Role() string {
	claims, err := s.Claims()
	if err != nil {
		return ""
	}
	return claims.User.Role
}

func (s *Session) IsAdmin() bool { return s.Role() == model.RoleAdmin }
