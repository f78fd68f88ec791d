// ABOUTME: Session token persistence for the rally API
// ABOUTME: Stores bearer tokens as oauth2.Token JSON under the XDG data dir
package api

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
)

// Token is the session credential returned by the auth endpoint.
type Token = oauth2.Token

// TokenPath returns the XDG-compliant path for the stored session token.
func TokenPath() string {
	return filepath.Join(xdg.DataHome, "rally", "credentials.json")
}

// SaveToken writes the session token with restricted permissions.
func SaveToken(token *Token) error {
	path := TokenPath()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

// LoadToken reads the stored session token.
func LoadToken() (*Token, error) {
	f, err := os.Open(TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var token Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &token, nil
}

// ClearToken removes the stored session token. Missing files are not an
// error.
func ClearToken() error {
	if err := os.Remove(TokenPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// TokenValue returns the bearer token for the current process, or empty
// when no usable token exists. Suitable as a Client token source.
// RALLY_API_TOKEN overrides the stored credential (CI and scripting).
func TokenValue() string {
	if v := os.Getenv("RALLY_API_TOKEN"); v != "" {
		return v
	}

	token, err := LoadToken()
	if err != nil {
		return ""
	}
	if token.AccessToken == "" {
		return ""
	}
	return token.AccessToken
}

// decodeToken accepts the auth endpoint's response shape, either a full
// oauth-style document or a bare {"token": "..."}.
func decodeToken(body []byte) (*Token, error) {
	var doc struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
		Token        string `json:"token"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}

	access := doc.AccessToken
	if access == "" {
		access = doc.Token
	}
	if access == "" {
		return nil, fmt.Errorf("auth response contained no token")
	}

	token := &Token{
		AccessToken:  access,
		RefreshToken: doc.RefreshToken,
		TokenType:    "Bearer",
	}
	if doc.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(doc.ExpiresIn) * time.Second)
	}
	return token, nil
}
