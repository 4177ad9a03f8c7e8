package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/simp-lee/parkdash/internal/domain"
)

// credentials is the signed-in state kept between invocations.
type credentials struct {
	APIURL    string    `yaml:"api_url"`
	Token     string    `yaml:"token"`
	ExpiresAt time.Time `yaml:"expires_at,omitempty"`
	User      savedUser `yaml:"user"`
}

type savedUser struct {
	ID    string      `yaml:"id" json:"id"`
	Email string      `yaml:"email" json:"email"`
	Name  string      `yaml:"name" json:"name"`
	Role  domain.Role `yaml:"role" json:"role"`
}

func (c *credentials) expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

func (c *credentials) isAdmin() bool {
	return domain.User{Role: c.User.Role}.IsAdmin()
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".parkctl.yaml"
	}
	return filepath.Join(dir, "parkdash", "parkctl.yaml")
}

// loadCredentials returns nil, nil when the file does not exist.
func loadCredentials(path string) (*credentials, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var creds credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", path, err)
	}
	return &creds, nil
}

// saveCredentials writes the file readable by the owner only.
func saveCredentials(path string, creds *credentials) error {
	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func removeCredentials(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
