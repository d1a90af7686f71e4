package user

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
)

type seedFile struct {
	Users []*User `yaml:"users"`
}

// LoadSeedFile parses a YAML document of the form:
//
//	users:
//	  - id: u-1
//	    email: ada@example.com
//	    firstName: Ada
//	    lastName: Lovelace
func LoadSeedFile(path string) ([]*User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var doc seedFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	seen := make(map[string]bool, len(doc.Users))
	for i, u := range doc.Users {
		if u == nil || strings.TrimSpace(u.ID) == "" || strings.TrimSpace(u.Email) == "" {
			return nil, fmt.Errorf("seed user %d: id and email are required", i)
		}
		if seen[u.ID] {
			return nil, fmt.Errorf("seed user %d: duplicate id %q", i, u.ID)
		}
		seen[u.ID] = true
	}
	return doc.Users, nil
}

// Seed loads path into store. An empty path does nothing.
func Seed(ctx context.Context, store Store, path string, log *logger.Logger) error {
	if path == "" {
		return nil
	}
	users, err := LoadSeedFile(path)
	if err != nil {
		return err
	}
	for _, u := range users {
		if err := store.SaveUser(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}
	log.Info("Seeded users", zap.Int("count", len(users)), zap.String("path", path))
	return nil
}
