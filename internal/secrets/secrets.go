// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads API keys kept as files under .secrets/, one key per
// file named after the key (openai-api-key, semantic-scholar-api-key).
//
// A key file is the last place a key is looked up. The OpenAI key resolves
// from the --api-key flag, then the PAPER_QA_OPENAI_API_KEY or
// OPENAI_API_KEY environment variables (after .env is loaded), then
// openai.api_key in the config file, and only then from
// .secrets/openai-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-qa/internal/logger"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

// Key file names.
const (
	OpenAIAPIKey          = "openai-api-key"
	SemanticScholarAPIKey = "semantic-scholar-api-key"
)

// Set maps key file names to their trimmed contents.
type Set map[string]string

// Lookup returns override when it is non-blank, otherwise the key file
// value for name, or "" when neither is set.
func (s Set) Lookup(name, override string) string {
	if v := strings.TrimSpace(override); v != "" {
		return v
	}
	return s[name]
}

// Names returns the loaded key names without their values.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	return names
}

// Load reads the key files in dir. A missing directory yields an empty Set.
// Dotfiles, subdirectories and blank files are ignored; unreadable files are
// logged and skipped.
func Load(dir string) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	set := Set{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret %s: %v", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			set[name] = value
		}
	}
	return set, nil
}
