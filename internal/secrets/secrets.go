// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads mail credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: smtp-password, smtp-username.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/hours-mailer/pkg/types"
)

// Key file names.
const (
	KeySMTPPassword = "smtp-password"
	KeySMTPUsername = "smtp-username"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// ApplyMail copies credentials from secrets into cfg. Values already set in
// cfg (from the config file or environment) take precedence.
func ApplyMail(secrets map[string]string, cfg *types.MailConfig) {
	if cfg.Password == "" {
		cfg.Password = secrets[KeySMTPPassword]
	}
	if cfg.Username == "" {
		cfg.Username = secrets[KeySMTPUsername]
	}
}
