// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/hours-mailer/internal/secrets"
	"github.com/pdiddy/hours-mailer/pkg/types"
)

// resetViper gives each test a clean viper with the CLI's defaults and env
// handling.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	setDefaults()
	viper.SetEnvPrefix("HOURS_MAILER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	loadedSecrets = nil
	t.Cleanup(func() {
		viper.Reset()
		loadedSecrets = nil
	})
}

func TestLoadRunConfigDefaults(t *testing.T) {
	resetViper(t)
	cfg := loadRunConfig()

	assert.Equal(t, "data.xlsx", cfg.InputPath)
	assert.Equal(t, "template.docx", cfg.TemplatePath)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "smtp.gmail.com", cfg.Mail.Host)
	assert.Equal(t, 465, cfg.Mail.Port)
	assert.Equal(t, types.BackendSoffice, cfg.Conversion.Backend)
	assert.Empty(t, cfg.Mail.Password)
	assert.False(t, cfg.DryRun)
}

func TestLoadRunConfigFile(t *testing.T) {
	resetViper(t)
	path := filepath.Join(t.TempDir(), "hours-mailer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input: roster.xlsx
output_dir: out
tokens:
  "{{period}}": January 2025
mail:
  sender_name: Volunteer Office
  sender_email: office@example.org
  period: January 2025
conversion:
  backend: container
`), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	cfg := loadRunConfig()
	assert.Equal(t, "roster.xlsx", cfg.InputPath)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "Volunteer Office", cfg.Mail.SenderName)
	assert.Equal(t, "January 2025", cfg.Mail.Period)
	assert.Equal(t, types.BackendContainer, cfg.Conversion.Backend)
	assert.Equal(t, map[string]string{"{{period}}": "January 2025"}, cfg.Tokens)
}

func TestLoadRunConfigPasswordSources(t *testing.T) {
	resetViper(t)
	loadedSecrets = map[string]string{secrets.KeySMTPPassword: "from-secrets-dir"}
	assert.Equal(t, "from-secrets-dir", loadRunConfig().Mail.Password)

	t.Setenv("HOURS_MAILER_MAIL_PASSWORD", "from-env")
	assert.Equal(t, "from-env", loadRunConfig().Mail.Password, "environment wins over .secrets")
}

func TestBindFlags(t *testing.T) {
	resetViper(t)
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("input", "data.xlsx", "")
	cmd.Flags().Bool("dry-run", false, "")
	require.NoError(t, cmd.Flags().Set("input", "flag.xlsx"))
	require.NoError(t, cmd.Flags().Set("dry-run", "true"))

	require.NoError(t, bindFlags(cmd, map[string]string{"input": keyInput, "dry-run": keyDryRun}))
	cfg := loadRunConfig()
	assert.Equal(t, "flag.xlsx", cfg.InputPath)
	assert.True(t, cfg.DryRun)

	assert.Error(t, bindFlags(cmd, map[string]string{"missing": keyInput}))
}

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"run", "summarize", "fill", "history", "version"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
			}
		}
		assert.True(t, found, "subcommand %s not registered", name)
	}
}
