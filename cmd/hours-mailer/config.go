// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/hours-mailer/internal/convert"
	"github.com/pdiddy/hours-mailer/internal/mail"
	"github.com/pdiddy/hours-mailer/internal/secrets"
	"github.com/pdiddy/hours-mailer/pkg/types"
)

// Config keys. Nested keys map to HOURS_MAILER_<SECTION>_<KEY> in the
// environment.
const (
	keyInput      = "input"
	keySheet      = "sheet"
	keyTemplate   = "template"
	keyOutputDir  = "output_dir"
	keyDryRun     = "dry_run"
	keyTokens     = "tokens"
	keyHost       = "mail.host"
	keyPort       = "mail.port"
	keyUsername   = "mail.username"
	keyPassword   = "mail.password"
	keySenderName = "mail.sender_name"
	keySender     = "mail.sender_email"
	keySubject    = "mail.subject"
	keyBody       = "mail.body"
	keyPeriod     = "mail.period"
	keyBackend    = "conversion.backend"
	keySoffice    = "conversion.soffice_path"
	keyImage      = "conversion.image"
)

func setDefaults() {
	viper.SetDefault(keyInput, "data.xlsx")
	viper.SetDefault(keyTemplate, "template.docx")
	viper.SetDefault(keyOutputDir, "output")
	viper.SetDefault(keyHost, mail.DefaultHost)
	viper.SetDefault(keyPort, mail.DefaultPort)
	viper.SetDefault(keyBackend, string(types.BackendSoffice))
	viper.SetDefault(keyImage, convert.DefaultImage)
}

// bindFlags binds the named flags of cmd to config keys. Binding happens per
// invocation because several subcommands share the same keys.
func bindFlags(cmd *cobra.Command, flagKeys map[string]string) error {
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			return fmt.Errorf("unknown flag %q", flag)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

// loadRunConfig assembles the run configuration from viper and applies
// credentials from the secrets directory.
func loadRunConfig() types.RunConfig {
	cfg := types.RunConfig{
		InputPath:    viper.GetString(keyInput),
		Sheet:        viper.GetString(keySheet),
		TemplatePath: viper.GetString(keyTemplate),
		OutputDir:    viper.GetString(keyOutputDir),
		DryRun:       viper.GetBool(keyDryRun),
		Tokens:       viper.GetStringMapString(keyTokens),
		Mail: types.MailConfig{
			Host:        viper.GetString(keyHost),
			Port:        viper.GetInt(keyPort),
			Username:    viper.GetString(keyUsername),
			Password:    viper.GetString(keyPassword),
			SenderName:  viper.GetString(keySenderName),
			SenderEmail: viper.GetString(keySender),
			Subject:     viper.GetString(keySubject),
			Body:        viper.GetString(keyBody),
			Period:      viper.GetString(keyPeriod),
		},
		Conversion: types.ConversionConfig{
			Backend:     types.ConversionBackend(viper.GetString(keyBackend)),
			SofficePath: viper.GetString(keySoffice),
			Image:       viper.GetString(keyImage),
		},
	}
	secrets.ApplyMail(loadedSecrets, &cfg.Mail)
	return cfg
}
