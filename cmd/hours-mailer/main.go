// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the hours-mailer CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/hours-mailer/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the hours-mailer CLI.
var rootCmd = &cobra.Command{
	Use:   "hours-mailer",
	Short: "Mail each volunteer a filled hours document and total everyone's hours",
	Long: `hours-mailer reads a roster spreadsheet of volunteer hours, fills a Word
template for each row, converts it to PDF with LibreOffice, emails the PDF to
the volunteer, and writes a summary workbook of total hours per volunteer.

Settings come from hours-mailer.yaml, HOURS_MAILER_* environment variables, and
flags. The SMTP password is read from .secrets/smtp-password or
HOURS_MAILER_MAIL_PASSWORD and is never accepted as a flag.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./hours-mailer.yaml or ~/.config/hours-mailer/hours-mailer.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("hours-mailer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "hours-mailer"))
		}
	}

	setDefaults()
	viper.SetEnvPrefix("HOURS_MAILER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
