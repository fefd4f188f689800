// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hours-mailer/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List deliveries recorded by previous runs",
	Long: `History reads the ledger in the output directory and lists the most
recent row outcomes: who was mailed, who failed and at which stage.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("output-dir", "output", "directory holding ledger.db")
	historyCmd.Flags().String("name", "", "only show this volunteer")
	historyCmd.Flags().Int("limit", 50, "maximum number of deliveries")
	historyCmd.Flags().String("format", ledger.FormatTable, "output format: table, yaml, or json")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{"output-dir": keyOutputDir}); err != nil {
		return err
	}
	cfg := loadRunConfig()
	name, _ := cmd.Flags().GetString("name")
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	dbPath := filepath.Join(cfg.OutputDir, ledger.DBFile)
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no ledger at %s: run hours-mailer run first", dbPath)
	}

	store, err := ledger.Open(cfg.OutputDir)
	if err != nil {
		return err
	}
	defer store.Close()

	deliveries, err := store.Deliveries(cmd.Context(), ledger.Query{Name: name, Limit: limit})
	if err != nil {
		return err
	}
	return ledger.Write(os.Stdout, deliveries, format)
}
