// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"go.yaml.in/yaml/v3"
)

// Output formats accepted by Write.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
	FormatJSON  = "json"
)

// Write renders deliveries to w in the given format.
func Write(w io.Writer, deliveries []Delivery, format string) error {
	switch format {
	case FormatTable, "":
		return writeTable(w, deliveries)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(deliveries); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(deliveries); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q: use table, yaml or json", format)
	}
}

func writeTable(w io.Writer, deliveries []Delivery) error {
	if len(deliveries) == 0 {
		_, err := fmt.Fprintln(w, "no deliveries recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RECORDED\tROW\tNAME\tEMAIL\tSTATE\tERROR")
	for _, d := range deliveries {
		state := d.State
		if d.DryRun {
			state += " (dry run)"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			d.RecordedAt.Local().Format(time.DateTime), d.Row, d.Name, d.Email, state, d.Error)
	}
	return tw.Flush()
}
