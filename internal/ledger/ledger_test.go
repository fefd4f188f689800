// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/hours-mailer/pkg/types"
)

// testStore opens a ledger in a temp dir with a clock that advances one
// second per call.
func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s, dir
}

func outcome(row int, name string, state types.RowState, errText string) types.RowOutcome {
	return types.RowOutcome{
		Row:       row,
		Name:      name,
		Email:     strings.ToLower(name) + "@example.org",
		State:     state,
		Artifacts: types.Artifacts{PDFPath: "output/filled_document_" + name + ".pdf"},
		Error:     errText,
	}
}

func TestOpenCreatesDatabase(t *testing.T) {
	_, dir := testStore(t)
	_, err := os.Stat(filepath.Join(dir, DBFile))
	assert.NoError(t, err)
}

func TestOpenTwice(t *testing.T) {
	dir := t.TempDir()
	s1, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(dir)
	require.NoError(t, err, "schema creation must be idempotent")
	require.NoError(t, s2.Close())
}

func TestRecordAndDeliveries(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	runID, err := s.BeginRun(ctx, "data.xlsx", false)
	require.NoError(t, err)
	_, err = uuid.Parse(runID)
	require.NoError(t, err, "run ID should be a UUID")

	require.NoError(t, s.Record(ctx, runID, outcome(2, "Ana", types.StateSent, "")))
	require.NoError(t, s.Record(ctx, runID, outcome(3, "Ben", types.StateFilled, "convert: soffice failed")))
	require.NoError(t, s.Record(ctx, runID, outcome(4, "Ana", types.StateSent, "")))

	all, err := s.Deliveries(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 4, all[0].Row, "most recent first")
	assert.Equal(t, 2, all[2].Row)
	assert.Equal(t, runID, all[0].RunID)
	assert.False(t, all[0].DryRun)
	assert.Equal(t, "ana@example.org", all[0].Email)
	assert.Equal(t, "output/filled_document_Ana.pdf", all[0].PDFPath)
	assert.False(t, all[0].RecordedAt.IsZero())

	ben := all[1]
	assert.Equal(t, "Ben", ben.Name)
	assert.Equal(t, string(types.StateFilled), ben.State)
	assert.Equal(t, "convert: soffice failed", ben.Error)

	ana, err := s.Deliveries(ctx, Query{Name: "Ana"})
	require.NoError(t, err)
	assert.Len(t, ana, 2)

	limited, err := s.Deliveries(ctx, Query{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := s.Deliveries(ctx, Query{Name: "Nobody"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDryRunFlag(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	runID, err := s.BeginRun(ctx, "data.xlsx", true)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, runID, outcome(2, "Ana", types.StateConverted, "")))

	got, err := s.Deliveries(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].DryRun)
}

func TestRecordUnknownRun(t *testing.T) {
	s, _ := testStore(t)
	err := s.Record(context.Background(), "missing-run", outcome(2, "Ana", types.StateSent, ""))
	assert.Error(t, err, "foreign key should reject unknown run")
}

func TestWrite(t *testing.T) {
	deliveries := []Delivery{
		{RunID: "r1", Row: 2, Name: "Ana", Email: "ana@example.org", State: "sent", RecordedAt: time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)},
		{RunID: "r1", Row: 3, Name: "Ben", State: "filled", Error: "boom", DryRun: true},
	}

	var table bytes.Buffer
	require.NoError(t, Write(&table, deliveries, FormatTable))
	out := table.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "ana@example.org")
	assert.Contains(t, out, "filled (dry run)")

	var y bytes.Buffer
	require.NoError(t, Write(&y, deliveries, FormatYAML))
	var fromYAML []Delivery
	require.NoError(t, yaml.Unmarshal(y.Bytes(), &fromYAML))
	require.Len(t, fromYAML, 2)
	assert.Equal(t, "boom", fromYAML[1].Error)

	var j bytes.Buffer
	require.NoError(t, Write(&j, deliveries, FormatJSON))
	var fromJSON []Delivery
	require.NoError(t, json.Unmarshal(j.Bytes(), &fromJSON))
	assert.Equal(t, "Ana", fromJSON[0].Name)

	var empty bytes.Buffer
	require.NoError(t, Write(&empty, nil, FormatTable))
	assert.Equal(t, "no deliveries recorded\n", empty.String())

	assert.Error(t, Write(&empty, deliveries, "csv"))
}
