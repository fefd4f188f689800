// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package roster

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var header = []interface{}{"Name", "HT", "H1", "H2", "H3", "H4", "Tasks", "Feedback", "Email"}

// writeRoster saves rows (header first) to a workbook in a temp dir.
func writeRoster(t *testing.T, sheet string, rows ...[]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "" && sheet != "Sheet1" {
		idx, err := f.NewSheet(sheet)
		require.NoError(t, err)
		f.SetActiveSheet(idx)
	} else {
		sheet = "Sheet1"
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoad(t *testing.T) {
	path := writeRoster(t, "",
		header,
		[]interface{}{"Ana", 2, 5, 3.5, nil, 1, "Sorting", "Great work", "ana@example.com"},
		[]interface{}{"Ben", nil, nil, nil, nil, nil, "Driving", "", "ben@example.com"},
	)

	res, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", res.Sheet)
	assert.Empty(t, res.Skipped)
	require.Len(t, res.Records, 2)

	ana := res.Records[0]
	assert.Equal(t, 2, ana.Row)
	assert.Equal(t, "Ana", ana.Name)
	require.NotNil(t, ana.HeaderHours)
	assert.Equal(t, 2.0, *ana.HeaderHours)
	require.NotNil(t, ana.Hours[0])
	assert.Equal(t, 5.0, *ana.Hours[0])
	assert.Equal(t, 3.5, *ana.Hours[1])
	assert.Nil(t, ana.Hours[2])
	assert.Equal(t, 1.0, *ana.Hours[3])
	assert.Equal(t, "Sorting", ana.Tasks)
	assert.Equal(t, "Great work", ana.Feedback)
	assert.Equal(t, "ana@example.com", ana.Email)

	ben := res.Records[1]
	assert.Nil(t, ben.HeaderHours)
	for i, h := range ben.Hours {
		assert.Nil(t, h, "h%d should be nil", i+1)
	}
}

func TestLoadSkipsBadRows(t *testing.T) {
	path := writeRoster(t, "",
		header,
		[]interface{}{"", 1, 1, 1, 1, 1, "no name", "", "x@example.com"},
		[]interface{}{},
		[]interface{}{"Cai", "x", "lots", nil, nil, nil, "", "", "cai@example.com"},
		[]interface{}{"Dee", nil, 4, nil, nil, nil, "", "", "dee@example.com"},
	)

	res, err := Load(path, "")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Dee", res.Records[0].Name)
	assert.Equal(t, 5, res.Records[0].Row)

	require.Len(t, res.Skipped, 2)
	assert.Equal(t, 2, res.Skipped[0].Row)
	assert.Contains(t, res.Skipped[0].Error(), "missing volunteer name")
	assert.Equal(t, 4, res.Skipped[1].Row)
	assert.Contains(t, res.Skipped[1].Error(), "column h1")
	assert.Equal(t, "Cai", res.Skipped[1].Name)
}

func TestLoadKeepsTextHeaderHours(t *testing.T) {
	path := writeRoster(t, "",
		header,
		[]interface{}{"Ana", "Dec 2024", 5, 3, nil, 1, "Sorting", "", "ana@example.com"},
	)

	res, err := Load(path, "")
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)
	require.Len(t, res.Records, 1)

	ana := res.Records[0]
	assert.Nil(t, ana.HeaderHours)
	assert.Equal(t, "Dec 2024", ana.HeaderText)
	require.NotNil(t, ana.Hours[0])
	assert.Equal(t, 5.0, *ana.Hours[0])
	assert.Equal(t, 3.0, *ana.Hours[1])
	assert.Equal(t, 1.0, *ana.Hours[3])
}

func TestLoadNamedSheet(t *testing.T) {
	path := writeRoster(t, "December",
		header,
		[]interface{}{"Eli", nil, 2, 2, nil, nil, "", "", "eli@example.com"},
	)

	res, err := Load(path, "December")
	require.NoError(t, err)
	assert.Equal(t, "December", res.Sheet)
	require.Len(t, res.Records, 1)

	active, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "December", active.Sheet, "empty sheet name should select the active sheet")
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.xlsx"), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "opening roster")
	})

	t.Run("header only", func(t *testing.T) {
		path := writeRoster(t, "", header)
		_, err := Load(path, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoRows))
	})

	t.Run("unknown sheet", func(t *testing.T) {
		path := writeRoster(t, "", header, []interface{}{"Ana"})
		_, err := Load(path, "Nope")
		require.Error(t, err)
	})
}

func TestParseHours(t *testing.T) {
	tests := []struct {
		in      string
		want    *float64
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "4", want: ptr(4)},
		{in: "2.25", want: ptr(2.25)},
		{in: "four", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHours(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func ptr(v float64) *float64 { return &v }
