// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/hours-mailer/internal/pipeline"
)

func TestBatchError(t *testing.T) {
	tests := []struct {
		name    string
		result  pipeline.BatchResult
		skipped int
		want    string
	}{
		{name: "clean run", result: pipeline.BatchResult{Sent: 3}},
		{name: "row failed", result: pipeline.BatchResult{Sent: 2, Failed: 1}, want: "1 row(s) failed"},
		{name: "row skipped", result: pipeline.BatchResult{Sent: 3}, skipped: 2, want: "2 row(s) skipped"},
		{name: "both", result: pipeline.BatchResult{Failed: 1}, skipped: 1, want: "1 row(s) failed, 1 row(s) skipped"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := batchError(tt.result, tt.skipped)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.want)
		})
	}
}
