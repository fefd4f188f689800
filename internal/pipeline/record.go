// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/hours-mailer/internal/docx"
	"github.com/pdiddy/hours-mailer/pkg/types"
)

const artifactPrefix = "filled_document_"

// Placeholder tokens filled from a roster row.
const (
	TokenName     = "{{name}}"
	TokenHeader   = "{{ht}}"
	TokenTasks    = "{{tasks}}"
	TokenFeedback = "{{feedback}}"
)

// PeriodToken returns the placeholder for period hours i (0-based), {{h1}}..{{h4}}.
func PeriodToken(i int) string {
	return "{{h" + strconv.Itoa(i+1) + "}}"
}

// Substitutions builds the placeholder map for one record.
func Substitutions(rec types.VolunteerRecord) docx.Substitutions {
	subs := docx.Substitutions{
		{Token: TokenName, Value: rec.Name},
		{Token: TokenHeader, Value: headerValue(rec)},
	}
	for i, h := range rec.Hours {
		subs = append(subs, docx.Substitution{Token: PeriodToken(i), Value: h})
	}
	return append(subs,
		docx.Substitution{Token: TokenTasks, Value: rec.Tasks},
		docx.Substitution{Token: TokenFeedback, Value: rec.Feedback},
	)
}

func headerValue(rec types.VolunteerRecord) any {
	if rec.HeaderHours == nil && rec.HeaderText != "" {
		return rec.HeaderText
	}
	return rec.HeaderHours
}

// StaticSubstitutions turns configured tokens into a map applied after the
// record map. Tokens are ordered by name so runs are reproducible.
func StaticSubstitutions(tokens map[string]string) docx.Substitutions {
	keys := make([]string, 0, len(tokens))
	for k := range tokens {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	subs := make(docx.Substitutions, 0, len(keys))
	for _, k := range keys {
		subs = append(subs, docx.Substitution{Token: k, Value: tokens[k]})
	}
	return subs
}

// ArtifactPaths derives the document and PDF paths for name under outDir.
// Path separators in the name are replaced so artifacts stay in outDir.
func ArtifactPaths(outDir, name string) types.Artifacts {
	base := artifactPrefix + sanitize(name)
	return types.Artifacts{
		DocumentPath: filepath.Join(outDir, base+".docx"),
		PDFPath:      filepath.Join(outDir, base+".pdf"),
	}
}

var unsafeName = strings.NewReplacer("/", "_", `\`, "_", "\x00", "_")

func sanitize(name string) string {
	return unsafeName.Replace(strings.TrimSpace(name))
}
