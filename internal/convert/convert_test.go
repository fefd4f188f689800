// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/hours-mailer/internal/container"
	"github.com/pdiddy/hours-mailer/pkg/types"
)

// minimalPDF returns a one-page PDF with a correct cross-reference table.
func minimalPDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>",
	}
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objects)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}

func noVerify(string) error { return nil }

// setupDocx writes a placeholder .docx and returns its path and the temp dir.
func setupDocx(t *testing.T) (docxPath, dir string) {
	t.Helper()
	dir = t.TempDir()
	docxPath = filepath.Join(dir, "filled_document_Ana.docx")
	require.NoError(t, os.WriteFile(docxPath, []byte("docx"), 0o644))
	return docxPath, dir
}

func TestVerifyPDF(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.pdf")
	require.NoError(t, os.WriteFile(good, minimalPDF(), 0o644))
	assert.NoError(t, VerifyPDF(good))

	empty := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	err := VerifyPDF(empty)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyOutput))

	junk := filepath.Join(dir, "junk.pdf")
	require.NoError(t, os.WriteFile(junk, []byte("not a pdf at all"), 0o644))
	err = VerifyPDF(junk)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PDF")

	require.Error(t, VerifyPDF(filepath.Join(dir, "missing.pdf")))
}

func TestSofficeConvert(t *testing.T) {
	docxPath, dir := setupDocx(t)
	pdfPath := filepath.Join(dir, "filled_document_Ana.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("stale"), 0o644))

	var gotArgs []string
	s := &SofficeConverter{
		bin: "/usr/bin/soffice",
		run: func(name string, args ...string) ([]byte, error) {
			gotArgs = args
			outDir := args[len(args)-2]
			return nil, os.WriteFile(filepath.Join(outDir, "filled_document_Ana.pdf"), minimalPDF(), 0o644)
		},
		verify: VerifyPDF,
	}

	require.NoError(t, s.Convert(docxPath, pdfPath))

	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "stale PDF should be replaced")
	assert.Equal(t, []string{"--headless", "--norestore", "--convert-to", "pdf", "--outdir"}, gotArgs[:5])
	assert.True(t, filepath.IsAbs(gotArgs[len(gotArgs)-1]))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".convert-"), "work dir %s left behind", e.Name())
	}
}

func TestSofficeConvertFailures(t *testing.T) {
	tests := []struct {
		name    string
		run     runFunc
		wantErr string
	}{
		{
			name: "tool fails",
			run: func(string, ...string) ([]byte, error) {
				return []byte("Error: source file could not be loaded"), errors.New("exit status 1")
			},
			wantErr: "could not be loaded",
		},
		{
			name:    "tool succeeds without output",
			run:     func(string, ...string) ([]byte, error) { return nil, nil },
			wantErr: ErrEmptyOutput.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docxPath, dir := setupDocx(t)
			s := &SofficeConverter{bin: "soffice", run: tt.run, verify: noVerify}
			err := s.Convert(docxPath, filepath.Join(dir, "out.pdf"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSofficeConvertMissingSource(t *testing.T) {
	dir := t.TempDir()
	s := &SofficeConverter{
		bin: "soffice",
		run: func(string, ...string) ([]byte, error) {
			t.Fatal("tool should not run")
			return nil, nil
		},
		verify: noVerify,
	}
	require.Error(t, s.Convert(filepath.Join(dir, "missing.docx"), filepath.Join(dir, "out.pdf")))
}

// fakeRuntime implements container.Runtime for testing.
type fakeRuntime struct {
	hasImage bool
	mount    container.Mount
	args     []string
	produce  bool
}

func (f *fakeRuntime) Name() string    { return "docker" }
func (f *fakeRuntime) Available() bool { return true }

func (f *fakeRuntime) ImageExists(image string) error {
	if !f.hasImage {
		return fmt.Errorf("image %s not found", image)
	}
	return nil
}

func (f *fakeRuntime) Run(image string, m container.Mount, args ...string) ([]byte, error) {
	f.mount = m
	f.args = args
	if f.produce {
		return nil, os.WriteFile(filepath.Join(m.HostDir, "filled_document_Ana.pdf"), []byte("%PDF-1.4"), 0o644)
	}
	return []byte("boom"), errors.New("exit status 77")
}

func TestContainerConvert(t *testing.T) {
	docxPath, dir := setupDocx(t)
	rt := &fakeRuntime{hasImage: true, produce: true}

	c, err := NewContainerConverter(rt, DefaultImage)
	require.NoError(t, err)
	c.verify = noVerify

	pdfPath := filepath.Join(dir, "filled_document_Ana.pdf")
	require.NoError(t, c.Convert(docxPath, pdfPath))

	_, err = os.Stat(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, containerDir, rt.mount.ContainerDir)
	assert.True(t, filepath.IsAbs(rt.mount.HostDir))
	assert.Equal(t, "soffice", rt.args[0])
	assert.Equal(t, "/data/filled_document_Ana.docx", rt.args[len(rt.args)-1])
}

func TestContainerConvertFailure(t *testing.T) {
	docxPath, dir := setupDocx(t)
	c, err := NewContainerConverter(&fakeRuntime{hasImage: true}, DefaultImage)
	require.NoError(t, err)

	err = c.Convert(docxPath, filepath.Join(dir, "out.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestNewContainerConverterMissingImage(t *testing.T) {
	_, err := NewContainerConverter(&fakeRuntime{}, "nope:latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope:latest")
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(types.ConversionConfig{Backend: "word"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown conversion backend")
}

func TestNewSofficeConverterMissingBinary(t *testing.T) {
	_, err := NewSofficeConverter(filepath.Join(t.TempDir(), "no-such-soffice"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LibreOffice not found")
}

func TestPDFName(t *testing.T) {
	assert.Equal(t, "filled_document_Ana.pdf", pdfName("/out/filled_document_Ana.docx"))
	assert.Equal(t, "a.b.pdf", pdfName("a.b.docx"))
}
