// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// sofficeBins are tried in order when no explicit binary is configured.
var sofficeBins = []string{"soffice", "libreoffice"}

// runFunc executes a command and returns its combined output.
type runFunc func(name string, args ...string) ([]byte, error)

func execRun(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// SofficeConverter converts documents with a locally installed LibreOffice.
type SofficeConverter struct {
	bin    string
	run    runFunc
	verify func(string) error
}

// NewSofficeConverter locates the soffice binary. An empty bin searches PATH
// for soffice, then libreoffice.
func NewSofficeConverter(bin string) (*SofficeConverter, error) {
	candidates := sofficeBins
	if bin != "" {
		candidates = []string{bin}
	}
	for _, c := range candidates {
		if path, err := exec.LookPath(c); err == nil {
			return &SofficeConverter{bin: path, run: execRun, verify: VerifyPDF}, nil
		}
	}
	return nil, fmt.Errorf("LibreOffice not found (tried %v): install it or use --backend container", candidates)
}

// Convert runs soffice headless into a scratch directory next to pdfPath and
// moves the verified result into place.
func (s *SofficeConverter) Convert(docxPath, pdfPath string) error {
	src, err := filepath.Abs(docxPath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", docxPath, err)
	}
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("reading %s: %w", docxPath, err)
	}

	work, err := workDir(pdfPath)
	if err != nil {
		return err
	}
	defer os.RemoveAll(work)

	if out, err := s.run(s.bin, sofficeArgs(work, src)...); err != nil {
		return fmt.Errorf("soffice failed: %w (%s)", err, trimOutput(out))
	}
	return finish(filepath.Join(work, pdfName(src)), pdfPath, s.verify)
}
