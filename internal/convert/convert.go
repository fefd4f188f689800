// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns filled .docx documents into PDF with pluggable
// LibreOffice backends: a local soffice binary or a container image.
package convert

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pdiddy/hours-mailer/internal/container"
	"github.com/pdiddy/hours-mailer/pkg/types"
)

// DefaultImage is the LibreOffice image used by the container backend.
const DefaultImage = "docker.io/linuxserver/libreoffice:latest"

// ErrEmptyOutput indicates the backend finished without producing a PDF.
var ErrEmptyOutput = errors.New("conversion produced no PDF")

// Converter transforms a .docx file into a PDF. Different backends
// (soffice, container) implement this interface.
type Converter interface {
	// Convert reads docxPath and writes pdfPath, replacing an existing file.
	Convert(docxPath, pdfPath string) error
}

// New builds the converter selected by cfg.
func New(cfg types.ConversionConfig) (Converter, error) {
	switch cfg.Backend {
	case types.BackendSoffice, "":
		return NewSofficeConverter(cfg.SofficePath)
	case types.BackendContainer:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		image := cfg.Image
		if image == "" {
			image = DefaultImage
		}
		return NewContainerConverter(rt, image)
	default:
		return nil, fmt.Errorf("unknown conversion backend %q: use soffice or container", cfg.Backend)
	}
}

// sofficeArgs are the LibreOffice arguments converting src into outDir.
func sofficeArgs(outDir, src string) []string {
	return []string{"--headless", "--norestore", "--convert-to", "pdf", "--outdir", outDir, src}
}

// pdfName is the file name LibreOffice gives the PDF of docxPath.
func pdfName(docxPath string) string {
	base := filepath.Base(docxPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
}

// workDir creates a scratch directory next to pdfPath so the final rename
// stays on one filesystem.
func workDir(pdfPath string) (string, error) {
	dir := filepath.Dir(pdfPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	w, err := os.MkdirTemp(dir, ".convert-*")
	if err != nil {
		return "", fmt.Errorf("creating work directory: %w", err)
	}
	return w, nil
}

// finish verifies the produced PDF and moves it over pdfPath.
func finish(produced, pdfPath string, verify func(string) error) error {
	if _, err := os.Stat(produced); err != nil {
		return fmt.Errorf("%w: %s", ErrEmptyOutput, filepath.Base(produced))
	}
	if err := verify(produced); err != nil {
		return err
	}
	if err := os.Remove(pdfPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing existing %s: %w", pdfPath, err)
	}
	if err := os.Rename(produced, pdfPath); err != nil {
		return fmt.Errorf("moving PDF into place: %w", err)
	}
	return nil
}

// VerifyPDF checks that path is a readable PDF with at least one page.
func VerifyPDF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("checking PDF: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrEmptyOutput, filepath.Base(path))
	}

	pages, err := api.PageCount(f, nil)
	if err != nil {
		return fmt.Errorf("invalid PDF %s: %w", filepath.Base(path), err)
	}
	if pages == 0 {
		return fmt.Errorf("%w: %s has no pages", ErrEmptyOutput, filepath.Base(path))
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// trimOutput shortens tool output for error messages.
func trimOutput(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
