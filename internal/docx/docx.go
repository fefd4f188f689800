// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docx fills placeholder tokens in Word (.docx) templates.
//
// Replacement is literal substring matching over the text of each paragraph,
// including paragraphs inside table cells, headers, and footers. It is not a
// templating language. Tokens that Word has split across formatting runs are
// still matched; the replacement takes the formatting of the run where the
// token starts.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ErrTemplateNotFound indicates the template path does not exist.
var ErrTemplateNotFound = errors.New("template not found")

const nsWordML = "w"

// textParts matches the package parts whose paragraphs are filled.
var textParts = regexp.MustCompile(`^word/(document|header\d*|footer\d*)\.xml$`)

// Fill reads the template at templatePath, applies each substitution map in
// order, and writes the result to outputPath. Any existing file at outputPath
// is removed first. A missing template returns ErrTemplateNotFound and writes
// nothing.
func Fill(templatePath, outputPath string, maps ...Substitutions) error {
	if _, err := os.Stat(templatePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrTemplateNotFound, templatePath)
		}
		return fmt.Errorf("checking template: %w", err)
	}

	zr, err := zip.OpenReader(templatePath)
	if err != nil {
		return fmt.Errorf("opening template %s: %w", templatePath, err)
	}
	defer zr.Close()

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".fill-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	writeErr := rewrite(&zr.Reader, tmp, maps)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return writeErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
		os.Remove(tmpPath)
		return fmt.Errorf("removing existing %s: %w", outputPath, err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// rewrite copies every entry of zr into w, filling the text parts.
func rewrite(zr *zip.Reader, w io.Writer, maps []Substitutions) error {
	zw := zip.NewWriter(w)
	for _, f := range zr.File {
		if !textParts.MatchString(f.Name) {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}

		data, err := readEntry(f)
		if err != nil {
			return err
		}
		filled, _, err := fillXML(data, maps)
		if err != nil {
			return fmt.Errorf("filling %s: %w", f.Name, err)
		}

		out, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: f.Modified,
		})
		if err != nil {
			return fmt.Errorf("writing %s: %w", f.Name, err)
		}
		if _, err := out.Write(filled); err != nil {
			return fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing document: %w", err)
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return data, nil
}

// textRun is one <w:t> element and its byte spans in the part.
type textRun struct {
	prefix     string
	openStart  int64
	openEnd    int64
	contentEnd int64
	text       strings.Builder
}

type paragraph struct {
	runs []*textRun
}

// scan locates every paragraph and its text runs. Runs belong to the innermost
// enclosing paragraph.
func scan(data []byte) ([]*paragraph, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		paras []*paragraph
		stack []*paragraph
		cur   *textRun
	)
	for {
		start := dec.InputOffset()
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		end := dec.InputOffset()

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case isWordML(t.Name, "p"):
				p := &paragraph{}
				paras = append(paras, p)
				stack = append(stack, p)
			case isWordML(t.Name, "t") && len(stack) > 0:
				cur = &textRun{prefix: t.Name.Space, openStart: start, openEnd: end}
			}
		case xml.EndElement:
			switch {
			case isWordML(t.Name, "t") && cur != nil:
				cur.contentEnd = start
				top := stack[len(stack)-1]
				top.runs = append(top.runs, cur)
				cur = nil
			case isWordML(t.Name, "p") && len(stack) > 0:
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if cur != nil {
				cur.text.Write(t)
			}
		}
	}
	return paras, nil
}

func isWordML(n xml.Name, local string) bool {
	return n.Space == nsWordML && n.Local == local
}

type edit struct {
	start, end int64
	text       []byte
}

// fillXML applies the substitution maps to every paragraph of a WordprocessingML
// part and returns the rewritten bytes and the number of replacements.
func fillXML(data []byte, maps []Substitutions) ([]byte, int, error) {
	paras, err := scan(data)
	if err != nil {
		return nil, 0, err
	}

	var (
		edits []edit
		total int
	)
	for _, p := range paras {
		if len(p.runs) == 0 {
			continue
		}
		before := make([]string, len(p.runs))
		runs := make([]string, len(p.runs))
		for i, r := range p.runs {
			before[i] = r.text.String()
			runs[i] = before[i]
		}

		n := 0
		for _, m := range maps {
			for _, sub := range m {
				n += replaceAcross(runs, sub.Token, FormatValue(sub.Value))
			}
		}
		if n == 0 {
			continue
		}
		total += n

		for i, r := range p.runs {
			if runs[i] == before[i] {
				continue
			}
			content, err := runContent(r.prefix, runs[i])
			if err != nil {
				return nil, 0, err
			}
			open := fmt.Sprintf(`<%s:t xml:space="preserve">`, r.prefix)
			edits = append(edits,
				edit{start: r.openStart, end: r.openEnd, text: []byte(open)},
				edit{start: r.openEnd, end: r.contentEnd, text: content},
			)
		}
	}
	if len(edits) == 0 {
		return data, 0, nil
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	out := append([]byte(nil), data...)
	for _, e := range edits {
		tail := append([]byte(nil), out[e.end:]...)
		out = append(append(out[:e.start], e.text...), tail...)
	}
	return out, total, nil
}

// runContent escapes text for a <w:t> element. Each line break closes the
// text element, emits <w:br/>, and opens a new one in the same run.
func runContent(prefix, text string) ([]byte, error) {
	var buf bytes.Buffer
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			fmt.Fprintf(&buf, `</%[1]s:t><%[1]s:br/><%[1]s:t xml:space="preserve">`, prefix)
		}
		if err := xml.EscapeText(&buf, []byte(line)); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Paragraphs returns the text of every paragraph in the document body, in
// document order. Table cell paragraphs are included.
func Paragraphs(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		paras, err := scan(data)
		if err != nil {
			return nil, err
		}
		out := make([]string, len(paras))
		for i, p := range paras {
			var b strings.Builder
			for _, r := range p.runs {
				b.WriteString(r.text.String())
			}
			out[i] = b.String()
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s: missing word/document.xml", path)
}
