package resume

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const maxTextBytes = 2 << 20

// ExtractText returns the plain text of a resume file, chosen by extension.
func ExtractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(bytes.ToValidUTF8(b, nil)), nil
	case ".docx":
		return docxText(path)
	case ".pdf":
		return pdfText(path)
	case ".doc":
		return docText(path)
	}
	return "", fmt.Errorf("unsupported file type %q", filepath.Ext(path))
}

func pdfText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	rd, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	b, err := io.ReadAll(io.LimitReader(rd, maxTextBytes))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// docxText walks word/document.xml, emitting text runs and a newline per paragraph.
func docxText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()

		var b strings.Builder
		dec := xml.NewDecoder(io.LimitReader(rc, maxTextBytes))
		inText := false
		for {
			tok, err := dec.Token()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", fmt.Errorf("parse docx: %w", err)
			}
			switch t := tok.(type) {
			case xml.StartElement:
				inText = t.Name.Local == "t"
				if t.Name.Local == "tab" {
					b.WriteByte(' ')
				}
			case xml.EndElement:
				inText = false
				if t.Name.Local == "p" {
					b.WriteByte('\n')
				}
			case xml.CharData:
				if inText {
					b.Write(t)
				}
			}
		}
		return b.String(), nil
	}
	return "", fmt.Errorf("docx without word/document.xml")
}

// docText keeps runs of at least four printable ASCII bytes from a legacy .doc file.
func docText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(raw) > maxTextBytes {
		raw = raw[:maxTextBytes]
	}
	var out []string
	start := -1
	for i := 0; i <= len(raw); i++ {
		printable := i < len(raw) && (raw[i] >= 0x20 && raw[i] < 0x7f || raw[i] == '\n' || raw[i] == '\t')
		if printable {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= 4 {
			out = append(out, string(raw[start:i]))
		}
		start = -1
	}
	return strings.Join(out, " "), nil
}
