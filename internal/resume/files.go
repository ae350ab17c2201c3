package resume

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

var allowedExt = map[string]bool{".pdf": true, ".doc": true, ".docx": true, ".txt": true}

// AllowedExtension reports whether name has an accepted resume extension.
func AllowedExtension(name string) bool {
	return allowedExt[strings.ToLower(filepath.Ext(name))]
}

// SanitizeFilename reduces an uploaded name to a safe ASCII basename.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	var b strings.Builder
	lastSpace := false
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_'):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace && b.Len() > 0 {
				b.WriteByte('_')
			}
			lastSpace = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "upload"
	}
	return out
}

// StoredName prefixes the sanitized name with a unix timestamp.
func StoredName(name string, at time.Time) string {
	return fmt.Sprintf("%d_%s", at.Unix(), name)
}

// SaveUpload copies the multipart file into dir and returns the full path. The file is
// created exclusively: when storedName is taken, a short random tag is inserted after the
// timestamp prefix, so the returned base name may differ from storedName.
func SaveUpload(fh *multipart.FileHeader, dir, storedName string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	path, dst, err := createUnique(dir, storedName)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, dst.Close()
}

const maxNameAttempts = 5

func createUnique(dir, storedName string) (string, *os.File, error) {
	name := storedName
	for attempt := 0; ; attempt++ {
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return path, f, nil
		}
		if !os.IsExist(err) || attempt >= maxNameAttempts {
			return "", nil, fmt.Errorf("create file: %w", err)
		}
		name = taggedName(storedName, uuid.NewString()[:8])
	}
}

// taggedName turns "1700000000_cv.pdf" into "1700000000_<tag>_cv.pdf".
func taggedName(storedName, tag string) string {
	if i := strings.IndexByte(storedName, '_'); i > 0 {
		return storedName[:i+1] + tag + storedName[i:]
	}
	return tag + "_" + storedName
}
