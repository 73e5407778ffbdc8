package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// ErrEmptyReport is returned when there is no report text to export.
var ErrEmptyReport = errors.New("export: report is empty")

// Slug turns a company name into a file name stem.
func Slug(company string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(company)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	slug := strings.TrimRight(b.String(), "_")
	if slug == "" {
		return "research"
	}
	return slug
}

// Filename returns the export file name for a company and extension.
func Filename(company, ext string) string {
	return Slug(company) + "_report." + strings.TrimPrefix(ext, ".")
}

// WriteMarkdown writes the report to dir and returns the file path.
func WriteMarkdown(dir, company, report string) (string, error) {
	return writeFile(dir, Filename(company, "md"), []byte(report), report)
}

func writeFile(dir, name string, data []byte, report string) (string, error) {
	if strings.TrimSpace(report) == "" {
		return "", ErrEmptyReport
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}
