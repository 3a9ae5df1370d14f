package pdf

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docpulse/docpulse/internal/domain"
)

// allowedExtensions is the set of upload types the pipeline accepts.
var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".bmp":  {},
	".tiff": {},
	".gif":  {},
}

// AllowedExtensions returns the supported upload extensions, sorted.
func AllowedExtensions() []string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ValidateExtension checks an uploaded filename against the supported set.
func ValidateExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return domain.ValidationError(fmt.Sprintf("Unsupported file type: %s", ext), nil)
	}
	return nil
}

// IsPDF reports whether the path names a PDF document. The decision is made
// once at job entry, never re-derived mid-run.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
