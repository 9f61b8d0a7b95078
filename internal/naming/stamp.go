package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DefaultStampLayout renders 2005-07-02 09:48:06 as "2005-07-02_0948_06".
const DefaultStampLayout = "2006-01-02_1504_05"

// stampRef is formatted with a layout to learn how long its output is.
var stampRef = time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)

// FormatStamp renders t with layout, or DefaultStampLayout when layout is empty.
func FormatStamp(t time.Time, layout string) string {
	if layout == "" {
		layout = DefaultStampLayout
	}
	return t.Format(layout)
}

// RenameTarget returns the path path should be renamed to so that its stem is
// the recording time t. Directory and extension are kept.
func RenameTarget(path string, t time.Time, layout string) string {
	dir := filepath.Dir(path)
	return filepath.Join(dir, FormatStamp(t, layout)+filepath.Ext(path))
}

// ParseStamp reads a time from the start of basename's stem, the inverse of
// RenameTarget. Text after the stamp (a collision suffix, a camera counter)
// is ignored. The result is a wall-clock time carried in UTC.
func ParseStamp(basename, layout string) (time.Time, error) {
	if layout == "" {
		layout = DefaultStampLayout
	}
	stem := strings.TrimSuffix(basename, filepath.Ext(basename))
	if n := len(stampRef.Format(layout)); len(stem) > n {
		stem = stem[:n]
	}
	t, err := time.ParseInLocation(layout, stem, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s does not start with a %q timestamp: %w", basename, layout, err)
	}
	return t, nil
}
