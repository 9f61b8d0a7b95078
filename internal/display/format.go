package display

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatBytes returns a human-readable IEC size (B, KiB, MiB, ...).
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		bytes = -bytes
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatBytesWithSign prefixes with + or - for delta display (e.g. "- 1.2 GiB").
func FormatBytesWithSign(bytes int64) string {
	switch {
	case bytes > 0:
		return "+ " + FormatBytes(bytes)
	case bytes < 0:
		return "- " + FormatBytes(bytes)
	}
	return FormatBytes(0)
}

// FormatElapsed renders d as m:ss, or h:mm:ss past an hour.
func FormatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
