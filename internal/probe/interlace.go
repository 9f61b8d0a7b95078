package probe

import "strings"

// IsInterlaced reports whether the video track is field-coded. DV is always
// interlaced; mediainfo says so in ScanType.
func (r *Report) IsInterlaced() bool {
	if r.Video == nil {
		return false
	}
	return InterlacedScan(r.Video.ScanType)
}

// InterlacedScan reports whether a mediainfo ScanType value denotes
// field-coded video.
func InterlacedScan(scanType string) bool {
	switch strings.ToLower(strings.TrimSpace(scanType)) {
	case "interlaced", "mbaff":
		return true
	}
	return false
}
