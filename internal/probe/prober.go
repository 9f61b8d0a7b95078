package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Probe runs a single mediainfo JSON call against path and returns the
// parsed result.
func Probe(ctx context.Context, bin, path string) (*Report, error) {
	if bin == "" {
		bin = "mediainfo"
	}
	cmd := exec.CommandContext(ctx, bin, "--Output=JSON", path)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("mediainfo %q: %w", path, err)
	}

	return ParseJSON(out)
}

// ParseJSON converts raw mediainfo JSON output into a Report.
// Exported for testing without a real mediainfo binary.
func ParseJSON(data []byte) (*Report, error) {
	var raw mediainfoOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse mediainfo JSON: %w", err)
	}
	if raw.Media == nil {
		return nil, fmt.Errorf("parse mediainfo JSON: no media section (unsupported file?)")
	}
	return buildReport(raw.Media), nil
}

// --- mediainfo JSON wire types ---

// Track values are strings except for nested objects such as "extra",
// which are dropped.
type mediainfoOutput struct {
	Media *mediainfoMedia `json:"media"`
}

type mediainfoMedia struct {
	Ref    string           `json:"@ref"`
	Tracks []map[string]any `json:"track"`
}

// --- Conversion from wire types to domain types ---

func buildReport(m *mediainfoMedia) *Report {
	r := &Report{Ref: m.Ref}
	for _, raw := range m.Tracks {
		f := stringFields(raw)
		switch f["@type"] {
		case "General":
			r.General = GeneralTrack{
				Format:       f["Format"],
				RecordedDate: f["Recorded_Date"],
				EncodedDate:  f["Encoded_Date"],
				FrameRate:    parseFloat(f["FrameRate"]),
				Duration:     parseFloat(f["Duration"]),
				FileSize:     parseInt64(f["FileSize"]),
				Fields:       f,
			}
		case "Video":
			if r.Video == nil {
				r.Video = &VideoTrack{
					Format:    f["Format"],
					Width:     parseInt(f["Width"]),
					Height:    parseInt(f["Height"]),
					FrameRate: parseFloat(f["FrameRate"]),
					ScanType:  f["ScanType"],
					ScanOrder: f["ScanOrder"],
					Fields:    f,
				}
			}
		case "Audio":
			if r.Audio == nil {
				r.Audio = &AudioTrack{
					Format:       f["Format"],
					Channels:     parseInt(f["Channels"]),
					SamplingRate: parseInt(f["SamplingRate"]),
					Fields:       f,
				}
			}
		}
	}
	return r
}

func stringFields(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// --- Numeric parsing helpers (mediainfo returns numbers as strings) ---

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// parseInt accepts "48000" and "48000 / 44100" (multiple values, first wins).
func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " /"); i > 0 {
		s = s[:i]
	}
	n, _ := strconv.Atoi(s)
	return n
}
