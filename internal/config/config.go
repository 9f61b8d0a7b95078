// Package config holds runtime configuration: defaults, CLI flag binding,
// the settings file, and validation.
//
// Settings are fixed for a whole batch and may come from the settings file
// or the environment. The rest of Config describes one invocation and only
// comes from flags.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/backmassage/dvstamp/internal/naming"
	"github.com/backmassage/dvstamp/internal/offset"
)

// --- Enum types for validated string fields ---

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// VPos is the vertical placement of the overlay text.
type VPos string

const (
	VPosTop    VPos = "t"
	VPosBottom VPos = "b" // Default.
)

// tapeTargets are the ffmpeg -target presets that produce a raw DV stream.
var tapeTargets = []string{"ntsc-dv", "pal-dv", "ntsc-dv50", "pal-dv50"}

// Settings are batch-wide values. Load order: defaults, settings file,
// DVSTAMP_* environment, flags.
type Settings struct {
	FontFile      string    `mapstructure:"font_file" toml:"font_file"`           // Default: "" (ffmpeg's fontconfig default).
	FFmpegPath    string    `mapstructure:"ffmpeg_path" toml:"ffmpeg_path"`       // Default: "ffmpeg".
	MediainfoPath string    `mapstructure:"mediainfo_path" toml:"mediainfo_path"` // Default: "mediainfo".
	ExiftoolPath  string    `mapstructure:"exiftool_path" toml:"exiftool_path"`   // Default: "exiftool".
	TapeTarget    string    `mapstructure:"tape_target" toml:"tape_target"`       // Default: "ntsc-dv".
	StampLayout   string    `mapstructure:"stamp_layout" toml:"stamp_layout"`     // Default: "2006-01-02_1504_05".
	LogFile       string    `mapstructure:"log_file" toml:"log_file"`             // Optional JSON log sink.
	LogLevel      string    `mapstructure:"log_level" toml:"log_level"`           // Default: "info".
	ColorMode     ColorMode `mapstructure:"color" toml:"color"`                   // Default: "auto".
	Jobs          int       `mapstructure:"jobs" toml:"jobs"`                     // Default: 1.
}

// Config holds all runtime settings for one invocation. It is populated by
// [DefaultConfig], then by the bound flags and [LoadSettings], before being
// passed (by pointer) to packages that need it.
type Config struct {
	Settings

	ConfigPath string // --config; empty means the default location.

	// Timestamp resolution.
	Datetime   string        // Explicit "yyyy-mm-dd[ HH:MM[:SS]]"; bypasses metadata.
	OffsetText string        // Raw --offset value.
	Offset     offset.Offset // Parsed from OffsetText by Validate.
	GuessDrift bool          // Correct drift from a timestamp in the file name.

	// Overlay.
	Begin        float64 // Default: 1.0 seconds.
	Length       float64 // Default: 4.0 seconds; negative keeps the text to the end.
	ShowDate     bool    // Default: true. Cleared by --no-date.
	ShowTime     bool    // Default: true. Cleared by --no-time.
	ShowTimecode bool
	SizePercent  float64 // Default: 5 (% of frame height).
	TextColor    string  // Default: "white".
	Position     VPos    // Default: "b".

	// Encode.
	VideoFilters    []string // --vf, in order.
	AudioFilters    []string // --af, in order.
	EncodeArgs      string   // Shell-quoted output options merged last.
	OutputExt       string   // Replace the output extension ("mp4", ".dv").
	Bounce          bool     // Render audio to PCM before the main encode.
	DeinterlaceAuto bool     // Default: true. Cleared by --no-deinterlace.

	// Behavior.
	Yes     bool // Overwrite existing outputs and rename targets.
	DryRun  bool // Print commands and renames; touch nothing.
	Verbose bool
}

// DefaultSettings returns the built-in batch settings.
func DefaultSettings() Settings {
	return Settings{
		FFmpegPath:    "ffmpeg",
		MediainfoPath: "mediainfo",
		ExiftoolPath:  "exiftool",
		TapeTarget:    "ntsc-dv",
		StampLayout:   naming.DefaultStampLayout,
		LogLevel:      "info",
		ColorMode:     ColorAuto,
		Jobs:          1,
	}
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		Settings:        DefaultSettings(),
		Begin:           1.0,
		Length:          4.0,
		ShowDate:        true,
		ShowTime:        true,
		SizePercent:     5,
		TextColor:       "white",
		Position:        VPosBottom,
		DeinterlaceAuto: true,
	}
}

// Validate checks enum fields and ranges, and parses the offset.
func (c *Config) Validate() error {
	if err := c.Settings.Validate(); err != nil {
		return err
	}

	switch c.Position {
	case VPosTop, VPosBottom:
		// valid
	default:
		return errors.New("invalid vpos (use 't' or 'b')")
	}

	if c.SizePercent <= 0 || c.SizePercent > 100 {
		return fmt.Errorf("invalid size %v (use a percentage of frame height, 0-100)", c.SizePercent)
	}
	if strings.TrimSpace(c.TextColor) == "" {
		return errors.New("text color must not be empty")
	}

	c.Offset = offset.Offset{}
	if strings.TrimSpace(c.OffsetText) != "" {
		o, err := offset.Parse(c.OffsetText)
		if err != nil {
			return err
		}
		c.Offset = o
	}
	return nil
}

// Validate checks the batch settings.
func (s *Settings) Validate() error {
	switch s.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	valid := false
	for _, t := range tapeTargets {
		if s.TapeTarget == t {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid tape target %q (use one of %s)", s.TapeTarget, strings.Join(tapeTargets, ", "))
	}

	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return errors.New("invalid log level (use 'debug', 'info', 'warn' or 'error')")
	}

	if s.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1 (got %d)", s.Jobs)
	}
	if s.Jobs > 4*runtime.NumCPU() {
		return fmt.Errorf("jobs %d is more than 4x the CPU count", s.Jobs)
	}
	if s.StampLayout == "" {
		return errors.New("stamp layout must not be empty")
	}
	return nil
}
