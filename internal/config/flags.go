package config

// This file binds CLI flags to Config. Flags are grouped into settings,
// timestamp resolution, overlay, encode and rename.
// Negated flags (e.g. --no-date) are applied after parsing so Config defaults
// hold unless the user passes the flag.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// settingsFlags maps each settings key to the flag that overrides it.
// LoadSettings binds them into viper.
var settingsFlags = map[string]string{
	"font_file":      "font",
	"ffmpeg_path":    "ffmpeg",
	"mediainfo_path": "mediainfo",
	"exiftool_path":  "exiftool",
	"tape_target":    "tape-target",
	"stamp_layout":   "format",
	"log_file":       "log",
	"log_level":      "log-level",
	"color":          "color-mode",
	"jobs":           "jobs",
}

// NegatedFlags holds boolean flags that are applied after parsing.
type NegatedFlags struct {
	noDate        bool
	noTime        bool
	noDeinterlace bool
	noColor       bool
}

// BindSettingsFlags registers the batch-wide flags shared by every command.
func BindSettingsFlags(fs *pflag.FlagSet, cfg *Config, n *NegatedFlags) {
	s := &cfg.Settings
	fs.StringVar(&cfg.ConfigPath, "config", "", "Settings file (default: "+DefaultConfigPath()+")")
	fs.StringVar(&s.FFmpegPath, "ffmpeg", s.FFmpegPath, "ffmpeg executable")
	fs.StringVar(&s.MediainfoPath, "mediainfo", s.MediainfoPath, "mediainfo executable")
	fs.StringVar(&s.ExiftoolPath, "exiftool", s.ExiftoolPath, "exiftool executable")
	fs.StringVar(&s.LogFile, "log", s.LogFile, "Append JSON logs to file")
	fs.StringVar(&s.LogLevel, "log-level", s.LogLevel, "Log level: debug | info | warn | error")
	fs.Var(&colorModeValue{&s.ColorMode}, "color-mode", "Colored logs: auto | always | never")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.IntVarP(&s.Jobs, "jobs", "j", s.Jobs, "Files processed in parallel")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output (live ffmpeg progress, debug logs)")
}

// BindResolveFlags registers the flags that decide each file's recording time,
// shared by render and rename.
func BindResolveFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Datetime, "datetime", "", `Use this recording time instead of metadata ("yyyy-mm-dd HH:MM[:SS]")`)
	fs.StringVar(&cfg.OffsetText, "offset", "", "Correct metadata time by [+|-]H:MM[:SS]")
	fs.BoolVarP(&cfg.Yes, "yes", "y", false, "Overwrite existing targets")
	fs.BoolVarP(&cfg.DryRun, "dry-run", "n", false, "Show what would happen; change nothing")
}

// BindRenderFlags registers overlay and encode flags.
func BindRenderFlags(fs *pflag.FlagSet, cfg *Config, n *NegatedFlags) {
	s := &cfg.Settings

	// Overlay.
	fs.Float64VarP(&cfg.SizePercent, "size", "s", cfg.SizePercent, "Text size, % of frame height")
	fs.StringVarP(&cfg.TextColor, "color", "c", cfg.TextColor, "Text color (ffmpeg color syntax)")
	fs.Float64VarP(&cfg.Begin, "begin", "b", cfg.Begin, "Seconds into the video the text appears")
	fs.Float64VarP(&cfg.Length, "len", "l", cfg.Length, "Seconds the text stays (negative: to the end)")
	fs.VarP(&vposValue{&cfg.Position}, "vpos", "v", "Text position: t | b")
	fs.BoolVarP(&cfg.ShowTimecode, "tc", "t", false, "Draw a running timecode instead of HH:MM")
	fs.BoolVar(&cfg.ShowDate, "date", cfg.ShowDate, "Draw the date")
	fs.BoolVar(&n.noDate, "no-date", false, "Do not draw the date")
	fs.BoolVar(&cfg.ShowTime, "time", cfg.ShowTime, "Draw the time")
	fs.BoolVar(&n.noTime, "no-time", false, "Do not draw the time")
	fs.StringVar(&s.FontFile, "font", s.FontFile, "Font file for the overlay")
	fs.BoolVar(&cfg.GuessDrift, "guess-drift", false, "Correct clock drift from a timestamp in the file name")

	// Encode.
	fs.StringArrayVar(&cfg.VideoFilters, "vf", nil, "Video filter name[=key=value:...] (repeatable, applied in order)")
	fs.StringArrayVar(&cfg.AudioFilters, "af", nil, "Audio filter name[=key=value:...] (repeatable, applied in order)")
	fs.StringVar(&cfg.EncodeArgs, "encode-args", "", `Extra ffmpeg output options, shell-quoted ("-c:v libx264 -crf 18")`)
	fs.StringVar(&cfg.OutputExt, "ext", "", "Replace the output extension (e.g. mp4, dv)")
	fs.BoolVar(&cfg.Bounce, "bounce", false, "Render audio to PCM first (fixes DV muxer audio errors)")
	fs.BoolVar(&n.noDeinterlace, "no-deinterlace", false, "Do not deinterlace interlaced sources")
	fs.StringVar(&s.TapeTarget, "tape-target", s.TapeTarget, "ffmpeg -target for .dv outputs")
}

// BindRenameFlags registers rename-only flags.
func BindRenameFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.StampLayout, "format", cfg.StampLayout, "Go time layout for new names")
}

// ApplyNegated copies negated flag values into cfg (e.g. noDate -> ShowDate=false).
func ApplyNegated(cfg *Config, n *NegatedFlags) {
	if n.noDate {
		cfg.ShowDate = false
	}
	if n.noTime {
		cfg.ShowTime = false
	}
	if n.noDeinterlace {
		cfg.DeinterlaceAuto = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	}
}

// pflag.Value adapters so we can use enum types with fs.Var.

type colorModeValue struct{ p *ColorMode }

func (c *colorModeValue) String() string { return string(*c.p) }
func (c *colorModeValue) Type() string   { return "mode" }
func (c *colorModeValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "auto":
		*c.p = ColorAuto
	case "always":
		*c.p = ColorAlways
	case "never":
		*c.p = ColorNever
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
	return nil
}

type vposValue struct{ p *VPos }

func (v *vposValue) String() string { return string(*v.p) }
func (v *vposValue) Type() string   { return "t|b" }
func (v *vposValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "t", "top":
		*v.p = VPosTop
	case "b", "bottom":
		*v.p = VPosBottom
	default:
		return fmt.Errorf("invalid vpos %q (use 't' or 'b')", s)
	}
	return nil
}
