// Package check provides system diagnostics (the check command) and
// pre-batch dependency validation (CheckDeps) for ffmpeg, mediainfo,
// exiftool and the configured font.
package check

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/backmassage/dvstamp/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrFfmpegNotFound    = errors.New("ffmpeg not found")
	ErrMediainfoNotFound = errors.New("mediainfo not found")
	ErrExiftoolNotFound  = errors.New("exiftool not found")
	ErrFontNotFound      = errors.New("font file not found")
)

// Logger is the minimal logging interface needed by RunCheck.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// tool is one external program and the flag that prints its version.
type tool struct {
	name    string
	bin     string
	version []string
	missing error
}

func tools(s *config.Settings) []tool {
	return []tool{
		{"ffmpeg", s.FFmpegPath, []string{"-hide_banner", "-version"}, ErrFfmpegNotFound},
		{"mediainfo", s.MediainfoPath, []string{"--Version"}, ErrMediainfoNotFound},
		{"exiftool", s.ExiftoolPath, []string{"-ver"}, ErrExiftoolNotFound},
	}
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// versionOf runs bin with args and returns the first non-empty output line.
var versionOf = func(bin string, args ...string) (string, error) {
	out, err := exec.Command(bin, args...).Output()
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", nil
}

// RunCheck prints the availability and version of every external tool and
// the configured font. It is informational only and reports how many
// problems it found.
func RunCheck(cfg *config.Config, log Logger) int {
	log.Info("=== System Check ===")
	problems := 0
	for _, t := range tools(&cfg.Settings) {
		path, err := lookPath(t.bin)
		if err != nil {
			log.Error("%s not found (%s)", t.name, t.bin)
			problems++
			continue
		}
		v, err := versionOf(path, t.version...)
		if err != nil {
			log.Warn("%s found at %s but version query failed: %v", t.name, path, err)
			continue
		}
		log.Success("%s: %s (%s)", t.name, v, path)
	}

	switch err := checkFont(cfg.FontFile); {
	case cfg.FontFile == "":
		log.Info("font: ffmpeg default (no font_file set)")
	case err != nil:
		log.Error("%v", err)
		problems++
	default:
		log.Success("font: %s", cfg.FontFile)
	}
	return problems
}

// CheckDeps is the pre-batch validation. mediainfo is always required (it
// is the primary timestamp source); ffmpeg only when needEncoder is set and
// exiftool only when needTags is. Without needTags exiftool is still used as
// a fallback timestamp source, and files that need it fail individually.
func CheckDeps(cfg *config.Config, needEncoder, needTags bool) error {
	for _, t := range tools(&cfg.Settings) {
		switch {
		case t.name == "ffmpeg" && !needEncoder:
			continue
		case t.name == "exiftool" && !needTags:
			continue
		}
		if _, err := lookPath(t.bin); err != nil {
			return fmt.Errorf("%w (%s)", t.missing, t.bin)
		}
	}
	return checkFont(cfg.FontFile)
}

func checkFont(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrFontNotFound, path)
	}
	return nil
}
