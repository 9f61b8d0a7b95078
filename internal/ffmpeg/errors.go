package ffmpeg

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ProcessError is returned when an external tool (ffmpeg, exiftool) fails.
// Stderr is the captured diagnostic output; it is only ever shown for
// failed runs.
type ProcessError struct {
	Tool     string
	Args     []string
	ExitCode int // -1 when the process never started or was killed
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
	}
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Tail returns the last n lines of Stderr.
func (e *ProcessError) Tail(n int) []string {
	lines := strings.Split(strings.TrimRight(e.Stderr, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// Pre-compiled regexes for classifying ffmpeg stderr output.
var (
	// The DV muxer rejects audio it cannot interleave: unlocked or 32 kHz
	// 4-channel camera audio, or timestamps that drift against video.
	reDVAudioMux = regexp.MustCompile(
		`(?i)Can't initialize DV format|` +
			`Make sure that you supply exactly two streams|` +
			`Too many packets buffered for output stream|` +
			`Non-monotonous DTS in output stream \d+:1|` +
			`Invalid sample rate .* for DV`)

	reOutputExists = regexp.MustCompile(`already exists\. Exiting\.|Not overwriting - exiting`)
)

// MatchDVAudioMux reports whether stderr shows the DV muxer choking on the
// source audio, which a --bounce pass usually fixes.
func MatchDVAudioMux(stderr string) bool {
	return reDVAudioMux.MatchString(stderr)
}

// MatchOutputExists reports whether ffmpeg refused to overwrite its output.
func MatchOutputExists(stderr string) bool {
	return reOutputExists.MatchString(stderr)
}

// Hint returns a one-line suggestion for a failed run, or "".
func Hint(err error) string {
	var pe *ProcessError
	if !errors.As(err, &pe) {
		return ""
	}
	switch {
	case MatchDVAudioMux(pe.Stderr):
		return "the DV muxer rejected the source audio; retry with --bounce"
	case MatchOutputExists(pe.Stderr):
		return "output exists; pass -y to overwrite"
	}
	return ""
}
