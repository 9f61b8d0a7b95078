package ffmpeg

import (
	"strconv"

	"github.com/backmassage/dvstamp/internal/filter"
	"github.com/backmassage/dvstamp/internal/planner"
)

// Build constructs the ffmpeg argv for the main encode of job. bin is the
// ffmpeg executable and becomes argv[0].
func Build(bin string, job *planner.EncodeJob, verbose bool) []string {
	args := make([]string, 0, 48)

	// --- Preamble ---
	args = appendPreamble(args, bin, verbose, job.Overwrite)

	// --- Inputs ---
	args = append(args, "-i", job.InputPath)
	if b := job.Bounce; b != nil {
		args = append(args,
			"-f", "s16le",
			"-ar", strconv.Itoa(b.SampleRate),
			"-ac", strconv.Itoa(b.Channels),
			"-i", b.Path,
		)
	}

	// --- Stream maps ---
	args = append(args, "-map", "0:v:0", "-map", job.AudioMap)

	// --- Filter chains ---
	if len(job.VideoFilters) > 0 {
		args = append(args, "-vf", filter.Chain(job.VideoFilters))
	}
	if len(job.AudioFilters) > 0 {
		args = append(args, "-af", filter.Chain(job.AudioFilters))
	}

	// --- Output options (metadata, target, user args) ---
	for _, o := range job.Options {
		args = append(args, o.Args()...)
	}

	// --- Output ---
	args = append(args, job.OutputPath)
	return args
}

// BuildBounce constructs the argv that renders the first source audio
// stream of job to raw PCM. It always overwrites: the file is ours.
func BuildBounce(bin string, job *planner.EncodeJob, verbose bool) []string {
	b := job.Bounce
	args := appendPreamble(make([]string, 0, 24), bin, verbose, true)
	return append(args,
		"-i", job.InputPath,
		"-map", "0:a:0",
		"-vn",
		"-c:a", "pcm_s16le",
		"-f", "s16le",
		"-ar", strconv.Itoa(b.SampleRate),
		"-ac", strconv.Itoa(b.Channels),
		b.Path,
	)
}

func appendPreamble(args []string, bin string, verbose, overwrite bool) []string {
	if bin == "" {
		bin = "ffmpeg"
	}
	args = append(args, bin, "-hide_banner", "-nostdin")

	// Loglevel: info when verbose, otherwise error.
	if verbose {
		args = append(args, "-loglevel", "info", "-stats")
	} else {
		args = append(args, "-loglevel", "error")
	}

	if overwrite {
		args = append(args, "-y")
	} else {
		args = append(args, "-n")
	}
	return args
}
