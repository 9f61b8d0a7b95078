package planner

import (
	"github.com/backmassage/dvstamp/internal/filter"
	"github.com/backmassage/dvstamp/internal/overlay"
	"github.com/backmassage/dvstamp/internal/timestamp"
)

// Option is one output option: a flag and its value. Value is empty for
// flags that take none.
type Option struct {
	Flag  string
	Value string
}

// Args flattens o for an argv.
func (o Option) Args() []string {
	if o.Value == "" {
		return []string{o.Flag}
	}
	return []string{o.Flag, o.Value}
}

// BounceStep describes the pre-pass that renders the source audio to raw PCM
// before the main encode reads it back.
type BounceStep struct {
	Path       string // temporary s16le file, removed after the job
	SampleRate int
	Channels   int
}

// EncodeJob is the complete recipe for rendering one file. It is produced by
// Assemble and consumed by the ffmpeg package.
type EncodeJob struct {
	InputPath  string
	OutputPath string

	// Tape marks a raw DV target: creation time gets a UTC marker, the DV
	// target preset is forced and tag finalization is skipped.
	Tape bool

	VideoFilters []filter.Stage
	AudioFilters []filter.Stage

	// AudioMap is the -map specifier for the audio that reaches the output.
	AudioMap string
	Bounce   *BounceStep

	// Options are the output options in the order they are emitted.
	Options []Option

	Overwrite bool
}

// Finalize reports whether tags should be copied back and the audit comment
// written after a successful encode.
func (j *EncodeJob) Finalize() bool { return !j.Tape }

// Metadata returns the value of the -metadata key, if set.
func (j *EncodeJob) Metadata(key string) (string, bool) {
	for _, o := range j.Options {
		if o.Flag != "-metadata" {
			continue
		}
		if k, v, ok := cutMetadata(o.Value); ok && k == key {
			return v, true
		}
	}
	return "", false
}

// Option returns the value of the first option with flag.
func (j *EncodeJob) Option(flag string) (string, bool) {
	for _, o := range j.Options {
		if o.Flag == flag {
			return o.Value, true
		}
	}
	return "", false
}

// Request carries everything Assemble needs for one file.
type Request struct {
	InputPath  string
	OutputPath string

	Recording timestamp.Recording
	Overlay   overlay.Spec

	VideoFilters []filter.Stage // user --vf stages
	AudioFilters []filter.Stage // user --af stages

	// Deinterlace inserts yadif ahead of the user filters; set it only for
	// interlaced sources.
	Deinterlace bool

	Bounce     bool
	SampleRate int // source audio rate for the bounce; 0 means 48000

	EncodeArgs string // shell-quoted user output options
	TapeTarget string // -target preset for .dv; empty means ntsc-dv

	Overwrite bool
}
