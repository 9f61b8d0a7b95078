package planner

import (
	"fmt"

	"github.com/backmassage/dvstamp/internal/naming"
)

// DefaultTapeTarget is the -target preset used for .dv outputs.
const DefaultTapeTarget = "ntsc-dv"

// Assemble builds the EncodeJob for one file.
//
// Flow:
//  1. Video chain: deinterlace, user --vf stages, date draw, time draw
//  2. Audio chain: user --af stages on the first source audio stream
//  3. Optional audio bounce through raw PCM
//  4. Output options: creation_time (+target for .dv), then user args
func Assemble(req Request) (*EncodeJob, error) {
	job := &EncodeJob{
		InputPath:  req.InputPath,
		OutputPath: req.OutputPath,
		Tape:       naming.IsTape(req.OutputPath),
		Overwrite:  req.Overwrite,
	}

	// --- 1. Video ---
	job.VideoFilters = BuildVideoChain(req)

	// --- 2. Audio ---
	job.AudioFilters = append(job.AudioFilters, req.AudioFilters...)
	job.AudioMap = "0:a:0"

	// --- 3. Bounce ---
	if req.Bounce {
		job.Bounce = buildBounce(req)
		job.AudioMap = "1:a:0"
	}

	// --- 4. Output options ---
	user, err := ParseEncodeArgs(req.EncodeArgs)
	if err != nil {
		return nil, fmt.Errorf("encode args: %w", err)
	}
	target := req.TapeTarget
	if target == "" {
		target = DefaultTapeTarget
	}
	base := containerOptions(req, job.Tape, target)
	job.Options = MergeOptions(base, user)
	if job.Tape {
		// The DV muxer's creation time and preset are not negotiable.
		job.Options = MergeOptions(job.Options, base)
	}
	return job, nil
}
