package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/backmassage/dvstamp/internal/filter"
	"github.com/backmassage/dvstamp/internal/logging"
	"github.com/backmassage/dvstamp/internal/metadata"
	"github.com/backmassage/dvstamp/internal/naming"
	"github.com/backmassage/dvstamp/internal/overlay"
	"github.com/backmassage/dvstamp/internal/planner"
	"github.com/backmassage/dvstamp/internal/probe"
	"github.com/backmassage/dvstamp/internal/timestamp"
)

// fallbackHeight sizes the text when the source height is unknown (NTSC DV).
const fallbackHeight = 480

// ErrOutputNotDir is returned when several inputs share one output that is
// not an existing directory.
var ErrOutputNotDir = errors.New("output must be an existing directory when rendering more than one file")

// Render burns the overlay into a copy of every input. output is a file
// (single input) or a directory. The returned error is only for batch-level
// problems; per-file failures are in the stats.
func (r *Runner) Render(ctx context.Context, inputs []string, output string) (*RunStats, error) {
	if len(inputs) > 1 {
		if fi, err := os.Stat(output); err != nil || !fi.IsDir() {
			return nil, ErrOutputNotDir
		}
	}
	stats := &RunStats{}
	r.each(ctx, inputs, stats, func(ctx context.Context, log *logging.Logger, in string) (FileResult, error) {
		return r.renderFile(ctx, log, in, output, stats)
	})
	return stats, nil
}

func (r *Runner) renderFile(ctx context.Context, log *logging.Logger, in, output string, stats *RunStats) (FileResult, error) {
	res := FileResult{Input: in, Result: ResultFailed}

	// --- Resolving ---
	rec, err := r.resolve(ctx, log, in)
	if err != nil {
		return res, err
	}

	// --- BuildingJob ---
	out, err := naming.ResolveOutput(in, output, r.cfg.OutputExt)
	if err != nil {
		return res, fail(in, BuildingJob, err)
	}
	out = r.collisions.Claim(in, out)
	res.Target = out

	_, statErr := os.Stat(out)
	existed := statErr == nil
	if existed && !r.cfg.Yes {
		res.Result, res.Detail = ResultSkipped, "output exists (use -y to overwrite)"
		return res, nil
	}

	job, err := r.buildJob(ctx, log, in, out, rec)
	if err != nil {
		return res, fail(in, BuildingJob, err)
	}
	log.Info("-> %s", out)

	// --- Executing ---
	if !r.cfg.DryRun {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return res, fail(in, Executing, err)
		}
	}
	lock, err := lockOutput(ctx, out)
	if err != nil {
		return res, fail(in, Executing, fmt.Errorf("lock %s: %w", out, err))
	}
	defer lock.Unlock()

	outcome, err := r.deps.Encoder.Execute(ctx, job)
	if outcome.Simulated {
		for _, c := range outcome.Commands {
			log.Info("[DRY] %s", c)
		}
		res.Result = ResultSimulated
		return res, nil
	}
	if err != nil {
		if !existed {
			os.Remove(out)
		}
		return res, fail(in, Executing, err)
	}

	// --- Finalizing ---
	if job.Finalize() {
		line := r.deps.Now().Format(timestamp.Layout) + " " + r.deps.Invocation
		if err := r.deps.Tags.CopyCurated(in, out); err != nil {
			return res, fail(in, Finalizing, err)
		}
		if err := r.deps.Tags.PrependComment(out, line); err != nil {
			return res, fail(in, Finalizing, err)
		}
	} else {
		log.Debug("Tape output, tags left untouched")
	}

	// --- Done ---
	var inSize, outSize int64
	if fi, err := os.Stat(in); err == nil {
		inSize = fi.Size()
	}
	if fi, err := os.Stat(out); err == nil {
		outSize = fi.Size()
	}
	stats.addBytes(inSize, outSize)
	log.Success("Rendered %s", filepath.Base(out))
	res.Result = ResultDone
	return res, nil
}

// buildJob gathers the source properties the overlay and the assembler need
// and assembles the job.
func (r *Runner) buildJob(ctx context.Context, log *logging.Logger, in, out string, rec timestamp.Recording) (*planner.EncodeJob, error) {
	height := r.lookupInt(ctx, log, in, metadata.VideoHeight)
	if height <= 0 {
		log.Warn("Video height unknown, sizing text for %d lines", fallbackHeight)
		height = fallbackHeight
	}
	rate, _ := strconv.ParseFloat(r.lookup(ctx, log, in, metadata.FrameRate), 64)

	spec, err := overlay.Build(rec, overlay.Options{
		Begin:        r.cfg.Begin,
		Length:       r.cfg.Length,
		ShowDate:     r.cfg.ShowDate,
		ShowTime:     r.cfg.ShowTime,
		ShowTimecode: r.cfg.ShowTimecode,
		FrameRate:    rate,
		FrameHeight:  height,
		SizePercent:  r.cfg.SizePercent,
		Color:        r.cfg.TextColor,
		Position:     overlay.Position(r.cfg.Position),
		FontFile:     r.cfg.FontFile,
	})
	if err != nil {
		return nil, err
	}
	if spec.TimecodeDropped != "" {
		log.Warn("Timecode disabled: %s", spec.TimecodeDropped)
	}

	vf, err := filter.ParseAll(r.cfg.VideoFilters)
	if err != nil {
		return nil, err
	}
	af, err := filter.ParseAll(r.cfg.AudioFilters)
	if err != nil {
		return nil, err
	}

	req := planner.Request{
		InputPath:    in,
		OutputPath:   out,
		Recording:    rec,
		Overlay:      spec,
		VideoFilters: vf,
		AudioFilters: af,
		Bounce:       r.cfg.Bounce,
		EncodeArgs:   r.cfg.EncodeArgs,
		TapeTarget:   r.cfg.TapeTarget,
		Overwrite:    r.cfg.Yes,
	}
	if r.cfg.DeinterlaceAuto && probe.InterlacedScan(r.lookup(ctx, log, in, metadata.ScanType)) {
		req.Deinterlace = true
		log.Debug("Interlaced source, deinterlacing")
	}
	if r.cfg.Bounce {
		req.SampleRate = r.lookupInt(ctx, log, in, metadata.AudioSampleRate)
	}
	return planner.Assemble(req)
}

// lookup reads an optional property; tool failures are logged and treated
// as absence.
func (r *Runner) lookup(ctx context.Context, log *logging.Logger, path string, field metadata.Field) string {
	v, ok, err := r.deps.Source.Lookup(ctx, path, field)
	if err != nil {
		log.Warn("Cannot read %s: %v", field, err)
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

func (r *Runner) lookupInt(ctx context.Context, log *logging.Logger, path string, field metadata.Field) int {
	n, _ := strconv.Atoi(r.lookup(ctx, log, path, field))
	return n
}
