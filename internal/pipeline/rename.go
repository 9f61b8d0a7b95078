package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/backmassage/dvstamp/internal/logging"
	"github.com/backmassage/dvstamp/internal/naming"
)

// Rename gives every input the name of its recording time and sets its
// access and modification times to it.
func (r *Runner) Rename(ctx context.Context, inputs []string) *RunStats {
	// Every input holds its current name first, so a peer that resolves to
	// it is handed a dup name instead of replacing it.
	for _, in := range inputs {
		r.collisions.Claim(in, in)
	}
	stats := &RunStats{}
	r.each(ctx, inputs, stats, r.renameFile)
	return stats
}

func (r *Runner) renameFile(ctx context.Context, log *logging.Logger, in string) (FileResult, error) {
	res := FileResult{Input: in, Result: ResultFailed}

	// --- Resolving ---
	rec, err := r.resolve(ctx, log, in)
	if err != nil {
		return res, err
	}

	// --- BuildingJob ---
	target := naming.RenameTarget(in, rec.Time, r.cfg.StampLayout)
	if filepath.Clean(target) == filepath.Clean(in) {
		res.Target = in
		res.Result, res.Detail = ResultSkipped, "already named"
		return res, nil
	}
	target = r.collisions.Claim(in, target)
	res.Target = target

	if _, err := os.Stat(target); err == nil && !r.cfg.Yes {
		res.Result, res.Detail = ResultSkipped, "target exists (use -y to replace)"
		return res, nil
	}

	// --- Executing ---
	if r.cfg.DryRun {
		log.Info("[DRY] %s -> %s", in, target)
		res.Result = ResultSimulated
		return res, nil
	}
	if err := os.Rename(in, target); err != nil {
		return res, fail(in, Executing, err)
	}
	t := rec.Local()
	if err := os.Chtimes(target, t, t); err != nil {
		return res, fail(in, Executing, err)
	}

	log.Success("Renamed to %s", filepath.Base(target))
	res.Result = ResultDone
	return res, nil
}
