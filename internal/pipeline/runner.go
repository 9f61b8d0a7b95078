package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/dvstamp/internal/config"
	"github.com/backmassage/dvstamp/internal/ffmpeg"
	"github.com/backmassage/dvstamp/internal/logging"
	"github.com/backmassage/dvstamp/internal/metadata"
	"github.com/backmassage/dvstamp/internal/naming"
	"github.com/backmassage/dvstamp/internal/offset"
	"github.com/backmassage/dvstamp/internal/planner"
	"github.com/backmassage/dvstamp/internal/timestamp"
)

// Tagger copies tags between files and writes the audit comment.
type Tagger interface {
	CopyCurated(src, dst string) error
	PrependComment(dst, line string) error
}

// Encoder runs (or simulates) one encode job.
type Encoder interface {
	Execute(ctx context.Context, job *planner.EncodeJob) (ffmpeg.Outcome, error)
}

// Deps are the collaborators of a batch. Tags and Encoder are only needed
// by Render; Drift is nil unless drift guessing was requested.
type Deps struct {
	Source  metadata.Source
	Tags    Tagger
	Encoder Encoder
	Drift   offset.DriftStrategy

	Now        func() time.Time
	Invocation string // the command line, recorded in the audit comment
}

// Runner processes batches with one configuration.
type Runner struct {
	cfg        *config.Config
	deps       Deps
	log        *logging.Logger
	resolver   *timestamp.Resolver
	collisions *naming.CollisionResolver
}

// New returns a Runner. A fresh run_id is attached to every log event.
func New(cfg *config.Config, deps Deps, log *logging.Logger) *Runner {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Runner{
		cfg:        cfg,
		deps:       deps,
		log:        log.With("run_id", uuid.NewString()),
		resolver:   &timestamp.Resolver{Source: deps.Source},
		collisions: naming.NewCollisionResolver(),
	}
}

// each runs fn for every file with at most cfg.Jobs in flight. fn reports
// its own outcome into stats; nothing it returns stops the batch. Files not
// yet started when ctx is cancelled are not attempted.
func (r *Runner) each(ctx context.Context, files []string, stats *RunStats, fn func(ctx context.Context, log *logging.Logger, path string) (FileResult, error)) {
	stats.Total = len(files)

	var g errgroup.Group
	g.SetLimit(max(r.cfg.Jobs, 1))
	for i, path := range files {
		if ctx.Err() != nil {
			r.log.Warn("Interrupted, %d files not started", len(files)-i)
			break
		}
		i, path := i, path
		g.Go(func() error {
			log := r.log.With("file", path)
			log.Info("[%d/%d] %s", i+1, len(files), path)
			res, err := fn(ctx, log, path)
			switch res.Result {
			case ResultFailed:
				log.Error("%v", err)
				var pe *ffmpeg.ProcessError
				if errors.As(err, &pe) {
					for _, line := range pe.Tail(20) {
						log.Error("  %s", line)
					}
				}
				if hint := ffmpeg.Hint(err); hint != "" {
					log.Warn("Hint: %s", hint)
				}
			case ResultSkipped:
				log.Warn("Skip: %s", res.Detail)
			}
			stats.record(res, err)
			return nil
		})
	}
	_ = g.Wait()
}

// resolve runs the Resolving stage shared by render and rename: the
// timestamp, then the offset, then the optional drift guess.
func (r *Runner) resolve(ctx context.Context, log *logging.Logger, path string) (timestamp.Recording, error) {
	rec, err := r.resolver.Resolve(ctx, r.cfg.Datetime, path)
	if err != nil {
		return timestamp.Recording{}, fail(path, Resolving, err)
	}
	if r.cfg.Datetime != "" && rec.Provenance != timestamp.Explicit {
		log.Warn("Ignoring unparsable --datetime %q", r.cfg.Datetime)
	}

	if !r.cfg.Offset.IsZero() && rec.Provenance.FromMetadata() {
		rec = offset.Apply(rec, r.cfg.Offset)
		log.Debug("Offset %s applied", r.cfg.Offset)
	}

	if r.deps.Drift != nil && rec.Provenance.FromMetadata() {
		d, err := r.deps.Drift.Guess(path, rec)
		if err != nil {
			log.Warn("No drift guess: %v", err)
		} else {
			rec = offset.ApplyDrift(rec, d)
			log.Info("Drift %s applied", d)
		}
	}

	log.Info("Recorded %s (%s)", rec, rec.Provenance)
	return rec, nil
}
