package ffmpeg

import (
	"context"
	"io"
	"os"

	"github.com/backmassage/dvstamp/internal/planner"
)

// Outcome describes what Execute did (or, when simulated, would do).
type Outcome struct {
	Commands  []string // shell-quoted command lines in run order
	Simulated bool
}

// Runner executes encode jobs. In Simulate mode nothing is started and the
// command lines are only reported.
type Runner struct {
	Bin      string
	Simulate bool
	Verbose  bool
	Tee      io.Writer // receives live ffmpeg stderr when set
}

// Steps returns the argv of every process job needs, in order.
func (r *Runner) Steps(job *planner.EncodeJob) [][]string {
	var steps [][]string
	if job.Bounce != nil {
		steps = append(steps, BuildBounce(r.Bin, job, r.Verbose))
	}
	return append(steps, Build(r.Bin, job, r.Verbose))
}

// Execute runs the bounce pass (if any) and then the main encode. The
// bounce file is removed afterwards whether or not the encode succeeded.
// The first failing step stops the job with a *ProcessError.
func (r *Runner) Execute(ctx context.Context, job *planner.EncodeJob) (Outcome, error) {
	steps := r.Steps(job)
	out := Outcome{Simulated: r.Simulate}
	for _, argv := range steps {
		out.Commands = append(out.Commands, CommandLine(argv))
	}
	if r.Simulate {
		return out, nil
	}

	if job.Bounce != nil {
		defer os.Remove(job.Bounce.Path)
	}
	for _, argv := range steps {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if res := Start(ctx, argv, r.Tee).Wait(); res.Err != nil {
			return out, res.Err
		}
	}
	return out, nil
}
