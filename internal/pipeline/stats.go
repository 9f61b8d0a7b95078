package pipeline

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/backmassage/dvstamp/internal/display"
)

// Result is the outcome class of one file.
type Result string

const (
	ResultDone      Result = "done"
	ResultSimulated Result = "simulated"
	ResultSkipped   Result = "skipped"
	ResultFailed    Result = "failed"
)

// FileResult is one row of the batch report.
type FileResult struct {
	Input  string
	Target string
	Result Result
	Detail string
}

// RunStats tracks aggregate counters and byte totals across a batch run.
// It is safe for concurrent use.
type RunStats struct {
	mu sync.Mutex

	Total            int
	Done             int
	Simulated        int
	Skipped          int
	Failed           int
	TotalInputBytes  int64
	TotalOutputBytes int64

	Files  []FileResult
	Errors []error
}

func (s *RunStats) record(r FileResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch r.Result {
	case ResultDone:
		s.Done++
	case ResultSimulated:
		s.Simulated++
	case ResultSkipped:
		s.Skipped++
	case ResultFailed:
		s.Failed++
		if err != nil {
			s.Errors = append(s.Errors, err)
		}
	}
	s.Files = append(s.Files, r)
}

func (s *RunStats) addBytes(in, out int64) {
	s.mu.Lock()
	s.TotalInputBytes += in
	s.TotalOutputBytes += out
	s.mu.Unlock()
}

// Err joins every per-file failure, or returns nil when none failed.
func (s *RunStats) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.Errors...)
}

// Summary writes the per-file table and the totals line.
func (s *RunStats) Summary(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([][]string, 0, len(s.Files))
	for _, f := range s.Files {
		target := ""
		if f.Target != "" {
			target = filepath.Base(f.Target)
		}
		rows = append(rows, []string{filepath.Base(f.Input), target, string(f.Result), f.Detail})
	}
	if len(rows) > 0 {
		display.RenderTable(w, []string{"File", "Target", "Result", "Detail"}, rows)
	}

	fmt.Fprintf(w, "%d files: %d done, %d simulated, %d skipped, %d failed\n",
		s.Total, s.Done, s.Simulated, s.Skipped, s.Failed)
	if s.TotalOutputBytes > 0 {
		fmt.Fprintf(w, "input %s -> output %s (%s)\n",
			display.FormatBytes(s.TotalInputBytes),
			display.FormatBytes(s.TotalOutputBytes),
			display.FormatBytesWithSign(s.TotalOutputBytes-s.TotalInputBytes))
	}
}
