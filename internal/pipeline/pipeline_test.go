package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/dvstamp/internal/config"
	"github.com/backmassage/dvstamp/internal/ffmpeg"
	"github.com/backmassage/dvstamp/internal/filter"
	"github.com/backmassage/dvstamp/internal/logging"
	"github.com/backmassage/dvstamp/internal/metadata"
	"github.com/backmassage/dvstamp/internal/naming"
	"github.com/backmassage/dvstamp/internal/offset"
	"github.com/backmassage/dvstamp/internal/overlay"
	"github.com/backmassage/dvstamp/internal/planner"
	"github.com/backmassage/dvstamp/internal/testsupport"
	"github.com/backmassage/dvstamp/internal/timestamp"
)

// --- fakes ---

type tagCall struct{ op, src, dst, line string }

type fakeTags struct {
	mu    sync.Mutex
	calls []tagCall
	err   error
}

func (f *fakeTags) CopyCurated(src, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, tagCall{op: "copy", src: src, dst: dst})
	return f.err
}

func (f *fakeTags) PrependComment(dst, line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, tagCall{op: "comment", dst: dst, line: line})
	return f.err
}

type fakeEncoder struct {
	mu   sync.Mutex
	jobs []*planner.EncodeJob
	err  error
}

func (f *fakeEncoder) Execute(_ context.Context, job *planner.EncodeJob) (ffmpeg.Outcome, error) {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()
	if err := os.WriteFile(job.OutputPath, []byte("encoded"), 0o644); err != nil {
		return ffmpeg.Outcome{}, err
	}
	return ffmpeg.Outcome{}, f.err
}

// --- harness ---

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

type harness struct {
	dir  string
	cfg  config.Config
	src  *testsupport.Source
	tags *fakeTags
	enc  *fakeEncoder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("TMPDIR", t.TempDir())
	cfg := config.DefaultConfig()
	return &harness{
		dir:  t.TempDir(),
		cfg:  cfg,
		src:  testsupport.NewSource(),
		tags: &fakeTags{},
		enc:  &fakeEncoder{},
	}
}

func (h *harness) file(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(h.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("source"), 0o644))
	return p
}

func (h *harness) runner(t *testing.T, enc Encoder) *Runner {
	t.Helper()
	require.NoError(t, h.cfg.Validate())
	if enc == nil {
		enc = h.enc
	}
	return New(&h.cfg, Deps{
		Source:     h.src,
		Tags:       h.tags,
		Encoder:    enc,
		Now:        func() time.Time { return fixedNow },
		Invocation: "dvstamp render clip.mov out",
	}, logging.Discard())
}

func (h *harness) outDir(t *testing.T) string {
	t.Helper()
	d := filepath.Join(h.dir, "out")
	require.NoError(t, os.MkdirAll(d, 0o755))
	return d
}

// --- render ---

func TestRenderEndToEnd(t *testing.T) {
	h := newHarness(t)
	in := h.file(t, "clip.mov")
	h.src.Set(in, metadata.RecordedDate, "2005-07-02 09:48:06").
		Set(in, metadata.VideoHeight, "480").
		Set(in, metadata.FrameRate, "29.97")
	h.cfg.OffsetText = " -9:00"
	h.cfg.OutputExt = "mp4"
	out := h.outDir(t)

	stats, err := h.runner(t, nil).Render(context.Background(), []string{in}, out)
	require.NoError(t, err)
	require.NoError(t, stats.Err())
	assert.Equal(t, 1, stats.Done)

	require.Len(t, h.enc.jobs, 1)
	job := h.enc.jobs[0]
	assert.Equal(t, filepath.Join(out, "clip.mp4"), job.OutputPath)
	ct, ok := job.Metadata("creation_time")
	require.True(t, ok)
	assert.Equal(t, "2005-07-02 00:48:06", ct)
	_, hasTarget := job.Option("-target")
	assert.False(t, hasTarget)

	// Date and time drawtext, fontsize 5% of 480.
	require.Len(t, job.VideoFilters, 2)
	text, _ := job.VideoFilters[0].Lookup("text")
	assert.Equal(t, "2005-07-02", text.Value)
	size, _ := job.VideoFilters[0].Lookup("fontsize")
	assert.Equal(t, "24", size.Value)

	require.Len(t, h.tags.calls, 2)
	assert.Equal(t, tagCall{op: "copy", src: in, dst: job.OutputPath}, h.tags.calls[0])
	assert.Equal(t, "2026-03-04 05:06:07 dvstamp render clip.mov out", h.tags.calls[1].line)
	assert.Equal(t, int64(len("source")), stats.TotalInputBytes)
	assert.Equal(t, int64(len("encoded")), stats.TotalOutputBytes)
}

func TestRenderTapeSkipsFinalizing(t *testing.T) {
	h := newHarness(t)
	in := h.file(t, "clip.mov")
	h.src.Set(in, metadata.RecordedDate, "2005-07-02 09:48:06")
	h.cfg.OutputExt = ".dv"

	stats, err := h.runner(t, nil).Render(context.Background(), []string{in}, h.outDir(t))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Done)

	require.Len(t, h.enc.jobs, 1)
	ct, _ := h.enc.jobs[0].Metadata("creation_time")
	assert.Equal(t, "2005-07-02 09:48:06Z", ct)
	target, _ := h.enc.jobs[0].Option("-target")
	assert.Equal(t, "ntsc-dv", target)
	assert.Empty(t, h.tags.calls)
}

func TestRenderExplicitIgnoresOffset(t *testing.T) {
	h := newHarness(t)
	in := h.file(t, "clip.mov")
	h.cfg.Datetime = "2020-01-01"
	h.cfg.OffsetText = "+2:00"
	h.cfg.ShowTime = false

	stats, err := h.runner(t, nil).Render(context.Background(), []string{in}, filepath.Join(h.dir, "out.mp4"))
	require.NoError(t, err)
	require.NoError(t, stats.Err())
	ct, _ := h.enc.jobs[0].Metadata("creation_time")
	assert.Equal(t, "2020-01-01 12:00:00", ct)
}

func TestRenderFailuresDoNotStopBatch(t *testing.T) {
	h := newHarness(t)
	good := h.file(t, "a.mov")
	bad := h.file(t, "b.mov")
	h.src.Set(good, metadata.RecordedDate, "2005-07-02 09:48:06")

	stats, err := h.runner(t, nil).Render(context.Background(), []string{bad, good}, h.outDir(t))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Done)
	assert.Equal(t, 1, stats.Failed)

	var se *StageError
	require.ErrorAs(t, stats.Err(), &se)
	assert.Equal(t, Resolving, se.Stage)
	assert.Equal(t, bad, se.Path)
	var re *timestamp.ResolutionError
	assert.ErrorAs(t, se, &re)
}

func TestRenderBuildingJobErrors(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(h *harness, in string)
		output func(h *harness, t *testing.T, in string) string
		check  func(t *testing.T, err error)
	}{
		{
			name: "missing clock",
			setup: func(h *harness, in string) {
				h.src.Set(in, metadata.RecordedDate, "2005-07-02")
			},
			check: func(t *testing.T, err error) {
				var me *overlay.MissingTimeComponentError
				assert.ErrorAs(t, err, &me)
			},
		},
		{
			name: "positional filter",
			setup: func(h *harness, in string) {
				h.src.Set(in, metadata.RecordedDate, "2005-07-02 09:48:06")
				h.cfg.VideoFilters = []string{"scale=720:480"}
			},
			check: func(t *testing.T, err error) {
				var ae *filter.ArgError
				assert.ErrorAs(t, err, &ae)
			},
		},
		{
			name: "output is input",
			setup: func(h *harness, in string) {
				h.src.Set(in, metadata.RecordedDate, "2005-07-02 09:48:06")
			},
			output: func(h *harness, t *testing.T, in string) string { return in },
			check: func(t *testing.T, err error) {
				var ie *naming.IdentityOutputError
				assert.ErrorAs(t, err, &ie)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			in := h.file(t, "clip.mov")
			tt.setup(h, in)
			out := filepath.Join(h.dir, "out.mp4")
			if tt.output != nil {
				out = tt.output(h, t, in)
			}

			stats, err := h.runner(t, nil).Render(context.Background(), []string{in}, out)
			require.NoError(t, err)
			assert.Equal(t, 1, stats.Failed)
			var se *StageError
			require.ErrorAs(t, stats.Err(), &se)
			assert.Equal(t, BuildingJob, se.Stage)
			tt.check(t, se)
			assert.Empty(t, h.enc.jobs)
		})
	}
}

func TestRenderEncoderFailureRemovesPartialOutput(t *testing.T) {
	h := newHarness(t)
	in := h.file(t, "clip.mov")
	h.src.Set(in, metadata.RecordedDate, "2005-07-02 09:48:06")
	h.enc.err = &ffmpeg.ProcessError{Tool: "ffmpeg", ExitCode: 1, Stderr: "boom"}
	out := filepath.Join(h.dir, "out.mp4")

	stats, err := h.runner(t, nil).Render(context.Background(), []string{in}, out)
	require.NoError(t, err)
	var se *StageError
	require.ErrorAs(t, stats.Err(), &se)
	assert.Equal(t, Executing, se.Stage)
	var pe *ffmpeg.ProcessError
	assert.ErrorAs(t, se, &pe)
	assert.NoFileExists(t, out)
	assert.Empty(t, h.tags.calls)
}

func TestRenderTagFailure(t *testing.T) {
	h := newHarness(t)
	in := h.file(t, "clip.mov")
	h.src.Set(in, metadata.RecordedDate, "2005-07-02 09:48:06")
	h.tags.err = &ffmpeg.ProcessError{Tool: "exiftool", ExitCode: 1}

	stats, err := h.runner(t, nil).Render(context.Background(), []string{in}, filepath.Join(h.dir, "out.mp4"))
	require.NoError(t, err)
	var se *StageError
	require.ErrorAs(t, stats.Err(), &se)
	assert.Equal(t, Finalizing, se.Stage)
}

func TestRenderSkipsExistingOutput(t *testing.T) {
	h := newHarness(t)
	in := h.file(t, "clip.mov")
	h.src.Set(in, metadata.RecordedDate, "2005-07-02 09:48:06")
	out := h.file(t, "out.mp4")

	stats, err := h.runner(t, nil).Render(context.Background(), []string{in}, out)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Empty(t, h.enc.jobs)

	h.cfg.Yes = true
	stats, err = h.runner(t, nil).Render(context.Background(), []string{in}, out)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Done)
	assert.True(t, h.enc.jobs[0].Overwrite)
}

func TestRenderDryRun(t *testing.T) {
	h := newHarness(t)
	in := h.file(t, "clip.mov")
	h.src.Set(in, metadata.RecordedDate, "2005-07-02 09:48:06").
		Set(in, metadata.ScanType, "Interlaced")
	h.cfg.DryRun = true
	out := filepath.Join(h.dir, "out.mp4")

	stats, err := h.runner(t, &ffmpeg.Runner{Bin: "ffmpeg", Simulate: true}).
		Render(context.Background(), []string{in}, out)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Simulated)
	assert.NoFileExists(t, out)
	assert.Empty(t, h.tags.calls)
}

func TestRenderDeinterlacesInterlacedSource(t *testing.T) {
	h := newHarness(t)
	in := h.file(t, "clip.mov")
	h.src.Set(in, metadata.RecordedDate, "2005-07-02 09:48:06").
		Set(in, metadata.ScanType, "Interlaced")

	_, err := h.runner(t, nil).Render(context.Background(), []string{in}, filepath.Join(h.dir, "out.mp4"))
	require.NoError(t, err)
	require.Len(t, h.enc.jobs, 1)
	assert.Equal(t, "yadif", h.enc.jobs[0].VideoFilters[0].Name)
}

func TestRenderUserFiltersPrecedeOverlay(t *testing.T) {
	h := newHarness(t)
	in := h.file(t, "clip.mov")
	h.src.Set(in, metadata.RecordedDate, "2005-07-02 09:48:06")
	h.cfg.VideoFilters = []string{"yadif=mode=send_frame", "eq=gamma=1.3"}

	_, err := h.runner(t, nil).Render(context.Background(), []string{in}, filepath.Join(h.dir, "out.mp4"))
	require.NoError(t, err)
	require.Len(t, h.enc.jobs, 1)
	var names []string
	for _, st := range h.enc.jobs[0].VideoFilters {
		names = append(names, st.Name)
	}
	assert.Equal(t, []string{"yadif", "eq", "drawtext", "drawtext"}, names)
}

func TestRenderGuessDrift(t *testing.T) {
	h := newHarness(t)
	in := h.file(t, "2005-07-02_0950_06.mov")
	h.src.Set(in, metadata.RecordedDate, "2005-07-02 09:48:06")
	r := h.runner(t, nil)
	r.deps.Drift = offset.FilenameDrift{Layout: naming.DefaultStampLayout}

	_, err := r.Render(context.Background(), []string{in}, filepath.Join(h.dir, "out.mp4"))
	require.NoError(t, err)
	ct, _ := h.enc.jobs[0].Metadata("creation_time")
	assert.Equal(t, "2005-07-02 09:50:06", ct)
}

func TestRenderManyInputsNeedDirectory(t *testing.T) {
	h := newHarness(t)
	a := h.file(t, "a.mov")
	b := h.file(t, "b.mov")
	_, err := h.runner(t, nil).Render(context.Background(), []string{a, b}, filepath.Join(h.dir, "out.mp4"))
	assert.ErrorIs(t, err, ErrOutputNotDir)
}

func TestRenderParallelCollisions(t *testing.T) {
	h := newHarness(t)
	h.cfg.Jobs = 2
	a := h.file(t, "one/clip.mov")
	b := h.file(t, "two/clip.mov")
	for _, p := range []string{a, b} {
		h.src.Set(p, metadata.RecordedDate, "2005-07-02 09:48:06")
	}
	out := h.outDir(t)

	stats, err := h.runner(t, nil).Render(context.Background(), []string{a, b}, out)
	require.NoError(t, err)
	require.NoError(t, stats.Err())
	assert.Equal(t, 2, stats.Done)

	var outputs []string
	for _, j := range h.enc.jobs {
		outputs = append(outputs, filepath.Base(j.OutputPath))
	}
	assert.ElementsMatch(t, []string{"clip.mov", "clip - dup1.mov"}, outputs)
}

// --- rename ---

func TestRename(t *testing.T) {
	h := newHarness(t)
	in := h.file(t, "MVI_0001.mov")
	h.src.Set(in, metadata.RecordedDate, "2005-07-02 09:48:06")
	h.cfg.OffsetText = "-9:00"

	stats := h.runner(t, nil).Rename(context.Background(), []string{in})
	require.NoError(t, stats.Err())
	assert.Equal(t, 1, stats.Done)

	target := filepath.Join(h.dir, "2005-07-02_0048_06.mov")
	assert.NoFileExists(t, in)
	fi, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, fi.ModTime().Equal(time.Date(2005, 7, 2, 0, 48, 6, 0, time.Local)))
}

func TestRenameAlreadyNamed(t *testing.T) {
	h := newHarness(t)
	in := h.file(t, "2020-01-01_1200_00.dv")
	h.cfg.Datetime = "2020-01-01"

	stats := h.runner(t, nil).Rename(context.Background(), []string{in})
	assert.Equal(t, 1, stats.Skipped)
	assert.FileExists(t, in)
}

func TestRenameRefusesExistingTarget(t *testing.T) {
	h := newHarness(t)
	in := h.file(t, "a.dv")
	existing := h.file(t, "2020-01-01_1200_00.dv")
	h.cfg.Datetime = "2020-01-01"

	stats := h.runner(t, nil).Rename(context.Background(), []string{in})
	assert.Equal(t, 1, stats.Skipped)
	assert.FileExists(t, in)

	h.cfg.Yes = true
	stats = h.runner(t, nil).Rename(context.Background(), []string{in})
	assert.Equal(t, 1, stats.Done)
	assert.NoFileExists(t, in)
	assert.FileExists(t, existing)
}

func TestRenameCollisionInBatch(t *testing.T) {
	h := newHarness(t)
	a := h.file(t, "a.dv")
	b := h.file(t, "b.dv")
	h.cfg.Datetime = "2020-01-01 08:00:00"

	stats := h.runner(t, nil).Rename(context.Background(), []string{a, b})
	require.NoError(t, stats.Err())
	assert.FileExists(t, filepath.Join(h.dir, "2020-01-01_0800_00.dv"))
	assert.FileExists(t, filepath.Join(h.dir, "2020-01-01_0800_00 - dup1.dv"))
}

func TestRenameKeepsAlreadyNamedPeer(t *testing.T) {
	for _, yes := range []bool{false, true} {
		t.Run(fmt.Sprintf("yes=%v", yes), func(t *testing.T) {
			h := newHarness(t)
			named := filepath.Join(h.dir, "2005-07-02_0948_06.dv")
			other := filepath.Join(h.dir, "a.dv")
			require.NoError(t, os.WriteFile(named, []byte("clip B"), 0o644))
			require.NoError(t, os.WriteFile(other, []byte("clip A"), 0o644))
			h.src.Set(named, metadata.RecordedDate, "2005-07-02 09:48:06")
			h.src.Set(other, metadata.RecordedDate, "2005-07-02 09:48:06")
			h.cfg.Yes = yes

			stats := h.runner(t, nil).Rename(context.Background(), []string{named, other})
			require.NoError(t, stats.Err())
			assert.Equal(t, 1, stats.Done)
			assert.Equal(t, 1, stats.Skipped)

			b, err := os.ReadFile(named)
			require.NoError(t, err)
			assert.Equal(t, "clip B", string(b))
			a, err := os.ReadFile(filepath.Join(h.dir, "2005-07-02_0948_06 - dup1.dv"))
			require.NoError(t, err)
			assert.Equal(t, "clip A", string(a))
			assert.NoFileExists(t, other)
		})
	}
}

func TestRenameDryRun(t *testing.T) {
	h := newHarness(t)
	in := h.file(t, "a.dv")
	h.cfg.Datetime = "2020-01-01"
	h.cfg.DryRun = true

	stats := h.runner(t, nil).Rename(context.Background(), []string{in})
	assert.Equal(t, 1, stats.Simulated)
	assert.FileExists(t, in)
}

func TestRenameResolutionFailure(t *testing.T) {
	h := newHarness(t)
	in := h.file(t, "a.dv")
	h.src.Fail(in, errors.New("mediainfo missing"))

	stats := h.runner(t, nil).Rename(context.Background(), []string{in})
	var se *StageError
	require.ErrorAs(t, stats.Err(), &se)
	assert.Equal(t, Resolving, se.Stage)
	assert.Contains(t, se.Error(), "mediainfo missing")
}

func TestCancelledBatchStartsNothing(t *testing.T) {
	h := newHarness(t)
	in := h.file(t, "a.dv")
	h.cfg.Datetime = "2020-01-01"
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats := h.runner(t, nil).Rename(ctx, []string{in})
	assert.Empty(t, stats.Files)
	assert.FileExists(t, in)
}

// --- stats ---

func TestSummary(t *testing.T) {
	s := &RunStats{Total: 2}
	s.record(FileResult{Input: "/x/a.dv", Target: "/y/a.mp4", Result: ResultDone}, nil)
	s.record(FileResult{Input: "/x/b.dv", Result: ResultFailed}, errors.New("nope"))
	s.addBytes(2048, 1024)

	var buf bytes.Buffer
	s.Summary(&buf)
	out := buf.String()
	assert.Contains(t, out, "a.mp4")
	assert.Contains(t, out, "2 files: 1 done, 0 simulated, 0 skipped, 1 failed")
	assert.Contains(t, out, "input 2.0 KiB -> output 1.0 KiB (- 1.0 KiB)")
	assert.EqualError(t, s.Err(), "nope")
}

func TestStageErrorFormat(t *testing.T) {
	err := fail("a.dv", Executing, errors.New("exit 1"))
	assert.Equal(t, "a.dv: executing: exit 1", err.Error())
	assert.Equal(t, "finalizing", Finalizing.String())
}

// --- discover ---

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.DV", "a.mov", "sub/c.m2ts", "notes.txt", ".x.bounce.s16le", "sub/.hidden.mp4"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}

	files, err := Discover(dir)
	require.NoError(t, err)
	var got []string
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f)
		got = append(got, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"a.mov", "b.DV", "sub/c.m2ts"}, got)
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	clip := filepath.Join(dir, "clip.mov")
	odd := filepath.Join(dir, "capture.raw")
	require.NoError(t, os.WriteFile(clip, nil, 0o644))
	require.NoError(t, os.WriteFile(odd, nil, 0o644))

	files, err := Expand([]string{odd, dir, clip})
	require.NoError(t, err)
	assert.Equal(t, []string{odd, clip}, files)

	_, err = Expand([]string{filepath.Join(dir, "missing.dv")})
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "missing.dv"))
}
