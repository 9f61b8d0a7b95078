package overlay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/dvstamp/internal/filter"
	"github.com/backmassage/dvstamp/internal/overlay"
	"github.com/backmassage/dvstamp/internal/timestamp"
)

func recording(t *testing.T, s string) timestamp.Recording {
	t.Helper()
	rec, ok := timestamp.Parse(s)
	require.True(t, ok)
	rec.Provenance = timestamp.PrimaryField
	return rec
}

func defaults() overlay.Options {
	return overlay.Options{
		Begin:       1,
		Length:      4,
		ShowDate:    true,
		ShowTime:    true,
		FrameRate:   29.97,
		FrameHeight: 480,
		SizePercent: 5,
		Color:       "white",
		Position:    overlay.Bottom,
	}
}

func param(t *testing.T, st filter.Stage, key string) string {
	t.Helper()
	p, ok := st.Lookup(key)
	require.True(t, ok, "%s has no %s", st.Name, key)
	return p.Value
}

func TestBuildDisplayTimeAdvanced(t *testing.T) {
	opts := defaults()
	opts.Begin = 30
	spec, err := overlay.Build(recording(t, "2005-07-02 23:59:45"), opts)
	require.NoError(t, err)

	assert.Equal(t, "2005-07-03", spec.DateText)
	assert.Equal(t, "00:00", spec.TimeText)
	assert.Equal(t, 24.0, spec.FontSize)
	assert.Equal(t, "h-(2*lh)", spec.Y)
	assert.Equal(t, "between(t,30,34)", spec.Window.Expr())
}

func TestWindow(t *testing.T) {
	cases := []struct {
		begin, length float64
		expr          string
	}{
		{1, 4, "between(t,1,5)"},
		{0.5, 2.25, "between(t,0.5,2.75)"},
		{-3, 4, "between(t,0,4)"},
		{2, -1, "gte(t,2)"},
		{0, 0, "between(t,0,0)"},
	}
	for _, c := range cases {
		opts := defaults()
		opts.Begin, opts.Length = c.begin, c.length
		spec, err := overlay.Build(recording(t, "2005-07-02 09:48:06"), opts)
		require.NoError(t, err)
		assert.Equal(t, c.expr, spec.Window.Expr())
	}

	w := overlay.Window{Start: 1, End: 5}
	assert.False(t, w.Contains(0.9))
	assert.True(t, w.Contains(1))
	assert.False(t, w.Contains(5))
	assert.Equal(t, "between(t,1,5)", w.Expr(), "ffmpeg side keeps the closed interval")
	assert.True(t, overlay.Window{Start: 1, Open: true}.Contains(1e6))
}

func TestBuildMissingClock(t *testing.T) {
	rec := recording(t, "2005-07-02")
	_, err := overlay.Build(rec, defaults())
	var mErr *overlay.MissingTimeComponentError
	require.ErrorAs(t, err, &mErr)

	opts := defaults()
	opts.ShowTime = false
	spec, err := overlay.Build(rec, opts)
	require.NoError(t, err)
	assert.Equal(t, "2005-07-02", spec.DateText)
}

func TestTimecode(t *testing.T) {
	opts := defaults()
	opts.ShowTimecode = true

	spec, err := overlay.Build(recording(t, "2005-07-02 09:48:06"), opts)
	require.NoError(t, err)
	assert.Equal(t, "09:48:06;00", spec.Timecode, "timecode starts at the recording time, not the display time")
	assert.Equal(t, 29.97, spec.Rate)

	stages := overlay.DrawStages(spec)
	require.Len(t, stages, 2)
	assert.Equal(t, "09:48:06;00", param(t, stages[1], "timecode"))
	assert.Equal(t, "29.97", param(t, stages[1], "rate"))
	assert.Equal(t, "", param(t, stages[1], "text"))
	tc, _ := stages[1].Lookup("tc24hmax")
	assert.True(t, tc.Flag)

	spec, err = overlay.Build(recording(t, "2005-07-02 09:48"), opts)
	require.NoError(t, err)
	assert.Empty(t, spec.Timecode)
	assert.NotEmpty(t, spec.TimecodeDropped)

	opts.FrameRate = 0
	spec, err = overlay.Build(recording(t, "2005-07-02 09:48:06"), opts)
	require.NoError(t, err)
	assert.Empty(t, spec.Timecode)
	assert.Contains(t, spec.TimecodeDropped, "frame rate")
}

func TestDrawStages(t *testing.T) {
	opts := defaults()
	opts.Position = overlay.Top
	opts.FontFile = "/usr/share/fonts/DejaVuSans.ttf"
	spec, err := overlay.Build(recording(t, "2005-07-02 09:48:06"), opts)
	require.NoError(t, err)

	stages := overlay.DrawStages(spec)
	require.Len(t, stages, 2)

	date, clock := stages[0], stages[1]
	assert.Equal(t, "drawtext", date.Name)
	assert.Equal(t, "2005-07-02", param(t, date, "text"))
	assert.Equal(t, "w*0.02", param(t, date, "x"))
	assert.Equal(t, "09:48", param(t, clock, "text"))
	assert.Equal(t, "(w-tw)-(w*0.02)", param(t, clock, "x"))
	for _, st := range stages {
		assert.Equal(t, "2*lh", param(t, st, "y"))
		assert.Equal(t, "24", param(t, st, "fontsize"))
		assert.Equal(t, "white", param(t, st, "fontcolor"))
		assert.Equal(t, "2", param(t, st, "borderw"))
		assert.Equal(t, "between(t,1,5)", param(t, st, "enable"))
		assert.Equal(t, opts.FontFile, param(t, st, "fontfile"))
	}
}

func TestDrawStagesDisabled(t *testing.T) {
	opts := defaults()
	opts.ShowDate = false
	spec, err := overlay.Build(recording(t, "2005-07-02 09:48:06"), opts)
	require.NoError(t, err)
	stages := overlay.DrawStages(spec)
	require.Len(t, stages, 1)
	assert.Equal(t, "09:48", param(t, stages[0], "text"))
	_, hasFont := stages[0].Lookup("fontfile")
	assert.False(t, hasFont)

	opts.ShowTime = false
	spec, err = overlay.Build(recording(t, "2005-07-02 09:48:06"), opts)
	require.NoError(t, err)
	assert.Empty(t, overlay.DrawStages(spec))
}
