// Package overlay turns a recording time into the drawtext stages that burn
// the date and clock into the picture.
package overlay

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/backmassage/dvstamp/internal/filter"
	"github.com/backmassage/dvstamp/internal/timestamp"
)

// Position is the vertical placement of the text.
type Position string

const (
	Top    Position = "t"
	Bottom Position = "b"
)

// Options controls what is drawn and how.
type Options struct {
	Begin        float64 // seconds into the video the text appears; negative means 0
	Length       float64 // seconds the text stays; negative means until the end
	ShowDate     bool
	ShowTime     bool
	ShowTimecode bool
	FrameRate    float64 // source rate, needed only for the timecode
	FrameHeight  int
	SizePercent  float64 // font size as a percentage of FrameHeight
	Color        string
	Position     Position
	FontFile     string
}

// Window is the span of the video, in seconds, during which the text shows:
// [Start, End), or [Start, end of video) when Open.
type Window struct {
	Start float64
	End   float64
	Open  bool // no end; text stays until the video ends
}

// Expr renders w as an ffmpeg enable expression. ffmpeg's between() is
// closed at both ends, so a frame landing exactly on End is still drawn;
// Contains does not count it.
func (w Window) Expr() string {
	if w.Open {
		return "gte(t," + formatFloat(w.Start) + ")"
	}
	return "between(t," + formatFloat(w.Start) + "," + formatFloat(w.End) + ")"
}

// Contains reports whether t lies in [Start, End). It differs from Expr
// only at t == End.
func (w Window) Contains(t float64) bool {
	if t < w.Start {
		return false
	}
	return w.Open || t < w.End
}

// Spec is everything needed to draw the overlay for one file.
type Spec struct {
	ShowDate bool
	ShowTime bool

	DateText string // YYYY-MM-DD of the display time
	TimeText string // HH:MM of the display time

	// Timecode, when set, replaces TimeText with a running HH:MM:SS;FF
	// counter that starts at the recording time.
	Timecode string
	Rate     float64

	// TimecodeDropped explains why a requested timecode was not drawn.
	TimecodeDropped string

	Window    Window
	FontFile  string
	FontSize  float64
	FontColor string
	Y         string
}

// MissingTimeComponentError is returned when the clock was requested but the
// recording time carried only a date.
type MissingTimeComponentError struct {
	Recording timestamp.Recording
}

func (e *MissingTimeComponentError) Error() string {
	return fmt.Sprintf("recording time %s (%s) has no clock; use --no-time or give --datetime with HH:MM",
		e.Recording.Time.Format("2006-01-02"), e.Recording.Provenance)
}

// Build computes the overlay for rec.
func Build(rec timestamp.Recording, opts Options) (Spec, error) {
	if opts.ShowTime && !rec.HasClock {
		return Spec{}, &MissingTimeComponentError{Recording: rec}
	}

	begin := math.Max(opts.Begin, 0)
	win := Window{Start: begin, End: begin + opts.Length}
	if opts.Length < 0 {
		win = Window{Start: begin, Open: true}
	}

	// The text first appears Begin seconds in, so it shows the clock at
	// that moment rather than at the first frame.
	shown := rec.Time.Add(time.Duration(begin * float64(time.Second)))

	s := Spec{
		ShowDate:  opts.ShowDate,
		ShowTime:  opts.ShowTime,
		DateText:  shown.Format("2006-01-02"),
		TimeText:  shown.Format("15:04"),
		Window:    win,
		FontFile:  opts.FontFile,
		FontSize:  float64(opts.FrameHeight) * opts.SizePercent / 100,
		FontColor: opts.Color,
		Y:         "h-(2*lh)",
	}
	if opts.Position == Top {
		s.Y = "2*lh"
	}

	if opts.ShowTimecode && opts.ShowTime {
		switch {
		case !rec.HasSeconds:
			s.TimecodeDropped = "recording time has no seconds"
		case opts.FrameRate <= 0:
			s.TimecodeDropped = "frame rate is unknown"
		default:
			// The counter runs with the video, so it starts at the
			// recording time itself, not the advanced display time.
			s.Timecode = rec.Time.Format("15:04:05") + ";00"
			s.Rate = opts.FrameRate
		}
	}
	return s, nil
}

// DrawStages returns the drawtext stages for s: date first, then time.
// Disabled components are omitted.
func DrawStages(s Spec) []filter.Stage {
	var out []filter.Stage
	if s.ShowDate {
		out = append(out, s.drawtext("w*0.02", filter.Opt("text", s.DateText)))
	}
	if s.ShowTime {
		if s.Timecode != "" {
			out = append(out, s.drawtext("(w-tw)-(w*0.02)",
				filter.Opt("timecode", s.Timecode),
				filter.Opt("rate", formatFloat(s.Rate)),
				filter.Toggle("tc24hmax"),
				filter.Opt("text", ""),
			))
		} else {
			out = append(out, s.drawtext("(w-tw)-(w*0.02)", filter.Opt("text", s.TimeText)))
		}
	}
	return out
}

func (s Spec) drawtext(x string, content ...filter.Param) filter.Stage {
	var params []filter.Param
	if s.FontFile != "" {
		params = append(params, filter.Opt("fontfile", s.FontFile))
	}
	params = append(params, content...)
	params = append(params,
		filter.Opt("fontsize", formatFloat(s.FontSize)),
		filter.Opt("fontcolor", s.FontColor),
		filter.Opt("borderw", "2"),
		filter.Opt("x", x),
		filter.Opt("y", s.Y),
		filter.Opt("enable", s.Window.Expr()),
	)
	return filter.New("drawtext", params...)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
