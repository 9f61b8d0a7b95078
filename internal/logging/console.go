package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/backmassage/dvstamp/internal/term"
)

// levelSplit sends error-and-above events to errOut and the rest to out.
type levelSplit struct {
	out    io.Writer
	errOut io.Writer
}

func (w levelSplit) Write(p []byte) (int, error) { return w.out.Write(p) }

func (w levelSplit) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel {
		return w.errOut.Write(p)
	}
	return w.out.Write(p)
}

func consoleSplit(out, errOut io.Writer, noColor bool) zerolog.LevelWriter {
	return levelSplit{out: console(out, noColor), errOut: console(errOut, noColor)}
}

// console renders events as "2006-01-02 15:04:05 [LEVEL] message key=value".
func console(out io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       noColor,
		TimeFormat:    "2006-01-02 15:04:05",
		FieldsExclude: []string{"run_id"},
		FormatPrepare: func(evt map[string]interface{}) error {
			if ok, _ := evt[successField].(bool); ok {
				evt[zerolog.LevelFieldName] = "success"
				delete(evt, successField)
			}
			return nil
		},
		FormatLevel: func(i interface{}) string {
			level, _ := i.(string)
			label := "[" + strings.ToUpper(level) + "]"
			if noColor {
				return label
			}
			return levelColor(level) + label + term.NC
		},
	}
}

func levelColor(level string) string {
	switch level {
	case "success":
		return term.Green
	case "warn":
		return term.Yellow
	case "error", "fatal", "panic":
		return term.Red
	case "debug":
		return term.Magenta
	default:
		return term.Blue
	}
}
