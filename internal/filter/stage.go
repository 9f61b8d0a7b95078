// Package filter models ffmpeg filter stages: parsing them from the command
// line and rendering them, correctly escaped, into a filtergraph string.
package filter

import "strings"

// Param is one name=value option of a stage. Flag params were written bare on
// the command line and render as key=1.
type Param struct {
	Key   string
	Value string
	Flag  bool
}

// Opt returns a valued parameter.
func Opt(key, value string) Param { return Param{Key: key, Value: value} }

// Toggle returns a boolean parameter that is switched on.
func Toggle(key string) Param { return Param{Key: key, Flag: true} }

// Stage is a single filter with its parameters in the order given.
type Stage struct {
	Name   string
	Params []Param
}

// New builds a stage.
func New(name string, params ...Param) Stage {
	return Stage{Name: name, Params: params}
}

// Lookup returns the first parameter named key.
func (s Stage) Lookup(key string) (Param, bool) {
	for _, p := range s.Params {
		if p.Key == key {
			return p, true
		}
	}
	return Param{}, false
}

// optionEscaper quotes characters special inside a filter's option list.
var optionEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)

// graphEscaper quotes characters special to the filtergraph parser.
var graphEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `[`, `\[`, `]`, `\]`, `,`, `\,`, `;`, `\;`)

// String renders the stage at the option level: name=k=v:k2=v2.
func (s Stage) String() string {
	if len(s.Params) == 0 {
		return s.Name
	}
	var b strings.Builder
	b.WriteString(s.Name)
	for i, p := range s.Params {
		if i == 0 {
			b.WriteByte('=')
		} else {
			b.WriteByte(':')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		if p.Flag {
			b.WriteByte('1')
		} else {
			b.WriteString(optionEscaper.Replace(p.Value))
		}
	}
	return b.String()
}

// Chain renders stages as one linear filtergraph suitable for -vf or -af.
func Chain(stages []Stage) string {
	parts := make([]string, len(stages))
	for i, s := range stages {
		parts[i] = graphEscaper.Replace(s.String())
	}
	return strings.Join(parts, ",")
}
