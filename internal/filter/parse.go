package filter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ArgError reports a filter argument that cannot be turned into a Stage.
type ArgError struct {
	Arg     string
	Segment string
	Reason  string
}

func (e *ArgError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("filter %q: segment %q: %s", e.Arg, e.Segment, e.Reason)
	}
	return fmt.Sprintf("filter %q: %s", e.Arg, e.Reason)
}

var reIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Parse reads "name" or "name=key=value:key2=value2:flag".
//
// Whitespace anywhere in arg is dropped, along with a backslash escaping it.
// A bare segment is a flag and must be a valid option name; ffmpeg's
// positional form ("scale=iw/2:ih/2") is not accepted.
func Parse(arg string) (Stage, error) {
	s := stripSpace(arg)
	if s == "" {
		return Stage{}, &ArgError{Arg: arg, Reason: "empty filter"}
	}

	name, rest, hasParams := strings.Cut(s, "=")
	if !reIdent.MatchString(name) {
		return Stage{}, &ArgError{Arg: arg, Segment: name, Reason: "invalid filter name"}
	}
	st := Stage{Name: name}
	if !hasParams {
		return st, nil
	}
	if rest == "" {
		return Stage{}, &ArgError{Arg: arg, Reason: "no parameters after '='"}
	}

	for _, seg := range strings.Split(rest, ":") {
		if seg == "" {
			return Stage{}, &ArgError{Arg: arg, Reason: "empty parameter"}
		}
		key, val, ok := strings.Cut(seg, "=")
		if !ok {
			if !reIdent.MatchString(key) {
				return Stage{}, &ArgError{Arg: arg, Segment: seg, Reason: "missing required '=' (positional parameters are not supported)"}
			}
			st.Params = append(st.Params, Toggle(key))
			continue
		}
		if key == "" {
			return Stage{}, &ArgError{Arg: arg, Segment: seg, Reason: "empty parameter name"}
		}
		if !reIdent.MatchString(key) {
			return Stage{}, &ArgError{Arg: arg, Segment: seg, Reason: "invalid parameter name"}
		}
		st.Params = append(st.Params, Opt(key, val))
	}
	return st, nil
}

// ParseAll parses each argument in order.
func ParseAll(args []string) ([]Stage, error) {
	stages := make([]Stage, 0, len(args))
	for _, a := range args {
		st, err := Parse(a)
		if err != nil {
			return nil, err
		}
		stages = append(stages, st)
	}
	return stages, nil
}

func stripSpace(s string) string {
	var b strings.Builder
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r == '\\' && i+1 < len(rs) && unicode.IsSpace(rs[i+1]) {
			i++
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
