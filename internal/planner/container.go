package planner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
)

// creationTimeLayout is how ffmpeg expects creation_time.
const creationTimeLayout = "2006-01-02 15:04:05"

// containerOptions returns the options dvstamp always sets: the creation
// time and, for tape targets, the DV preset. The DV muxer reads
// creation_time as UTC and needs the Z suffix to accept it.
func containerOptions(req Request, tape bool, target string) []Option {
	ct := req.Recording.Time.Format(creationTimeLayout)
	if tape {
		return []Option{
			{Flag: "-metadata", Value: "creation_time=" + ct + "Z"},
			{Flag: "-target", Value: target},
		}
	}
	return []Option{{Flag: "-metadata", Value: "creation_time=" + ct}}
}

// ParseEncodeArgs splits a shell-quoted option string into options. A token
// starting with "-" opens an option; the token after it is its value unless
// it is another option. Numbers such as "-1" count as values.
func ParseEncodeArgs(s string) ([]Option, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	words, err := shellwords.Parse(s)
	if err != nil {
		return nil, err
	}
	var opts []Option
	for i := 0; i < len(words); i++ {
		w := words[i]
		if !isFlag(w) {
			return nil, fmt.Errorf("unexpected argument %q (expected an option starting with '-')", w)
		}
		o := Option{Flag: w}
		if i+1 < len(words) && !isFlag(words[i+1]) {
			o.Value = words[i+1]
			i++
		}
		opts = append(opts, o)
	}
	return opts, nil
}

func isFlag(w string) bool {
	if len(w) < 2 || w[0] != '-' {
		return false
	}
	_, err := strconv.ParseFloat(w, 64)
	return err != nil
}

// MergeOptions applies overrides on top of base. An override replaces the
// base option with the same identity in place; new options are appended in
// override order. Identity is the flag, or flag plus key for -metadata.
func MergeOptions(base, overrides []Option) []Option {
	out := append([]Option(nil), base...)
	for _, o := range overrides {
		id := optionID(o)
		replaced := false
		for i := range out {
			if optionID(out[i]) == id {
				out[i] = o
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, o)
		}
	}
	return out
}

func optionID(o Option) string {
	if strings.HasPrefix(o.Flag, "-metadata") {
		if k, _, ok := cutMetadata(o.Value); ok {
			return o.Flag + "|" + k
		}
	}
	return o.Flag
}

func cutMetadata(v string) (key, value string, ok bool) {
	return strings.Cut(v, "=")
}
