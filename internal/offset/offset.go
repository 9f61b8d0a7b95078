// Package offset corrects a resolved recording time for a camera clock that
// was set to the wrong time or time zone.
package offset

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/backmassage/dvstamp/internal/timestamp"
)

// ErrInvalid is returned by Parse for text that is not [+|-]H:MM[:SS].
var ErrInvalid = errors.New("offset must look like [+|-]H:MM[:SS]")

var reOffset = regexp.MustCompile(`^([+-]?)(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// Offset is a signed correction of at most 99:59:59.
type Offset struct {
	Negative  bool
	Magnitude time.Duration
}

// Parse reads "+2:00", "-9:00", "1:30:15" and the like. No sign means forward.
func Parse(s string) (Offset, error) {
	m := reOffset.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Offset{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	h, _ := strconv.Atoi(m[2])
	mm, _ := strconv.Atoi(m[3])
	ss := 0
	if m[4] != "" {
		ss, _ = strconv.Atoi(m[4])
	}
	if mm > 59 || ss > 59 {
		return Offset{}, fmt.Errorf("%w: %q (minutes and seconds must be below 60)", ErrInvalid, s)
	}
	return Offset{
		Negative:  m[1] == "-",
		Magnitude: time.Duration(h)*time.Hour + time.Duration(mm)*time.Minute + time.Duration(ss)*time.Second,
	}, nil
}

// Duration returns the signed correction.
func (o Offset) Duration() time.Duration {
	if o.Negative {
		return -o.Magnitude
	}
	return o.Magnitude
}

// IsZero reports whether applying o changes nothing.
func (o Offset) IsZero() bool { return o.Magnitude == 0 }

func (o Offset) String() string {
	sign := "+"
	if o.Negative {
		sign = "-"
	}
	total := int(o.Magnitude / time.Second)
	h, m, s := total/3600, total/60%60, total%60
	if s != 0 {
		return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%d:%02d", sign, h, m)
}

// Apply shifts rec by o. Explicit timestamps are returned unchanged: the user
// already typed the correct time.
func Apply(rec timestamp.Recording, o Offset) timestamp.Recording {
	if !rec.Provenance.FromMetadata() {
		return rec
	}
	return rec.Add(o.Duration())
}
