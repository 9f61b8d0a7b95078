package timestamp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Provenance records where a Recording came from.
type Provenance string

// Provenance values in resolution order.
const (
	Explicit       Provenance = "explicit"
	PrimaryField   Provenance = "primary-metadata-field"
	SecondaryField Provenance = "secondary-metadata-field"
)

// FromMetadata reports whether the timestamp was read from the file, which is
// the only case where offset and drift corrections apply.
func (p Provenance) FromMetadata() bool {
	return p == PrimaryField || p == SecondaryField
}

// Layout is the canonical rendering of a Recording.
const Layout = "2006-01-02 15:04:05"

// Recording is the instant a clip was recorded, as shown on the camera clock.
//
// Time is a naive wall-clock value. It is carried in time.UTC so arithmetic
// never crosses a daylight-saving transition; use Local to place it on the
// host's clock.
type Recording struct {
	Time       time.Time
	Provenance Provenance
	HasClock   bool // hour and minute were present in the source text
	HasSeconds bool
}

// Add returns r shifted by d.
func (r Recording) Add(d time.Duration) Recording {
	r.Time = r.Time.Add(d)
	return r
}

// Local returns the same wall-clock reading in the host's time zone.
func (r Recording) Local() time.Time {
	t := r.Time
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local)
}

func (r Recording) String() string {
	return r.Time.Format(Layout)
}

// reLenient matches "yyyy-mm-dd", "yyyy:mm:dd" and either followed by
// " HH:MM" or " HH:MM:SS". Anything after the match is ignored.
var reLenient = regexp.MustCompile(`^(\d{4})[-:](\d{2})[-:](\d{2})(?: (\d{2}):(\d{2})(?::(\d{2}))?)?`)

// Parse reads a timestamp in the lenient camera/metadata format. A missing
// clock defaults to noon and missing seconds to zero; the Has* flags record
// which parts were present. Provenance is left empty for the caller to set.
func Parse(s string) (Recording, bool) {
	m := reLenient.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Recording{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	rec := Recording{}
	hour, minute, sec := 12, 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		rec.HasClock = true
		if m[6] != "" {
			sec, _ = strconv.Atoi(m[6])
			rec.HasSeconds = true
		}
	}
	if month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 || sec > 59 {
		return Recording{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC)
	if t.Day() != day {
		// time.Date normalized an impossible date such as Feb 30.
		return Recording{}, false
	}
	rec.Time = t
	return rec, true
}
