package offset

import (
	"path/filepath"
	"time"

	"github.com/backmassage/dvstamp/internal/naming"
	"github.com/backmassage/dvstamp/internal/timestamp"
)

// DriftStrategy estimates how far a camera clock had drifted when path was
// recorded. The returned duration is added to the resolved time.
type DriftStrategy interface {
	Guess(path string, rec timestamp.Recording) (time.Duration, error)
}

// FilenameDrift trusts a timestamp already present in the file name (for
// example one written by a rename with a known-good clock) and returns the
// difference between it and the resolved time.
type FilenameDrift struct {
	Layout string
}

// Guess returns nameTime - rec.Time, so rec.Time + drift equals the name.
func (f FilenameDrift) Guess(path string, rec timestamp.Recording) (time.Duration, error) {
	named, err := naming.ParseStamp(filepath.Base(path), f.Layout)
	if err != nil {
		return 0, err
	}
	return named.Sub(rec.Time), nil
}

// ApplyDrift adds d to rec unless rec was given explicitly.
func ApplyDrift(rec timestamp.Recording, d time.Duration) timestamp.Recording {
	if !rec.Provenance.FromMetadata() {
		return rec
	}
	return rec.Add(d)
}
