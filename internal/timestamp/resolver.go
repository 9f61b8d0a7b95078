// Package timestamp resolves the single authoritative recording time of a
// video file from an explicit override or its embedded metadata.
package timestamp

import (
	"context"
	"errors"
	"fmt"

	"github.com/backmassage/dvstamp/internal/metadata"
)

// ResolutionError is returned when no source produced a parsable timestamp.
type ResolutionError struct {
	Path     string
	Explicit string
	Err      error // joined per-source causes, nil when every field was absent
}

func (e *ResolutionError) Error() string {
	msg := "no usable recording timestamp for " + e.Path
	if e.Explicit != "" {
		msg += fmt.Sprintf(" (explicit value %q did not parse)", e.Explicit)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Resolver walks the explicit value and the metadata fields in priority
// order and returns the first one that parses.
type Resolver struct {
	Source metadata.Source
}

var fieldOrder = []struct {
	field metadata.Field
	prov  Provenance
}{
	{metadata.RecordedDate, PrimaryField},
	{metadata.DateTimeOriginal, SecondaryField},
}

// Resolve returns the recording time of path. A non-empty explicit value that
// parses wins without touching the file. Unparsable values, whether explicit
// or read from metadata, fall through to the next source.
func (r *Resolver) Resolve(ctx context.Context, explicit, path string) (Recording, error) {
	if explicit != "" {
		if rec, ok := Parse(explicit); ok {
			rec.Provenance = Explicit
			return rec, nil
		}
	}

	var causes []error
	for _, c := range fieldOrder {
		if err := ctx.Err(); err != nil {
			return Recording{}, err
		}
		val, ok, err := r.Source.Lookup(ctx, path, c.field)
		if err != nil {
			causes = append(causes, fmt.Errorf("%s: %w", c.field, err))
			continue
		}
		if !ok || val == "" {
			continue
		}
		rec, ok := Parse(val)
		if !ok {
			causes = append(causes, fmt.Errorf("%s: unparsable value %q", c.field, val))
			continue
		}
		rec.Provenance = c.prov
		return rec, nil
	}
	return Recording{}, &ResolutionError{Path: path, Explicit: explicit, Err: errors.Join(causes...)}
}
