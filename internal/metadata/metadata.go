// Package metadata names the container fields dvstamp reads and routes each
// field to the tool that knows how to read it.
package metadata

import (
	"context"
	"fmt"
)

// Field is a metadata key understood by at least one Source.
type Field string

// Fields read by the resolver, the overlay builder and the job assembler.
const (
	RecordedDate     Field = "Recorded_Date"
	DateTimeOriginal Field = "DateTimeOriginal"
	VideoHeight      Field = "Height"
	FrameRate        Field = "FrameRate"
	AudioSampleRate  Field = "SamplingRate"
	ScanType         Field = "ScanType"
)

// Source returns the raw string value of field for the file at path.
// ok is false when the file simply does not carry the field; err is reserved
// for tool failures.
type Source interface {
	Lookup(ctx context.Context, path string, field Field) (value string, ok bool, err error)
}

// Router dispatches lookups to the Source registered for each field, falling
// back to a default Source for fields nobody claimed.
type Router struct {
	routes   map[Field]Source
	fallback Source
}

// NewRouter returns a Router that sends every field to fallback until Route
// says otherwise. fallback may be nil.
func NewRouter(fallback Source) *Router {
	return &Router{routes: make(map[Field]Source), fallback: fallback}
}

// Route registers src for fields and returns r for chaining.
func (r *Router) Route(src Source, fields ...Field) *Router {
	for _, f := range fields {
		r.routes[f] = src
	}
	return r
}

// Lookup implements Source.
func (r *Router) Lookup(ctx context.Context, path string, field Field) (string, bool, error) {
	src, ok := r.routes[field]
	if !ok {
		src = r.fallback
	}
	if src == nil {
		return "", false, fmt.Errorf("no metadata source for %s", field)
	}
	return src.Lookup(ctx, path, field)
}
