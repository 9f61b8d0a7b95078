// Package testsupport holds fakes shared by package tests.
package testsupport

import (
	"context"
	"sync"

	"github.com/backmassage/dvstamp/internal/metadata"
)

// Source is an in-memory metadata.Source keyed by path. Errors registered
// with Fail are returned for every field of that path.
type Source struct {
	mu     sync.Mutex
	values map[string]map[metadata.Field]string
	errs   map[string]error
	calls  int
}

// NewSource returns an empty fake.
func NewSource() *Source {
	return &Source{
		values: make(map[string]map[metadata.Field]string),
		errs:   make(map[string]error),
	}
}

// Set stores value for field of path and returns s for chaining.
func (s *Source) Set(path string, field metadata.Field, value string) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values[path] == nil {
		s.values[path] = make(map[metadata.Field]string)
	}
	s.values[path][field] = value
	return s
}

// Fail makes every lookup for path return err.
func (s *Source) Fail(path string, err error) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[path] = err
	return s
}

// Calls reports how many lookups were served.
func (s *Source) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Lookup implements metadata.Source.
func (s *Source) Lookup(_ context.Context, path string, field metadata.Field) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := s.errs[path]; err != nil {
		return "", false, err
	}
	v, ok := s.values[path][field]
	return v, ok, nil
}
