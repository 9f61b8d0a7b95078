package probe

import (
	"context"
	"strconv"
	"sync"

	"github.com/backmassage/dvstamp/internal/metadata"
)

// MediaInfo serves metadata lookups from one cached mediainfo call per file.
type MediaInfo struct {
	Bin string

	mu    sync.Mutex
	cache map[string]*Report
	probe func(ctx context.Context, bin, path string) (*Report, error)
}

// NewMediaInfo returns a source that runs bin (default "mediainfo").
func NewMediaInfo(bin string) *MediaInfo {
	return &MediaInfo{Bin: bin, cache: make(map[string]*Report), probe: Probe}
}

// Report returns the cached report for path, probing on first use. Failed
// probes are not cached.
func (m *MediaInfo) Report(ctx context.Context, path string) (*Report, error) {
	m.mu.Lock()
	if r, ok := m.cache[path]; ok {
		m.mu.Unlock()
		return r, nil
	}
	m.mu.Unlock()

	r, err := m.probe(ctx, m.Bin, path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cache[path] = r
	m.mu.Unlock()
	return r, nil
}

// Forget drops the cached report for path.
func (m *MediaInfo) Forget(path string) {
	m.mu.Lock()
	delete(m.cache, path)
	m.mu.Unlock()
}

// Lookup implements metadata.Source.
func (m *MediaInfo) Lookup(ctx context.Context, path string, field metadata.Field) (string, bool, error) {
	r, err := m.Report(ctx, path)
	if err != nil {
		return "", false, err
	}
	v := r.value(field)
	return v, v != "", nil
}

// value maps a metadata field to the track that carries it.
func (r *Report) value(field metadata.Field) string {
	switch field {
	case metadata.RecordedDate:
		return r.RecordedDate()
	case metadata.FrameRate:
		if fr := r.FrameRate(); fr > 0 {
			return strconv.FormatFloat(fr, 'f', -1, 64)
		}
		return ""
	case metadata.VideoHeight:
		if h := r.Height(); h > 0 {
			return strconv.Itoa(h)
		}
		return ""
	case metadata.AudioSampleRate:
		if sr := r.SampleRate(); sr > 0 {
			return strconv.Itoa(sr)
		}
		return ""
	case metadata.ScanType:
		if r.Video != nil {
			return r.Video.ScanType
		}
		return ""
	}
	if v, ok := r.General.Fields[string(field)]; ok {
		return v
	}
	if r.Video != nil {
		if v, ok := r.Video.Fields[string(field)]; ok {
			return v
		}
	}
	if r.Audio != nil {
		return r.Audio.Fields[string(field)]
	}
	return ""
}
