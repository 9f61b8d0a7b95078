// Package tags reads and writes file metadata through a stay-open exiftool
// process.
package tags

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/barasher/go-exiftool"

	"github.com/backmassage/dvstamp/internal/ffmpeg"
	"github.com/backmassage/dvstamp/internal/metadata"
)

// CuratedKeys are the hints selecting which source tags survive a re-encode.
// A tag is copied when its name contains any of them.
var CuratedKeys = []string{
	"CreateDate", "ModifyDate", "DateTimeOriginal", "OffsetTime",
	"Aperture", "Gain", "Exposure", "WhiteBalance", "ISO",
	"ImageStabilization", "FNumber", "Shutter", "FrameRate", "Rotation",
	"GPS", "Make", "Model", "MajorBrand", "MinorVersion",
	"CompatibleBrands", "FileFunctionFlags", "UserComment",
}

// CommentKey is the tag the audit line is prepended to.
const CommentKey = "UserComment"

// Bridge wraps one exiftool process, started on first use. It is safe for
// concurrent use; calls are serialized because exiftool answers one request
// at a time.
type Bridge struct {
	bin string

	mu       sync.Mutex
	et       *exiftool.Exiftool
	startErr error
}

// New returns a bridge to bin ("" or "exiftool" means the one on PATH).
func New(bin string) *Bridge {
	return &Bridge{bin: bin}
}

// start launches exiftool once. A failed start is remembered.
// b.mu must be held.
func (b *Bridge) start() error {
	if b.et != nil || b.startErr != nil {
		return b.startErr
	}
	var opts []func(*exiftool.Exiftool) error
	if b.bin != "" && b.bin != "exiftool" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(b.bin))
	}
	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		b.startErr = &ffmpeg.ProcessError{Tool: "exiftool", ExitCode: -1, Err: err}
		return b.startErr
	}
	b.et = et
	return nil
}

// Close stops the exiftool process if it was started.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.et == nil {
		return nil
	}
	err := b.et.Close()
	b.et = nil
	return err
}

// ReadAll returns every tag exiftool reports for path.
func (b *Bridge) ReadAll(path string) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.start(); err != nil {
		return nil, err
	}
	fms := b.et.ExtractMetadata(path)
	if len(fms) == 0 {
		return nil, toolError("read", path, fmt.Errorf("no metadata returned"))
	}
	if fms[0].Err != nil {
		return nil, toolError("read", path, fms[0].Err)
	}
	return fms[0].Fields, nil
}

// Write sets fields on path. Only the given tags are touched. A value is a
// string, a number, or a list of them; lists become one assignment per item.
//
// exiftool takes its arguments one per line, so multi-line strings are
// handed over through a temporary file (-TAG<=FILE).
func (b *Bridge) Write(path string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fm := exiftool.FileMetadata{File: path, Fields: make(map[string]interface{}, len(fields))}
	var spill []string
	defer func() {
		for _, f := range spill {
			os.Remove(f)
		}
	}()
	for k, v := range fields {
		s, ok := v.(string)
		if !ok || !strings.ContainsAny(s, "\r\n") {
			fm.Fields[k] = v
			continue
		}
		f, err := valueFile(s)
		if err != nil {
			return toolError("write", path, err)
		}
		spill = append(spill, f)
		fm.Fields[k+"<"] = f
	}
	batch := []exiftool.FileMetadata{fm}

	b.mu.Lock()
	err := b.start()
	if err == nil {
		b.et.WriteMetadata(batch)
	}
	b.mu.Unlock()

	if err != nil {
		return err
	}
	if batch[0].Err != nil {
		return toolError("write", path, batch[0].Err)
	}
	return nil
}

func valueFile(s string) (string, error) {
	f, err := os.CreateTemp("", "dvstamp-tag-*.txt")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(s); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// Lookup implements metadata.Source using the first tag whose name contains
// field. An exact name match is preferred.
func (b *Bridge) Lookup(ctx context.Context, path string, field metadata.Field) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	fields, err := b.ReadAll(path)
	if err != nil {
		return "", false, err
	}
	v, ok := matchKey(fields, string(field))
	return v, ok, nil
}

// CopyCurated copies the curated tags of src onto dst.
func (b *Bridge) CopyCurated(src, dst string) error {
	fields, err := b.ReadAll(src)
	if err != nil {
		return err
	}
	return b.Write(dst, curate(fields))
}

// PrependComment puts line in front of dst's existing UserComment.
func (b *Bridge) PrependComment(dst, line string) error {
	fields, err := b.ReadAll(dst)
	if err != nil {
		return err
	}
	existing := ""
	if v, ok := fields[CommentKey]; ok && v != nil {
		existing = fmt.Sprint(v)
	}
	return b.Write(dst, map[string]any{CommentKey: prepend(line, existing)})
}

func toolError(op, path string, err error) error {
	return &ffmpeg.ProcessError{
		Tool:     "exiftool",
		Args:     []string{op, path},
		ExitCode: -1,
		Stderr:   err.Error(),
		Err:      err,
	}
}

// curate keeps the tags selected by CuratedKeys with their values as read.
func curate(fields map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range fields {
		if k == "SourceFile" || v == nil {
			continue
		}
		for _, hint := range CuratedKeys {
			if strings.Contains(k, hint) {
				out[k] = v
				break
			}
		}
	}
	return out
}

func matchKey(fields map[string]any, name string) (string, bool) {
	if v, ok := fields[name]; ok && v != nil {
		return fmt.Sprint(v), true
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if strings.Contains(k, name) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Strings(keys)
	return fmt.Sprint(fields[keys[0]]), true
}

func prepend(line, existing string) string {
	if existing == "" {
		return line
	}
	return line + "\n" + existing
}
