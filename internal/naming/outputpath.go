package naming

import (
	"os"
	"path/filepath"
	"strings"
)

// TapeExt is the container extension that marks a tape-transfer target.
const TapeExt = ".dv"

// IsTape reports whether path names a raw DV stream destined for tape.
func IsTape(path string) bool {
	return strings.EqualFold(filepath.Ext(path), TapeExt)
}

// IdentityOutputError is returned when the output would overwrite the input.
type IdentityOutputError struct {
	Path string
}

func (e *IdentityOutputError) Error() string {
	return "output path is the input file: " + e.Path
}

// ReplaceExt swaps the extension of path for ext ("mp4" or ".mp4"). Only the
// final suffix is touched, so a directory named "x.dv" survives intact.
// An empty ext returns path unchanged.
func ReplaceExt(path, ext string) string {
	if ext == "" {
		return path
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// ResolveOutput returns the file the render of input should write to.
//
//	output is a directory: <output>/<basename of input>
//	otherwise:             output
//
// ext, when set, then replaces the extension. The result must differ from
// input, or *IdentityOutputError is returned.
func ResolveOutput(input, output, ext string) (string, error) {
	target := output
	if fi, err := os.Stat(output); err == nil && fi.IsDir() {
		target = filepath.Join(output, filepath.Base(input))
	}
	target = ReplaceExt(target, ext)
	if samePath(input, target) {
		return "", &IdentityOutputError{Path: input}
	}
	return target, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	fa, errA := os.Stat(a)
	fb, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(fa, fb)
}
