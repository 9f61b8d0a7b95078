package planner

import (
	"path/filepath"
	"strings"
)

const (
	defaultBounceRate = 48000
	bounceChannels    = 2
)

// buildBounce places the PCM file next to the output so it lands on the same
// volume and is cleaned up with it on failure.
func buildBounce(req Request) *BounceStep {
	rate := req.SampleRate
	if rate <= 0 {
		rate = defaultBounceRate
	}
	dir := filepath.Dir(req.OutputPath)
	stem := strings.TrimSuffix(filepath.Base(req.OutputPath), filepath.Ext(req.OutputPath))
	return &BounceStep{
		Path:       filepath.Join(dir, "."+stem+".bounce.s16le"),
		SampleRate: rate,
		Channels:   bounceChannels,
	}
}
