// Package probe provides mediainfo-based media inspection. A single JSON call
// per file is parsed into a Report and cached; MediaInfo exposes it as a
// metadata.Source for the recording date, frame geometry, frame rate, audio
// sample rate and scan type.
package probe
