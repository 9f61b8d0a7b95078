// Package planner assembles the EncodeJob for one file: the video and audio
// filter chains, the optional audio bounce, and the output options that
// carry the recording time into the container.
//
//   - types.go: EncodeJob, BounceStep, Option, Request
//   - planner.go: Assemble
//   - filter.go: BuildVideoChain (deinterlace, user stages, overlay)
//   - audio.go: bounce placement and format
//   - container.go: creation_time, DV target, --encode-args parsing and merge
package planner
