// Package ffmpeg turns an EncodeJob into ffmpeg command lines and runs them.
//
//   - builder.go: Build (main encode) and BuildBounce (PCM pre-pass)
//   - task.go: Start/Task/Run process handling, CommandLine quoting
//   - executor.go: Runner, which sequences the steps of one job
//   - errors.go: ProcessError and stderr classification
//
// Runs are never retried; a classified failure only yields a hint.
package ffmpeg
