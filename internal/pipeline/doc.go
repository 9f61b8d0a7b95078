// Package pipeline runs the per-file state machines for a batch and reports
// the outcome.
//
// Render:  Resolving → BuildingJob → Executing → Finalizing → Done
// Rename:  Resolving → BuildingJob → Executing → Done
//
// A file that fails leaves its machine with a *StageError naming the stage;
// the batch always continues with the next file. Files may run concurrently
// (config Jobs); the encoder and tag tool are serialized per output path by
// an advisory file lock.
package pipeline
