// Package naming owns every path dvstamp derives from another path: the
// timestamped name a clip is renamed to, the render output for an input, and
// the de-duplication of targets claimed twice within one batch.
//
// Files:
//   - stamp.go: RenameTarget/ParseStamp, the "2006-01-02_1504_05" convention.
//   - outputpath.go: ResolveOutput, ReplaceExt, IsTape, IdentityOutputError.
//   - collision.go: CollisionResolver (" - dupN" suffixes).
package naming
