// Package filesystem provides the types.FS implementations used by bootstrap:
// the real OS filesystem and an afero-backed one. filesystemtest wraps the
// latter for tests.
package filesystem
