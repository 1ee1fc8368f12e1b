// Package addon defines the addon path-resolution model.
//
// An Addon pairs a validated name with a Location (the category folder it
// belongs to) and computes source, archive and destination paths as pure
// functions. Realizing those paths on disk is the release service's job.
package addon
