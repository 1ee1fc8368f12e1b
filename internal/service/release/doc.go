// Package release implements the release pipeline: it materializes the
// versioned release tree, obtains and publishes the signing key, and copies
// and signs every packed addon archive on a bounded worker pool.
//
// Per-unit failures are collected into the final Report instead of aborting
// the release; only failures during the shared one-time setup (layout, key
// acquisition, auxiliary files) are fatal.
package release
