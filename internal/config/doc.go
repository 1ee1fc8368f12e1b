// Package config defines the project descriptor used by the build pipeline
// and provides helpers to load, validate and save it in YAML format.
//
// The Project type names the mod, its signing key, auxiliary file globs, and
// the optional/skip addon lists honored during a release.
package config
