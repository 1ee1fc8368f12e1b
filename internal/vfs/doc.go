// Package vfs provides the layered file view used during builds: a volatile
// in-memory layer over the read-only project tree, plus copy helpers that
// work across afero filesystems.
package vfs
