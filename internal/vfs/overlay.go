package vfs

import (
	"github.com/spf13/afero"
)

// Overlay presents a single file-tree view composed of a writable in-memory
// layer stacked over a read-only physical tree. Reads fall through to the
// physical layer when a path is absent from the memory layer; writes land
// only in memory, so the source tree stays untouched. The memory layer is
// entirely volatile: Discard is the only rollback protocol.
type Overlay struct {
	// base is the read-only physical layer.
	base afero.Fs
	// layer is the volatile in-memory write layer.
	layer afero.Fs
	// union resolves reads through layer first, then base.
	union afero.Fs
}

// NewOverlay stacks a fresh memory layer over the physical tree rooted at root.
func NewOverlay(root string) *Overlay {
	return NewOverlayOver(afero.NewBasePathFs(afero.NewOsFs(), root))
}

// NewOverlayOver stacks a fresh memory layer over an arbitrary base
// filesystem. The base is wrapped read-only regardless of its own mode.
func NewOverlayOver(base afero.Fs) *Overlay {
	o := &Overlay{base: afero.NewReadOnlyFs(base)}
	o.Discard()

	return o
}

// Fs returns the combined view for callers that read and stage files.
func (o *Overlay) Fs() afero.Fs {
	return o.union
}

// Layer returns only the in-memory write layer, e.g. for committing staged
// files elsewhere.
func (o *Overlay) Layer() afero.Fs {
	return o.layer
}

// Discard drops every staged write by replacing the memory layer.
func (o *Overlay) Discard() {
	o.layer = afero.NewMemMapFs()
	o.union = afero.NewCopyOnWriteFs(o.base, o.layer)
}
