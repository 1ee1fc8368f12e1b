package release

import (
	"context"
	"fmt"
	"path"

	"github.com/spf13/afero"

	"github.com/oshokin/pbo-forge/internal/domain/addon"
)

// Layout creates the on-disk directory skeleton of a release. Every
// operation is idempotent and safe under concurrent callers: directory
// creation tolerates "already exists" instead of treating it as a race.
type Layout struct {
	// fsys is the filesystem the release tree is materialized on.
	fsys afero.Fs
}

// NewLayout creates a layout over the given filesystem.
func NewLayout(fsys afero.Fs) *Layout {
	return &Layout{fsys: fsys}
}

// Prepare ensures {root}/addons and {root}/keys exist, creating parents as
// needed.
func (l *Layout) Prepare(_ context.Context, root string) error {
	for _, dir := range []string{
		path.Join(root, addon.Core.Folder()),
		path.Join(root, "keys"),
	} {
		if err := l.fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("prepare release folder %s: %w", dir, err)
		}
	}

	return nil
}

// EnsureCategory ensures a category's destination folder exists under the
// release root.
func (l *Layout) EnsureCategory(_ context.Context, root string, location addon.Location) error {
	dir := path.Join(root, location.Folder())
	if err := l.fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure category folder %s: %w", dir, err)
	}

	return nil
}

// EnsureDir ensures an arbitrary destination folder (including nested
// @{mod}_{addon}/addons folders) exists before a worker writes into it.
func (l *Layout) EnsureDir(_ context.Context, dir string) error {
	if err := l.fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure destination folder %s: %w", dir, err)
	}

	return nil
}
