package clean

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/oshokin/pbo-forge/internal/domain/addon"
	"github.com/oshokin/pbo-forge/internal/logger"
	"github.com/oshokin/pbo-forge/internal/service/release"
)

// Options contains inputs for the clean entry point.
type Options struct {
	// Fs is the project filesystem.
	Fs afero.Fs
	// Force also removes the releases tree, keys folder included.
	Force bool
}

// Run removes packed archives from every category folder and, with force,
// the whole releases tree.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "clean")

	var removed int

	for _, location := range addon.FirstClass() {
		if !location.Exists(opts.Fs) {
			continue
		}

		entries, err := afero.ReadDir(opts.Fs, location.Folder())
		if err != nil {
			return fmt.Errorf("read category folder %s: %w", location.Folder(), err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), "."+addon.ArchiveExtension) {
				continue
			}

			target := path.Join(location.Folder(), entry.Name())
			if err := opts.Fs.Remove(target); err != nil {
				return fmt.Errorf("remove archive %s: %w", target, err)
			}

			removed++

			logger.DebugKV(ctx, "Removed packed archive", "archive", target)
		}
	}

	logger.InfoKV(ctx, "Removed packed archives", "count", removed)

	if !opts.Force {
		return nil
	}

	if err := opts.Fs.RemoveAll(release.ReleasesFolder); err != nil {
		return fmt.Errorf("remove releases tree: %w", err)
	}

	logger.Info(ctx, "Removed releases tree")

	return nil
}
