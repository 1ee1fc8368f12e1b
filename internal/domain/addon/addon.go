package addon

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"

	"github.com/spf13/afero"

	"github.com/oshokin/pbo-forge/internal/logger"
)

// ArchiveExtension is the file extension of packed addon archives.
const ArchiveExtension = "pbo"

var (
	// ErrInvalidName is returned when an addon name contains a character
	// outside the allowed sets.
	ErrInvalidName = errors.New("invalid addon name")
	// ErrNotFound is returned by Locate when no first-class location
	// contains the addon.
	ErrNotFound = errors.New("addon not found")
)

// Addon identifies one packageable unit of content: a validated name plus
// the category it lives in. Immutable after construction.
type Addon struct {
	// Name is the addon folder name, validated by New.
	Name string
	// Location is the category folder the addon belongs to.
	Location Location
}

// New validates the name and returns the addon. Names may contain lowercase
// ASCII letters, digits and underscores. Uppercase letters and hyphens are
// accepted but each occurrence logs a warning. Anything else fails with
// ErrInvalidName.
func New(ctx context.Context, name string, location Location) (Addon, error) {
	if name == "" {
		return Addon{}, fmt.Errorf("%w: empty name", ErrInvalidName)
	}

	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
		case c >= 'A' && c <= 'Z', c == '-':
			logger.WarnKV(ctx, "Discouraged character in addon name",
				"character", string(c), "addon", name)
		default:
			return Addon{}, fmt.Errorf("%w: character %q in %q", ErrInvalidName, c, name)
		}
	}

	return Addon{Name: name, Location: location}, nil
}

// Locate searches the first-class locations in priority order for a folder
// named after the addon. Custom locations are never auto-discovered.
func Locate(ctx context.Context, fsys afero.Fs, name string) (Addon, error) {
	for _, location := range FirstClass() {
		if !location.Exists(fsys) {
			continue
		}

		info, err := fsys.Stat(path.Join(location.Folder(), name))
		if err != nil || !info.IsDir() {
			continue
		}

		return New(ctx, name, location)
	}

	return Addon{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// DiscoverIn enumerates the addons of one category by listing its folder.
// Entries that are not directories are ignored. The result is sorted by name.
func DiscoverIn(ctx context.Context, fsys afero.Fs, location Location) ([]Addon, error) {
	entries, err := afero.ReadDir(fsys, location.Folder())
	if err != nil {
		return nil, fmt.Errorf("read category folder %s: %w", location.Folder(), err)
	}

	addons := make([]Addon, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		a, err := New(ctx, entry.Name(), location)
		if err != nil {
			return nil, err
		}

		addons = append(addons, a)
	}

	Sort(addons)

	return addons, nil
}

// Sort orders addons by (location, name) for deterministic build order
// and reproducible logs.
func Sort(addons []Addon) {
	sort.Slice(addons, func(i, j int) bool {
		if c := addons[i].Location.Compare(addons[j].Location); c != 0 {
			return c < 0
		}

		return addons[i].Name < addons[j].Name
	})
}

// Source returns the addon's source folder: {location-folder}/{name}.
// Pure path computation; the filesystem is never touched.
func (a Addon) Source() string {
	return path.Join(a.Location.Folder(), a.Name)
}

// ArchiveName returns the packed archive filename:
// {prefix}_{name}.pbo when a prefix is given, {name}.pbo otherwise.
func (a Addon) ArchiveName(prefix string) string {
	if prefix != "" {
		return fmt.Sprintf("%s_%s.%s", prefix, a.Name, ArchiveExtension)
	}

	return fmt.Sprintf("%s.%s", a.Name, ArchiveExtension)
}

// DestinationParent returns the folder receiving the released archive.
// Without standalone it is {root}/{location-folder}. With standalone the
// addon ships as its own nested mod: {root}/{location-folder}/
// @{standalone}_{name}/addons. A standalone Core addon is allowed but
// logged, since core addons are expected to ship as part of the larger mod.
func (a Addon) DestinationParent(ctx context.Context, root, standalone string) string {
	parent := path.Join(root, a.Location.Folder())

	if standalone != "" {
		if a.Location == Core {
			logger.WarnKV(ctx, "Standalone addons should be in optionals or compats",
				"addon", a.Name)
		}

		parent = path.Join(parent, fmt.Sprintf("@%s_%s", standalone, a.Name), "addons")
	}

	return parent
}

// Destination returns the full path of the released archive.
func (a Addon) Destination(ctx context.Context, root, prefix, standalone string) string {
	return path.Join(a.DestinationParent(ctx, root, standalone), a.ArchiveName(prefix))
}
