package addon

import (
	"strings"

	"github.com/spf13/afero"
)

// locationKind discriminates the closed set of addon categories.
type locationKind uint8

const (
	kindCore locationKind = iota
	kindOptional
	kindCompat
	kindCustom
)

// Location identifies the category an addon belongs to and maps it to a
// conventional folder name. It is an immutable value with derived equality
// and ordering (Core < Optional < Compat < Custom, customs by folder name).
type Location struct {
	// kind selects the category variant.
	kind locationKind
	// custom is the folder name carried by the Custom variant; empty otherwise.
	custom string
}

var (
	// Core holds the addons that always ship with the mod.
	Core = Location{kind: kindCore}
	// Optional holds addons users may enable individually.
	Optional = Location{kind: kindOptional}
	// Compat holds compatibility addons for other mods.
	Compat = Location{kind: kindCompat}
)

// CustomLocation returns a Location for a custom-named category folder.
func CustomLocation(folder string) Location {
	return Location{kind: kindCustom, custom: folder}
}

// FirstClass returns the locations searched during auto-discovery,
// in priority order. Custom locations are excluded.
func FirstClass() []Location {
	return []Location{Core, Optional, Compat}
}

// Folder returns the conventional folder name for the category.
func (l Location) Folder() string {
	switch l.kind {
	case kindCore:
		return "addons"
	case kindOptional:
		return "optionals"
	case kindCompat:
		return "compats"
	default:
		return l.custom
	}
}

// String implements fmt.Stringer.
func (l Location) String() string {
	return l.Folder()
}

// Compare orders locations for deterministic grouping: built-in variants in
// declaration order, customs after them sorted by folder name.
func (l Location) Compare(other Location) int {
	if l.kind != other.kind {
		if l.kind < other.kind {
			return -1
		}

		return 1
	}

	return strings.Compare(l.custom, other.custom)
}

// Exists reports whether the category folder is present on the given filesystem.
func (l Location) Exists(fsys afero.Fs) bool {
	info, err := fsys.Stat(l.Folder())
	return err == nil && info.IsDir()
}
