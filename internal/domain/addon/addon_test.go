package addon

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oshokin/pbo-forge/internal/logger"
)

// observedContext returns a context whose logger records warnings for inspection.
func observedContext(t *testing.T) (context.Context, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.WarnLevel)

	return logger.ToContext(context.Background(), zap.New(core).Sugar()), logs
}

// TestNewValidNames checks that standard-set names round-trip without warnings.
func TestNewValidNames(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext(t)

	for _, name := range []string{"my_addon", "main", "ace3", "x_42"} {
		a, err := New(ctx, name, Core)
		require.NoError(t, err)
		require.Equal(t, name, a.Name)
	}

	require.Empty(t, logs.All())
}

// TestNewDiscouragedNames checks that uppercase and hyphen are accepted
// with exactly one warning per offending character.
func TestNewDiscouragedNames(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext(t)

	a, err := New(ctx, "My-Addon", Optional)
	require.NoError(t, err)
	require.Equal(t, "My-Addon", a.Name)

	// 'M', '-', 'A' are each warned once.
	require.Len(t, logs.All(), 3)
}

// TestNewInvalidNames checks rejection of anything outside the two sets.
func TestNewInvalidNames(t *testing.T) {
	t.Parallel()

	ctx, _ := observedContext(t)

	for _, name := range []string{"", "my addon", "my.addon", "ädd", "a/b"} {
		_, err := New(ctx, name, Core)
		require.ErrorIs(t, err, ErrInvalidName)
	}
}

// TestSource verifies source paths per category.
func TestSource(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cases := map[Location]string{
		Core:                     "addons/my_addon",
		Optional:                 "optionals/my_addon",
		Compat:                   "compats/my_addon",
		CustomLocation("extras"): "extras/my_addon",
	}
	for location, expected := range cases {
		a, err := New(ctx, "my_addon", location)
		require.NoError(t, err)
		require.Equal(t, expected, a.Source())
	}
}

// TestArchiveName covers the prefixed and plain archive filenames.
func TestArchiveName(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), "my_addon", Core)
	require.NoError(t, err)
	require.Equal(t, "my_addon.pbo", a.ArchiveName(""))
	require.Equal(t, "ace_my_addon.pbo", a.ArchiveName("ace"))
}

// TestDestination covers the documented path scenarios.
func TestDestination(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	core, err := New(ctx, "my_addon", Core)
	require.NoError(t, err)
	require.Equal(t, "root/addons/my_addon.pbo", core.Destination(ctx, "root", "", ""))

	optional, err := New(ctx, "my_addon", Optional)
	require.NoError(t, err)
	require.Equal(t,
		"root/optionals/@ACE3_my_addon/addons/ace_my_addon.pbo",
		optional.Destination(ctx, "root", "ace", "ACE3"))
	require.Equal(t, "root/optionals/my_addon.pbo", optional.Destination(ctx, "root", "", ""))
}

// TestDestinationParentStandaloneCoreWarns ensures the policy warning fires
// while the path is still produced.
func TestDestinationParentStandaloneCoreWarns(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext(t)

	a, err := New(ctx, "my_addon", Core)
	require.NoError(t, err)
	require.Equal(t,
		"root/addons/@MCM_my_addon/addons",
		a.DestinationParent(ctx, "root", "MCM"))
	require.Len(t, logs.All(), 1)
}

// TestDestinationInjective checks that distinct (location, name, prefix,
// standalone) tuples never collide on the same destination.
func TestDestinationInjective(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seen := make(map[string]string)

	for _, location := range []Location{Core, Optional, Compat} {
		for _, name := range []string{"alpha", "bravo"} {
			for _, prefix := range []string{"", "mcm"} {
				for _, standalone := range []string{"", "MCM"} {
					a, err := New(ctx, name, location)
					require.NoError(t, err)

					key := location.Folder() + "|" + name + "|" + prefix + "|" + standalone
					dest := a.Destination(ctx, "root", prefix, standalone)

					previous, dup := seen[dest]
					require.False(t, dup, "destination %q produced by both %q and %q", dest, previous, key)
					seen[dest] = key
				}
			}
		}
	}
}

// TestLocate finds addons by probing first-class folders in priority order.
func TestLocate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("addons/main", 0o755))
	require.NoError(t, fsys.MkdirAll("optionals/tracers", 0o755))
	require.NoError(t, fsys.MkdirAll("optionals/main", 0o755))

	// Core wins over Optional for the same name.
	a, err := Locate(ctx, fsys, "main")
	require.NoError(t, err)
	require.Equal(t, Core, a.Location)

	a, err = Locate(ctx, fsys, "tracers")
	require.NoError(t, err)
	require.Equal(t, Optional, a.Location)

	_, err = Locate(ctx, fsys, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

// TestDiscoverIn lists category subfolders as addons, skipping plain files.
func TestDiscoverIn(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("addons/bravo", 0o755))
	require.NoError(t, fsys.MkdirAll("addons/alpha", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "addons/alpha.pbo", []byte("packed"), 0o644))

	addons, err := DiscoverIn(ctx, fsys, Core)
	require.NoError(t, err)
	require.Len(t, addons, 2)
	require.Equal(t, "alpha", addons[0].Name)
	require.Equal(t, "bravo", addons[1].Name)
}

// TestSortOrdersByLocationThenName pins the deterministic build order.
func TestSortOrdersByLocationThenName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	names := []struct {
		name     string
		location Location
	}{
		{"zulu", Core},
		{"alpha", CustomLocation("extras")},
		{"alpha", Compat},
		{"alpha", Optional},
		{"alpha", Core},
	}

	addons := make([]Addon, 0, len(names))
	for _, n := range names {
		a, err := New(ctx, n.name, n.location)
		require.NoError(t, err)
		addons = append(addons, a)
	}

	Sort(addons)

	require.Equal(t, "alpha", addons[0].Name)
	require.Equal(t, Core, addons[0].Location)
	require.Equal(t, "zulu", addons[1].Name)
	require.Equal(t, Optional, addons[2].Location)
	require.Equal(t, Compat, addons[3].Location)
	require.Equal(t, CustomLocation("extras"), addons[4].Location)
}
