package release

import (
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"

	"github.com/oshokin/pbo-forge/internal/config"
)

// ReleasesFolder is the root folder holding every versioned release and the
// project-wide keys folder.
const ReleasesFolder = "releases"

// errVersionRequired is returned when neither the caller nor the project
// descriptor supplies a version.
var errVersionRequired = errors.New("unable to determine release version")

// Context carries the immutable parameters of one build invocation.
type Context struct {
	// ReleaseRoot is releases/{version}/@{modName}.
	ReleaseRoot string
	// Version is the release version being built.
	Version string
	// ModName is the @mod folder name.
	ModName string
	// BuildID correlates log lines of a single invocation.
	BuildID string
}

// PrepareRelease computes the release context for a project and version.
// An empty version falls back to the descriptor's version; having neither
// is an error.
func PrepareRelease(project *config.Project, version string) (*Context, error) {
	if version == "" {
		version = project.Version
	}

	if version == "" {
		return nil, errVersionRequired
	}

	modName := project.ModName()

	return &Context{
		ReleaseRoot: path.Join(ReleasesFolder, version, "@"+modName),
		Version:     version,
		ModName:     modName,
		BuildID:     uuid.NewString(),
	}, nil
}

// KeysDir returns the release-local keys folder.
func (c *Context) KeysDir() string {
	return path.Join(c.ReleaseRoot, "keys")
}

// ProjectKeysDir returns the project-wide keys folder shared across releases.
func ProjectKeysDir() string {
	return path.Join(ReleasesFolder, "keys")
}

// String identifies the release in logs.
func (c *Context) String() string {
	return fmt.Sprintf("%s v%s", c.ModName, c.Version)
}
