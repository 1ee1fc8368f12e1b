package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Project holds the project descriptor driving a build.
type Project struct {
	// Name is the human-readable project name.
	Name string `yaml:"name"`
	// Prefix is prepended to archive filenames ({prefix}_{addon}.pbo).
	Prefix string `yaml:"prefix"`
	// Author is recorded for scaffolded files; unused by the release pipeline.
	Author string `yaml:"author,omitempty"`
	// ModNameOverride replaces the derived @mod folder name when set.
	ModNameOverride string `yaml:"modname,omitempty"`
	// KeyNameOverride replaces the derived signing key name when set.
	KeyNameOverride string `yaml:"keyname,omitempty"`
	// Version is the release version; required for release builds.
	Version string `yaml:"version,omitempty"`
	// Files are glob patterns for auxiliary files (license, readme)
	// copied into the release root.
	Files []string `yaml:"files,omitempty"`
	// Optionals lists optional addons included in the build.
	Optionals []string `yaml:"optionals,omitempty"`
	// Skip lists addons excluded from the build.
	Skip []string `yaml:"skip,omitempty"`
	// ReusePrivateKey persists the signing key under releases/keys and
	// reuses it on later runs instead of generating an ephemeral one.
	ReusePrivateKey bool `yaml:"reuse_private_key,omitempty"`
	// NestOptionals folds each optional/compat addon into its own
	// @{mod}_{addon}/addons folder inside the release.
	NestOptionals bool `yaml:"folder_optionals,omitempty"`
}

const (
	// DefaultProjectFilename is the descriptor filename at the project root.
	DefaultProjectFilename = "forge.yaml"

	// DefaultFilePermissions is the file permission for descriptor writes.
	DefaultFilePermissions = 0o644
)

var (
	// errProjectIsNotSet is returned when a nil descriptor is provided.
	errProjectIsNotSet = errors.New("project descriptor is not set")
	// errNameRequired is returned when the project name is missing.
	errNameRequired = errors.New("project name must be provided")
	// ErrRootNotFound is returned when no descriptor exists in the
	// current directory or any of its parents.
	ErrRootNotFound = errors.New("project descriptor not found in this or any parent directory")
)

// Load reads the descriptor from the provided path and validates essential fields.
func Load(path string) (*Project, error) {
	if path == "" {
		path = DefaultProjectFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read project descriptor: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(contents, &p); err != nil {
		return nil, fmt.Errorf("unmarshal project descriptor: %w", err)
	}

	if err := Validate(&p); err != nil {
		return nil, err
	}

	return &p, nil
}

// Save writes the descriptor to the provided path.
func Save(path string, p *Project) error {
	if p == nil {
		return errProjectIsNotSet
	}

	if path == "" {
		path = DefaultProjectFilename
	}

	if err := Validate(p); err != nil {
		return err
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project descriptor: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write project descriptor: %w", err)
	}

	return nil
}

// Validate checks the descriptor for required fields and normalizes list fields.
func Validate(p *Project) error {
	if p == nil {
		return errProjectIsNotSet
	}

	if strings.TrimSpace(p.Name) == "" {
		return errNameRequired
	}

	p.Optionals = dedupe(p.Optionals)
	p.Skip = dedupe(p.Skip)

	return nil
}

// ModName returns the @mod folder name: the override when set,
// otherwise the project name with whitespace stripped.
func (p *Project) ModName() string {
	if p.ModNameOverride != "" {
		return p.ModNameOverride
	}

	return strings.Join(strings.Fields(p.Name), "")
}

// KeyName returns the signing key name: the override when set,
// otherwise the derived mod name.
func (p *Project) KeyName() string {
	if p.KeyNameOverride != "" {
		return p.KeyNameOverride
	}

	return p.ModName()
}

// FindRoot walks upward from the working directory until it finds the
// project descriptor, returning the directory containing it.
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("working directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, DefaultProjectFilename)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrRootNotFound
		}

		dir = parent
	}
}

// dedupe sorts out duplicate entries while preserving first-seen order.
func dedupe(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := values[:0]

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}

		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
