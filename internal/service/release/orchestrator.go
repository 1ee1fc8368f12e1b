package release

import (
	"context"
	"fmt"
	"path"
	"runtime"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/oshokin/pbo-forge/internal/config"
	"github.com/oshokin/pbo-forge/internal/domain/addon"
	"github.com/oshokin/pbo-forge/internal/logger"
	"github.com/oshokin/pbo-forge/internal/repository/keystore"
	"github.com/oshokin/pbo-forge/internal/signing"
	"github.com/oshokin/pbo-forge/internal/vfs"
)

// Orchestrator dispatches packaging and signing work for one release across
// a bounded worker pool and aggregates the per-unit outcomes.
type Orchestrator struct {
	// source is the project tree view archives are read from, typically
	// an overlay so staged rewrites never touch the physical tree.
	source afero.Fs
	// dest is the filesystem the release tree is written to.
	dest afero.Fs
	// layout materializes destination folders.
	layout *Layout
	// project is the build's descriptor.
	project *config.Project
	// store supplies the signing keypair.
	store *keystore.Store
	// signer signs copied archives.
	signer signing.Signer
}

// Options collects orchestrator dependencies.
type Options struct {
	// Source is the project tree view; see Orchestrator.source.
	Source afero.Fs
	// Dest is the release output filesystem.
	Dest afero.Fs
	// Project is the build's descriptor.
	Project *config.Project
	// Store supplies the signing keypair.
	Store *keystore.Store
	// Signer signs copied archives; nil selects the detached default.
	Signer signing.Signer
}

// unit is one dispatched piece of work: a discovered archive to copy and sign.
type unit struct {
	// a resolves destination paths for the archive.
	a addon.Addon
	// archiveName is the filename as found on disk, kept verbatim.
	archiveName string
	// sourcePath is the archive location in the source tree.
	sourcePath string
}

// NewOrchestrator wires an orchestrator from its dependencies.
func NewOrchestrator(opts Options) *Orchestrator {
	signer := opts.Signer
	if signer == nil {
		signer = signing.NewDetachedSigner()
	}

	return &Orchestrator{
		source:  opts.Source,
		dest:    opts.Dest,
		layout:  NewLayout(opts.Dest),
		project: opts.Project,
		store:   opts.Store,
		signer:  signer,
	}
}

// Run builds one release: prepares the layout, obtains and publishes the
// signing key, stages auxiliary files, then copies and signs every packed
// archive on a pool of jobs workers (defaulting to the CPU count).
//
// Failures during this shared setup are fatal and abort before any worker
// is dispatched. Failures inside a unit are isolated: they are collected in
// the report and never stop sibling units. The report is read only after
// the pool has fully drained.
func (o *Orchestrator) Run(ctx context.Context, rc *Context, jobs int) (*Report, error) {
	ctx = logger.WithName(ctx, "release")
	ctx = logger.WithKV(ctx, "build_id", rc.BuildID)

	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	logger.InfoKV(ctx, "Building release",
		"mod", rc.ModName, "version", rc.Version, "jobs", jobs)

	if err := o.layout.Prepare(ctx, rc.ReleaseRoot); err != nil {
		return nil, err
	}

	key, err := o.store.Obtain(ctx, o.project.KeyName(), o.project.ReusePrivateKey)
	if err != nil {
		return nil, err
	}

	if err := o.store.PublishPublic(key, rc.KeysDir()); err != nil {
		return nil, err
	}

	if err := o.copyAuxFiles(ctx, rc); err != nil {
		return nil, err
	}

	report := new(Report)

	units, err := o.discoverUnits(ctx, rc, report)
	if err != nil {
		return nil, err
	}

	o.warnUnpacked(ctx, units)

	results := make(chan unitResult, len(units))

	var pool errgroup.Group

	pool.SetLimit(jobs)

	for _, u := range units {
		u := u

		pool.Go(func() error {
			results <- o.process(ctx, rc, u, key)
			return nil
		})
	}

	// Workers report failures as data, never as errors.
	_ = pool.Wait()
	close(results)

	for r := range results {
		switch r.status {
		case StatusSigned:
			report.SignedCount++
		case StatusSkippedNotAFile:
			report.SkippedCount++
		case StatusFailed:
			report.Failures = append(report.Failures, Failure{
				Name:     r.name,
				Location: r.location,
				Stage:    r.stage,
				Err:      r.err,
			})
		}
	}

	logger.InfoKV(ctx, "Release finished",
		"signed", report.SignedCount,
		"skipped", report.SkippedCount,
		"failed", len(report.Failures))

	return report, nil
}

// copyAuxFiles copies project-declared auxiliary files (license, readme)
// into the release root. A pattern matching zero files is not an error.
func (o *Orchestrator) copyAuxFiles(ctx context.Context, rc *Context) error {
	for _, pattern := range o.project.Files {
		matches, err := afero.Glob(o.source, pattern)
		if err != nil {
			return fmt.Errorf("aux file pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			info, err := o.source.Stat(match)
			if err != nil {
				return fmt.Errorf("stat aux file %s: %w", match, err)
			}

			if info.IsDir() {
				continue
			}

			target := path.Join(rc.ReleaseRoot, path.Base(match))
			if err := vfs.CopyFile(o.source, match, o.dest, target); err != nil {
				return fmt.Errorf("copy aux file %s: %w", match, err)
			}

			logger.DebugKV(ctx, "Copied auxiliary file", "file", match)
		}
	}

	return nil
}

// discoverUnits enumerates packed archives per category. Core is always
// processed; Optional and Compat only when their source folder exists.
// Non-regular entries are counted as skipped, archives on the project skip
// list are dropped, and filenames that do not yield a valid addon name are
// recorded as discovery failures.
func (o *Orchestrator) discoverUnits(ctx context.Context, rc *Context, report *Report) ([]unit, error) {
	skip := make(map[string]struct{}, len(o.project.Skip))
	for _, name := range o.project.Skip {
		skip[name] = struct{}{}
	}

	var units []unit

	for _, location := range addon.FirstClass() {
		if location != addon.Core && !location.Exists(o.source) {
			continue
		}

		entries, err := afero.ReadDir(o.source, location.Folder())
		if err != nil {
			return nil, fmt.Errorf("read category folder %s: %w", location.Folder(), err)
		}

		if err := o.layout.EnsureCategory(ctx, rc.ReleaseRoot, location); err != nil {
			return nil, err
		}

		for _, entry := range entries {
			if entry.IsDir() || !entry.Mode().IsRegular() {
				report.SkippedCount++
				continue
			}

			if !strings.HasSuffix(entry.Name(), "."+addon.ArchiveExtension) {
				report.SkippedCount++
				continue
			}

			name := o.addonNameFromArchive(entry.Name())
			if _, skipped := skip[name]; skipped {
				logger.DebugKV(ctx, "Skipping addon from skip list", "addon", name)
				continue
			}

			a, err := addon.New(ctx, name, location)
			if err != nil {
				report.Failures = append(report.Failures, Failure{
					Name:     name,
					Location: location,
					Stage:    StageDiscover,
					Err:      err,
				})

				continue
			}

			units = append(units, unit{
				a:           a,
				archiveName: entry.Name(),
				sourcePath:  path.Join(location.Folder(), entry.Name()),
			})
		}
	}

	return units, nil
}

// warnUnpacked flags source addon folders that have no packed archive in
// this release, so forgotten packing runs are visible in the build log.
func (o *Orchestrator) warnUnpacked(ctx context.Context, units []unit) {
	packed := make(map[string]struct{}, len(units))
	for _, u := range units {
		packed[u.a.Source()] = struct{}{}
	}

	for _, location := range addon.FirstClass() {
		if !location.Exists(o.source) {
			continue
		}

		addons, err := addon.DiscoverIn(ctx, o.source, location)
		if err != nil {
			continue
		}

		for _, a := range addons {
			if _, ok := packed[a.Source()]; !ok {
				logger.WarnKV(ctx, "Addon has no packed archive and will not be released",
					"addon", a.Name, "category", a.Location.Folder())
			}
		}
	}
}

// process runs one unit: ensure the destination folder, copy the archive,
// sign the copy. The state machine is Discovered → Copied → Signed on the
// success path.
func (o *Orchestrator) process(ctx context.Context, rc *Context, u unit, key *keystore.KeyPair) unitResult {
	standalone := ""
	if o.project.NestOptionals && u.a.Location != addon.Core {
		standalone = rc.ModName
	}

	destDir := u.a.DestinationParent(ctx, rc.ReleaseRoot, standalone)
	if err := o.layout.EnsureDir(ctx, destDir); err != nil {
		return o.failed(u, StageCopy, err)
	}

	destPath := path.Join(destDir, u.archiveName)
	if err := vfs.CopyFile(o.source, u.sourcePath, o.dest, destPath); err != nil {
		return o.failed(u, StageCopy, err)
	}

	if err := o.signer.Sign(ctx, o.dest, destPath, key); err != nil {
		return o.failed(u, StageSign, err)
	}

	logger.DebugKV(ctx, "Signed archive", "archive", destPath)

	return unitResult{name: u.a.Name, location: u.a.Location, status: StatusSigned}
}

// failed builds a failure result for a unit.
func (o *Orchestrator) failed(u unit, stage Stage, err error) unitResult {
	return unitResult{
		name:     u.a.Name,
		location: u.a.Location,
		status:   StatusFailed,
		stage:    stage,
		err:      err,
	}
}

// addonNameFromArchive derives the addon name from an archive filename by
// stripping the extension and, when present, the project prefix.
func (o *Orchestrator) addonNameFromArchive(filename string) string {
	name := strings.TrimSuffix(filename, "."+addon.ArchiveExtension)

	if o.project.Prefix != "" {
		name = strings.TrimPrefix(name, o.project.Prefix+"_")
	}

	return name
}
