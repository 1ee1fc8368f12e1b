package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/oshokin/pbo-forge/internal/config"
	"github.com/oshokin/pbo-forge/internal/logger"
	"github.com/oshokin/pbo-forge/internal/repository/keystore"
	"github.com/oshokin/pbo-forge/internal/service/release"
	"github.com/oshokin/pbo-forge/internal/vfs"
)

var (
	// releaseJobs is the worker pool size; zero means the CPU count.
	releaseJobs int
	// releaseVersion overrides the descriptor's version.
	releaseVersion string

	// releaseCmd builds a signed, versioned release tree.
	releaseCmd = &cobra.Command{
		Use:   "release",
		Short: "Copy and sign packed archives into a versioned release tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return runRelease(ctx, cmd.OutOrStdout())
		},
	}
)

// runRelease wires the release pipeline against the physical project tree.
func runRelease(ctx context.Context, out io.Writer) error {
	ctx = logger.WithName(ctx, "pbo-forge")

	root, err := config.FindRoot()
	if err != nil {
		return err
	}

	project, err := config.Load(filepath.Join(root, config.DefaultProjectFilename))
	if err != nil {
		return err
	}

	rc, err := release.PrepareRelease(project, releaseVersion)
	if err != nil {
		return err
	}

	projectFs := afero.NewBasePathFs(afero.NewOsFs(), root)
	overlay := vfs.NewOverlayOver(projectFs)

	// The keys folder must exist before the inter-process lock file can
	// be created inside it.
	keysDir := release.ProjectKeysDir()
	if err := projectFs.MkdirAll(keysDir, 0o755); err != nil {
		return fmt.Errorf("ensure keys folder: %w", err)
	}

	store := keystore.NewStore(projectFs, keysDir,
		keystore.WithLockPath(filepath.Join(root, keysDir, keystore.LockFilename())))

	orchestrator := release.NewOrchestrator(release.Options{
		Source:  overlay.Fs(),
		Dest:    projectFs,
		Project: project,
		Store:   store,
	})

	report, err := orchestrator.Run(ctx, rc, releaseJobs)
	if err != nil {
		return err
	}

	renderReport(out, rc, report)

	// Collected failures map to a non-zero exit without aborting early.
	return report.Err()
}

// renderReport prints the aggregate outcome, with one table row per failure.
func renderReport(out io.Writer, rc *release.Context, report *release.Report) {
	fmt.Fprintf(out, "Finished %s: signed %d archive(s), skipped %d entr(ies)\n",
		rc, report.SignedCount, report.SkippedCount)

	if len(report.Failures) == 0 {
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Addon", "Category", "Stage", "Error"})

	for _, f := range report.Failures {
		tw.AppendRow(table.Row{f.Name, f.Location.Folder(), string(f.Stage), f.Err.Error()})
	}

	tw.Render()
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	releaseCmd.Flags().IntVarP(&releaseJobs, "jobs", "j", 0, "number of parallel jobs, defaults to # of CPUs")
	releaseCmd.Flags().StringVar(&releaseVersion, "version", "", "release version, defaults to the project descriptor")
	rootCmd.AddCommand(releaseCmd)
}
