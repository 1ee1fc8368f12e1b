package cmd

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/oshokin/pbo-forge/internal/config"
	"github.com/oshokin/pbo-forge/internal/service/clean"
)

var (
	// cleanForce also removes the releases tree.
	cleanForce bool

	// cleanCmd removes packed archives and optionally the releases tree.
	cleanCmd = &cobra.Command{
		Use:   "clean",
		Short: "Remove packed archives, with --force also the releases tree",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			root, err := config.FindRoot()
			if err != nil {
				return err
			}

			// Loading the descriptor validates that this really is a
			// project tree before anything is removed.
			if _, err := config.Load(filepath.Join(root, config.DefaultProjectFilename)); err != nil {
				return err
			}

			return clean.Run(ctx, &clean.Options{
				Fs:    afero.NewBasePathFs(afero.NewOsFs(), root),
				Force: cleanForce,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	cleanCmd.Flags().BoolVarP(&cleanForce, "force", "f", false, "also remove the releases tree")
	rootCmd.AddCommand(cleanCmd)
}
