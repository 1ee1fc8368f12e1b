package signing

import (
	"context"

	"github.com/spf13/afero"

	"github.com/oshokin/pbo-forge/internal/repository/keystore"
)

// Packer turns an addon source folder into a packed archive on disk.
// Packing runs upstream of the release pipeline, which only signs and
// relocates archives the packer already produced. Implementations must be
// deterministic for identical inputs and return a descriptive error on
// failure.
type Packer interface {
	Pack(ctx context.Context, fsys afero.Fs, sourceDir, archivePath string) error
}

// Signer attaches a signature to a packed archive using the release key.
// Re-signing with the same key must be safe.
type Signer interface {
	Sign(ctx context.Context, fsys afero.Fs, archivePath string, key *keystore.KeyPair) error
}

// SignatureName returns the detached signature path for an archive and key:
// {archive}.{key}.sig.
func SignatureName(archivePath, keyName string) string {
	return archivePath + "." + keyName + ".sig"
}
