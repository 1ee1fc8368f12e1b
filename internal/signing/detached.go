package signing

import (
	"context"
	"crypto/ed25519"
	"crypto/sha512"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/oshokin/pbo-forge/internal/repository/keystore"
)

// signatureFilePermissions applies to written signature files.
const signatureFilePermissions = 0o644

// DetachedSigner signs archives with ed25519 over a SHA-512 digest and
// writes the signature next to the archive. Overwriting an existing
// signature with the same key reproduces identical bytes, so re-signing
// is idempotent.
type DetachedSigner struct{}

// NewDetachedSigner returns the default signer implementation.
func NewDetachedSigner() *DetachedSigner {
	return &DetachedSigner{}
}

// Sign writes {archive}.{key}.sig containing the ed25519 signature of the
// archive's SHA-512 digest.
func (*DetachedSigner) Sign(_ context.Context, fsys afero.Fs, archivePath string, key *keystore.KeyPair) error {
	digest, err := digestFile(fsys, archivePath)
	if err != nil {
		return fmt.Errorf("digest archive: %w", err)
	}

	signature := ed25519.Sign(key.Private, digest)

	sigPath := SignatureName(archivePath, key.Name)
	if err := afero.WriteFile(fsys, sigPath, signature, signatureFilePermissions); err != nil {
		return fmt.Errorf("write signature: %w", err)
	}

	return nil
}

// Verify checks a detached signature produced by Sign.
func Verify(fsys afero.Fs, archivePath string, keyName string, public ed25519.PublicKey) (bool, error) {
	digest, err := digestFile(fsys, archivePath)
	if err != nil {
		return false, fmt.Errorf("digest archive: %w", err)
	}

	signature, err := afero.ReadFile(fsys, SignatureName(archivePath, keyName))
	if err != nil {
		return false, fmt.Errorf("read signature: %w", err)
	}

	return ed25519.Verify(public, digest, signature), nil
}

// digestFile streams the file through SHA-512.
func digestFile(fsys afero.Fs, p string) ([]byte, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha512.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}
