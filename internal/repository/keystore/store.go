package keystore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"github.com/oshokin/pbo-forge/internal/logger"
)

const (
	// privateFilePermissions restricts persisted private key material.
	privateFilePermissions os.FileMode = 0o600
	// publicFilePermissions applies to published public keys.
	publicFilePermissions os.FileMode = 0o644
	// lockFilename guards the keys folder against concurrent generators.
	lockFilename = ".forge-keys.lock"
)

// ErrKeyUnreadable is returned when a persisted private key exists but
// cannot be read or parsed. It is fatal for the whole build: silently
// generating a replacement would invalidate trust in archives signed under
// the old key.
var ErrKeyUnreadable = errors.New("persisted private key is unreadable")

// Store manages the signing keypair lifecycle under the project-wide keys
// folder.
type Store struct {
	// fsys is the filesystem the keys folder lives on.
	fsys afero.Fs
	// dir is the project-wide keys folder, e.g. "releases/keys".
	dir string
	// lockPath is an OS path used for inter-process locking; empty
	// disables locking (in-memory filesystems during tests).
	lockPath string
}

// Option customizes Store construction.
type Option func(*Store)

// WithLockPath enables an inter-process file lock at the given OS path,
// held while the store decides whether to generate or reuse the persisted
// key.
func WithLockPath(p string) Option {
	return func(s *Store) {
		s.lockPath = p
	}
}

// NewStore creates a store over the given filesystem and keys folder.
func NewStore(fsys afero.Fs, dir string, opts ...Option) *Store {
	s := &Store{fsys: fsys, dir: dir}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Obtain returns the signing keypair for this build.
//
// With reuse disabled the keypair is generated in memory and the private
// key never touches disk. With reuse enabled a missing persisted key is
// generated and persisted once; a present one is read back, and unreadable
// or corrupt material fails with ErrKeyUnreadable rather than silently
// rotating the signing identity.
func (s *Store) Obtain(ctx context.Context, name string, reuse bool) (*KeyPair, error) {
	if !reuse {
		logger.InfoKV(ctx, "Generating ephemeral signing key", "key", name)
		return Generate(name)
	}

	unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	privatePath := s.privatePath(name)

	if _, err := s.fsys.Stat(privatePath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: stat %s: %w", ErrKeyUnreadable, privatePath, err)
		}

		logger.InfoKV(ctx, "Generating persisted signing key", "key", name)

		return s.generatePersisted(name)
	}

	contents, err := afero.ReadFile(s.fsys, privatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrKeyUnreadable, privatePath, err)
	}

	kp, err := ParsePrivatePEM(name, contents)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrKeyUnreadable, privatePath, err)
	}

	logger.InfoKV(ctx, "Reusing persisted signing key", "key", name)

	return kp, nil
}

// PublishPublic (re)writes the public key into the project-wide keys folder
// and copies it into the release keys folder, so every release ships a
// consistent public key alongside its signed archives. Safe to repeat.
func (s *Store) PublishPublic(kp *KeyPair, releaseKeysDir string) error {
	encoded, err := kp.EncodePublicPEM()
	if err != nil {
		return err
	}

	if err := s.fsys.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("ensure keys folder: %w", err)
	}

	projectPath := s.publicPath(kp.Name)
	if err := afero.WriteFile(s.fsys, projectPath, encoded, publicFilePermissions); err != nil {
		return fmt.Errorf("write project public key: %w", err)
	}

	releasePath := path.Join(releaseKeysDir, kp.Name+"."+PublicKeyExtension)
	if err := afero.WriteFile(s.fsys, releasePath, encoded, publicFilePermissions); err != nil {
		return fmt.Errorf("write release public key: %w", err)
	}

	return nil
}

// generatePersisted creates a keypair and writes both halves under the keys folder.
func (s *Store) generatePersisted(name string) (*KeyPair, error) {
	kp, err := Generate(name)
	if err != nil {
		return nil, err
	}

	if err := s.fsys.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure keys folder: %w", err)
	}

	private, err := kp.EncodePrivatePEM()
	if err != nil {
		return nil, err
	}

	if err := afero.WriteFile(s.fsys, s.privatePath(name), private, privateFilePermissions); err != nil {
		return nil, fmt.Errorf("write private key: %w", err)
	}

	public, err := kp.EncodePublicPEM()
	if err != nil {
		return nil, err
	}

	if err := afero.WriteFile(s.fsys, s.publicPath(name), public, publicFilePermissions); err != nil {
		return nil, fmt.Errorf("write public key: %w", err)
	}

	return kp, nil
}

// lock takes the inter-process keys lock when configured.
func (s *Store) lock() (func(), error) {
	if s.lockPath == "" {
		return func() {}, nil
	}

	fileLock := flock.New(s.lockPath)
	if err := fileLock.Lock(); err != nil {
		return nil, fmt.Errorf("lock keys folder: %w", err)
	}

	return func() {
		//nolint:errcheck // Releasing a held lock; nothing actionable on failure.
		_ = fileLock.Unlock()
	}, nil
}

// privatePath returns the persisted private key location for a key name.
func (s *Store) privatePath(name string) string {
	return path.Join(s.dir, name+"."+PrivateKeyExtension)
}

// publicPath returns the published public key location for a key name.
func (s *Store) publicPath(name string) string {
	return path.Join(s.dir, name+"."+PublicKeyExtension)
}

// LockFilename returns the conventional lock file name inside a keys folder.
func LockFilename() string {
	return lockFilename
}
