package vfs

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// DefaultFileMode is applied to files created by CopyFile.
const DefaultFileMode os.FileMode = 0o644

// CopyFile streams srcPath on src to dstPath on dst.
// The filesystems may be the same or different backends.
func CopyFile(src afero.Fs, srcPath string, dst afero.Fs, dstPath string) error {
	in, err := src.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := dst.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, DefaultFileMode)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy contents: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	return nil
}
