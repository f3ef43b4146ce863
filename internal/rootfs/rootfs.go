package rootfs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/containerd/errdefs"

	"github.com/syscontainers/sysc/internal/paths"
)

// Name of the root filesystem subdirectory inside a container directory.
const Dir = "rootfs"

// Canonicalizes a path to its container directory.
//
// A directory containing rootfs/usr is already the container directory and
// resolves to its own real path. A directory that is itself a rootfs (it has
// a usr/ subdirectory) resolves to the real path of its parent. Symlinks are
// resolved because on some hosts / is itself a deployment symlink (e.g.
// /sysroot). Anything else fails with a not-found error.
func ResolveLocation(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("location %q: %w", path, errdefs.ErrNotFound)
		}
		return "", err
	}

	if exists(filepath.Join(path, Dir, "usr")) {
		return filepath.EvalSymlinks(path)
	}

	if exists(filepath.Join(path, "usr")) {
		return filepath.EvalSymlinks(filepath.Dir(path))
	}

	return "", fmt.Errorf("location %q is not a container or rootfs directory: %w", path, errdefs.ErrNotFound)
}

// Prepares the directory tree a checkout will populate and returns the
// rootfs target.
//
// Three modes:
//   - extractOnly: destination itself is the rootfs target and is returned
//     unchanged after being created.
//   - remotePath set: destination is created and destination/rootfs is the
//     checkout target.
//   - neither: destination is created and canonicalized when it already
//     matches a known container layout; the rootfs subdirectory of the
//     canonical directory is the target.
//
// All creation is mkdir-if-absent; any other filesystem error propagates.
func PrepareDirs(remotePath, destination string, extractOnly bool) (string, error) {
	if extractOnly {
		if err := ensureDir(destination); err != nil {
			return "", err
		}
		return destination, nil
	}

	if err := ensureDir(destination); err != nil {
		return "", err
	}

	if remotePath == "" {
		destination = canonicalize(destination)
	}

	target := filepath.Join(destination, Dir)
	if err := ensureDir(target); err != nil {
		return "", err
	}
	return target, nil
}

// Applies container-layout resolution when the directory already matches a
// known layout, and leaves fresh directories untouched.
func canonicalize(dir string) string {
	if resolved, err := ResolveLocation(dir); err == nil {
		return resolved
	}
	return dir
}

// Creates a directory and its parents; an existing directory is fine.
func ensureDir(dir string) error {
	return os.MkdirAll(dir, paths.DefaultDirMode)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
