package hostpkg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syscontainers/sysc/internal/manifest"
)

// Whether and how installed files are registered with the host package
// database.
type SystemPackage int

const (
	// Skip packaging but still install the files.
	SystemPackageNo SystemPackage = iota

	// Build and install a host package for the files.
	SystemPackageYes

	// Do nothing at all; no files reach the host.
	SystemPackageAbsent
)

// Parses an option value into a [SystemPackage] mode.
//
// Unknown values behave as "no": files are installed without packaging.
func ParseSystemPackage(s string) SystemPackage {
	switch s {
	case "yes":
		return SystemPackageYes
	case "absent":
		return SystemPackageAbsent
	default:
		return SystemPackageNo
	}
}

// External host packaging contract.
//
// GeneratePackage builds a host package for the files the manifest exports
// and returns the artifact path. InstallFiles copies the exported files onto
// the host and returns a path-to-checksum map of every file it newly
// installed.
type Backend interface {
	GeneratePackage(ctx context.Context, req Request) (string, error)
	InstallFiles(ctx context.Context, req Request) (map[string]string, error)
}

// Parameters for a host packaging operation.
type Request struct {
	Name        string            // Container name.
	Image       string            // Image the container was installed from.
	ImageID     string            // Image ID, recorded in the package metadata.
	Destination string            // Checkout directory of the install.
	Rootfs      string            // Materialized root filesystem.
	Prefix      string            // Host prefix files are installed under ("" is /).
	Deployment  int               // Deployment number of the install.
	Values      map[string]string // Substitution values, for renamed files.
	Renames     map[string]string // Resolved rename directives from the manifest.
}

// Outcome of the host packaging step.
type Result struct {
	Checksums    map[string]string // Newly installed host files and their checksums.
	RPMInstalled bool              // Whether a host package was generated and installed.
}

// Runs the host packaging step for an install.
//
// Mode absent is a no-op with an empty checksum map. Mode yes builds the
// package first and propagates any build failure untouched, then installs
// the files. Every other mode installs the files without packaging. The
// returned checksum map always reflects exactly the files this call put on
// the host.
func Handle(ctx context.Context, backend Backend, mode SystemPackage, m *manifest.Manifest, req Request) (*Result, error) {
	if mode == SystemPackageAbsent {
		return &Result{Checksums: map[string]string{}}, nil
	}

	if m != nil {
		req.Renames = m.RenameFiles
	}

	result := &Result{}

	if mode == SystemPackageYes {
		artifact, err := backend.GeneratePackage(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPackageBuild, err)
		}
		slog.Debug("host package generated", "name", req.Name, "artifact", artifact)
		result.RPMInstalled = true
	}

	checksums, err := backend.InstallFiles(ctx, req)
	if err != nil {
		return nil, err
	}
	if checksums == nil {
		checksums = map[string]string{}
	}
	result.Checksums = checksums

	return result, nil
}
