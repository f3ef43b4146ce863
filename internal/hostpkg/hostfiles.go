package hostpkg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/syscontainers/sysc/internal/paths"
)

// Subdirectory of a rootfs's exports tree holding files destined for the
// host filesystem.
const hostfsDir = "exports/hostfs"

// Default path of the rpmbuild binary.
const DefaultRPMBuildPath = "/usr/bin/rpmbuild"

// Host packaging backend that copies exported files onto the host and
// builds RPMs with the host rpmbuild tool.
type HostFiles struct {
	rpmbuild string // Path to the rpmbuild executable.
}

// Creates the default host packaging backend.
//
// An empty rpmbuild path falls back to [DefaultRPMBuildPath].
func NewHostFiles(rpmbuild string) *HostFiles {
	if rpmbuild == "" {
		rpmbuild = DefaultRPMBuildPath
	}
	return &HostFiles{rpmbuild: rpmbuild}
}

// Builds an RPM registering the exported files with the host package
// database.
//
// The spec file is generated from the request and fed to rpmbuild with the
// checkout as build root. Returns the path of the built artifact.
func (h *HostFiles) GeneratePackage(ctx context.Context, req Request) (string, error) {
	specPath := filepath.Join(req.Destination, req.Name+".spec")
	if err := os.WriteFile(specPath, []byte(rpmSpec(req)), paths.DefaultFileMode); err != nil {
		return "", err
	}

	rpmDir := filepath.Join(req.Destination, "rpmbuild")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, h.rpmbuild,
		"--define", "_topdir "+rpmDir,
		"--buildroot", filepath.Join(req.Rootfs, hostfsDir),
		"-bb", specPath,
	)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("rpmbuild: %s", msg)
	}

	artifact, err := findRPM(filepath.Join(rpmDir, "RPMS"))
	if err != nil {
		return "", err
	}
	return artifact, nil
}

// Copies the exported host files under the request prefix.
//
// Files are walked from the rootfs's exports/hostfs tree. Rename directives
// redirect individual files to a different host path. Files that already
// exist on the host are left alone and not reported; the returned map holds
// only files this call created, keyed by host path, with the content digest
// as value.
func (h *HostFiles) InstallFiles(ctx context.Context, req Request) (map[string]string, error) {
	src := filepath.Join(req.Rootfs, hostfsDir)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	installed := map[string]string{}

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		dest := filepath.Join(req.Prefix, "/", rel)
		if renamed, ok := req.Renames["/"+rel]; ok {
			dest = filepath.Join(req.Prefix, renamed)
		}

		if _, err := os.Lstat(dest); err == nil {
			slog.Debug("host file exists, skipping", "path", dest)
			return nil
		}

		checksum, err := installFile(path, dest)
		if err != nil {
			return err
		}
		installed[dest] = checksum
		return nil
	})
	if err != nil {
		return nil, err
	}

	return installed, nil
}

// Copies a single file into place and returns its content digest.
func installFile(src, dest string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(dest), paths.DefaultDirMode); err != nil {
		return "", err
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", err
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return "", err
	}

	digester := digest.Canonical.Digester()
	if _, err := io.Copy(io.MultiWriter(out, digester.Hash()), in); err != nil {
		out.Close()
		os.Remove(dest)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return "", err
	}

	return digester.Digest().Encoded(), nil
}

// Renders a minimal spec file for the exported host files.
func rpmSpec(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", req.Name)
	fmt.Fprintf(&b, "Version: 1.0\n")
	fmt.Fprintf(&b, "Release: %d\n", req.Deployment+1)
	fmt.Fprintf(&b, "Summary: Host files for system container %s\n", req.Name)
	fmt.Fprintf(&b, "License: Unspecified\n\n")
	fmt.Fprintf(&b, "%%description\n")
	fmt.Fprintf(&b, "Files installed on the host by image %s (%s).\n\n", req.Image, req.ImageID)
	fmt.Fprintf(&b, "%%files\n/*\n")
	return b.String()
}

// Locates the single RPM produced by a build.
func findRPM(dir string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".rpm") {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("rpmbuild produced no package under %s", dir)
	}
	return found, nil
}
