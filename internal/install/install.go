package install

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/containerd/errdefs"

	"github.com/syscontainers/sysc/internal/hostpkg"
	"github.com/syscontainers/sysc/internal/launcher"
	"github.com/syscontainers/sysc/internal/manifest"
	"github.com/syscontainers/sysc/internal/ociconfig"
	"github.com/syscontainers/sysc/internal/ref"
	"github.com/syscontainers/sysc/internal/rootfs"
	"github.com/syscontainers/sysc/internal/store"
)

// Subdirectory of a rootfs holding image-provided install files.
const exportsDir = "exports"

// Controls a single install operation.
type Options struct {
	Name          string            // Container name the checkout is installed under.
	Image         string            // Image reference, possibly carrying a transport prefix.
	Destination   string            // Checkout directory for this install.
	Remote        string            // Existing checkout to materialize from instead of the store.
	ExtractOnly   bool              // Extract the tree into Destination and stop.
	SystemPackage string            // Host packaging mode: "yes", "no", or "absent".
	Prefix        string            // Host prefix exported files are installed under.
	Deployment    int               // Deployment number of this install.
	Values        map[string]string // Caller-supplied substitution values.
	RuntimePath   string            // Runtime tool, for default config generation.
}

// Returned after a successful install.
type Result struct {
	Destination string            // Checkout directory.
	Rootfs      string            // Materialized root filesystem.
	Ref         string            // Encoded storage ref the image resolved to.
	ImageID     string            // Image ID, when the store records one.
	Checksums   map[string]string // Host files installed by this operation.
}

// Sequences the install pipeline against a content store and a host
// packaging backend.
type Installer struct {
	store   store.Store
	backend hostpkg.Backend
}

// Creates an installer.
func New(st store.Store, backend hostpkg.Backend) *Installer {
	return &Installer{store: st, backend: backend}
}

// Runs the install pipeline.
//
// The transport prefix is parsed off the image reference once, here at the
// boundary; everything downstream sees the bare reference. Extract-only
// installs stop after materialization. The install record is written last:
// its failure path removes every host file this operation installed before
// the error is returned.
func (i *Installer) Install(ctx context.Context, opts Options) (*Result, error) {
	transport, image := ref.ParseTransport(opts.Image)
	if transport.Insecure() {
		slog.Warn("image uses an insecure transport", "image", image)
	}

	encoded := ref.Encode(image)

	target, err := rootfs.PrepareDirs(opts.Remote, opts.Destination, opts.ExtractOnly)
	if err != nil {
		return nil, err
	}

	if err := i.materialize(ctx, encoded, opts.Remote, target); err != nil {
		return nil, err
	}

	result := &Result{
		Destination: opts.Destination,
		Rootfs:      target,
		Ref:         encoded,
		Checksums:   map[string]string{},
	}

	if opts.ExtractOnly {
		slog.Info("image extracted", "image", image, "destination", target)
		return result, nil
	}

	runtimePath := opts.RuntimePath
	if runtimePath == "" {
		runtimePath = launcher.DefaultRuntimePath
	}

	exports := filepath.Join(target, exportsDir)
	destination := filepath.Dir(target)

	m, values, err := loadManifest(exports, opts.Values)
	if err != nil {
		return nil, err
	}

	if err := ociconfig.WriteConfig(ctx, destination, exports, values, runtimePath); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInstall, err)
	}

	imageID := i.imageID(ctx, encoded)
	result.ImageID = imageID

	pkg, err := hostpkg.Handle(ctx, i.backend, hostpkg.ParseSystemPackage(opts.SystemPackage), m, hostpkg.Request{
		Name:        opts.Name,
		Image:       image,
		ImageID:     imageID,
		Destination: opts.Destination,
		Rootfs:      target,
		Prefix:      opts.Prefix,
		Deployment:  opts.Deployment,
		Values:      values,
	})
	if err != nil {
		return nil, err
	}
	result.Checksums = pkg.Checksums

	record := hostpkg.InstallRecord{
		Destination:   opts.Destination,
		Image:         image,
		ImageID:       imageID,
		Remote:        opts.Remote,
		Prefix:        opts.Prefix,
		Values:        values,
		FileChecksums: pkg.Checksums,
		RPMInstalled:  pkg.RPMInstalled,
		SystemPackage: opts.SystemPackage,
	}
	if err := hostpkg.WriteInfoFile(record); err != nil {
		return nil, err
	}

	slog.Info("container installed",
		"name", opts.Name,
		"image", image,
		"destination", opts.Destination,
		"host-files", len(pkg.Checksums),
	)
	return result, nil
}

// Materializes the root filesystem, either from the store or from an
// existing checkout elsewhere on disk.
func (i *Installer) materialize(ctx context.Context, encoded, remote, target string) error {
	if remote == "" {
		if err := i.store.Checkout(ctx, encoded, target); err != nil {
			return err
		}
		return nil
	}

	location, err := rootfs.ResolveLocation(remote)
	if err != nil {
		return err
	}
	return rootfs.CopyTree(filepath.Join(location, rootfs.Dir), target)
}

// Loads the image manifest and resolves its rename directives.
//
// Images without a manifest install fine; the manifest stays nil. The
// substitution values are the image defaults overlaid with the caller's
// values, and every $variable rename target must resolve against them.
func loadManifest(exports string, callerValues map[string]string) (*manifest.Manifest, map[string]string, error) {
	m, err := manifest.Load(filepath.Join(exports, manifest.File))
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, mergeValues(nil, callerValues), nil
		}
		return nil, nil, err
	}

	values := mergeValues(m.Defaults, callerValues)
	if err := m.ResolveRenames(values); err != nil {
		return nil, nil, err
	}
	return m, values, nil
}

// Overlays caller values on top of image defaults.
func mergeValues(defaults, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// Best-effort image ID lookup; installs proceed without one when the store
// has no manifest recorded for the commit.
func (i *Installer) imageID(ctx context.Context, encoded string) string {
	img, err := i.store.Inspect(ctx, encoded)
	if err != nil {
		slog.Debug("image inspection failed", "ref", encoded, "error", err)
		return ""
	}
	return img.ID
}
