package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Default path of the ostree binary.
const DefaultOSTreePath = "/usr/bin/ostree"

// Commit metadata key under which the image manifest is recorded.
const manifestMetadataKey = "docker.manifest"

// Drives the host ostree binary against a single repository.
type OSTree struct {
	binary string // Path to the ostree executable.
	repo   string // Path to the repository.
}

// Creates an ostree-backed store for the given repository.
//
// An empty binary path falls back to [DefaultOSTreePath]. The repository is
// not opened or validated here; every operation passes it explicitly.
func NewOSTree(binary, repo string) *OSTree {
	if binary == "" {
		binary = DefaultOSTreePath
	}
	return &OSTree{binary: binary, repo: repo}
}

// Checks out the tree behind ref into destination.
//
// The checkout is unioned into the destination so re-running an install over
// an existing directory is not an error. Files are copied rather than
// hardlinked; checkouts are mutated by later install steps and must not
// alias repository objects.
func (o *OSTree) Checkout(ctx context.Context, ref, destination string) error {
	rev, err := o.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	if _, err := o.run(ctx, "checkout", "--union", "--force-copy", rev, destination); err != nil {
		return err
	}

	slog.Debug("checked out", "ref", ref, "rev", rev, "destination", destination)
	return nil
}

// Resolves a ref to its commit revision.
//
// An unresolvable ref is a not-found error, so callers can distinguish a
// missing image from repository I/O failure.
func (o *OSTree) Resolve(ctx context.Context, ref string) (string, error) {
	out, err := o.run(ctx, "rev-parse", ref)
	if err != nil {
		return "", fmt.Errorf("ref %q: %w", ref, errdefs.ErrNotFound)
	}
	return strings.TrimSpace(out), nil
}

// Reports whether the ref resolves in the repository.
func (o *OSTree) HasRef(ctx context.Context, ref string) bool {
	_, err := o.Resolve(ctx, ref)
	return err == nil
}

// Reads the image metadata recorded on the commit behind ref.
//
// The OCI manifest is stored as commit metadata at commit time. The image ID
// is the digest of the raw manifest bytes, matching what the registry would
// report for the same image. A commit without a recorded manifest still
// inspects; only Manifest and ID stay empty.
func (o *OSTree) Inspect(ctx context.Context, ref string) (*Image, error) {
	rev, err := o.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	img := &Image{Ref: ref, Rev: rev}

	out, err := o.run(ctx, "show", "--print-metadata-key="+manifestMetadataKey, rev)
	if err != nil {
		return img, nil
	}

	raw := unquoteMetadata(out)
	var manifest ocispec.Manifest
	if err := json.Unmarshal([]byte(raw), &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest metadata for %q: %w", ref, err)
	}

	img.Manifest = manifest
	img.ID = digest.FromBytes([]byte(raw)).Encoded()
	return img, nil
}

// Runs an ostree subcommand against the repository and returns its stdout.
func (o *OSTree) run(ctx context.Context, args ...string) (string, error) {
	argv := append([]string{"--repo=" + o.repo}, args...)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, o.binary, argv...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("ostree %s: %s", args[0], msg)
	}

	return stdout.String(), nil
}

// Strips the GVariant string quoting that "ostree show" applies to metadata
// values.
func unquoteMetadata(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "'")
	s = strings.TrimSuffix(s, "'")
	return s
}
