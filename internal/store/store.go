package store

import (
	"context"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Metadata of a stored image, recorded when the image was committed.
type Image struct {
	Ref      string           // Encoded storage ref the image was resolved from.
	Rev      string           // Commit revision backing the image.
	ID       string           // Image ID: digest of the raw manifest bytes.
	Manifest ocispec.Manifest // Parsed OCI manifest, when one was recorded.
}

// Content-addressed storage consumed by the checkout pipeline.
//
// Checkout materializes the tree behind ref into destination. Implementations
// fail with a not-found error when the ref does not resolve; the pipeline
// relies on that distinction to report missing images to the caller.
type Store interface {
	Checkout(ctx context.Context, ref, destination string) error
	Resolve(ctx context.Context, ref string) (string, error)
	HasRef(ctx context.Context, ref string) bool
	Inspect(ctx context.Context, ref string) (*Image, error)
}
