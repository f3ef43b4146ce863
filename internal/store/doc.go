// Package store exposes the content-addressed storage contract consumed by
// the checkout pipeline.
//
// The [Store] interface is the whole contract: resolve a ref to a commit,
// check it out into a directory, and inspect the image metadata recorded at
// commit time. The shipped implementation, [OSTree], drives the host ostree
// binary against an explicit repository path; pulling images into the
// repository is the transport layer's job and is not covered here.
package store
