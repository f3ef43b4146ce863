// Package install runs the checkout-and-install pipeline end to end.
//
// An install resolves the image reference to a storage ref, materializes a
// root filesystem into the destination, transforms the image's install
// manifest, writes the runtime configuration, hands exported files to the host
// packaging step, and finally persists the install record. The leaves do
// the work; this package only sequences them and threads the options
// through, so each step stays independently testable.
package install
