// Package hostpkg registers container-installed files with the host.
//
// Installing a system container can drop files onto the host filesystem
// (unit files, binaries, config). [Handle] orchestrates the optional RPM
// packaging of those files through a [Backend]: build a package, install
// the files, and track a checksum per installed file so later upgrades can
// tell operator edits from stale payload.
//
// [WriteInfoFile] persists the install record. Its failure path is the one
// piece of explicit rollback in the pipeline: when the record cannot be
// written, every file installed during the same operation is removed before
// the error propagates, so a failed install never leaves orphans behind.
package hostpkg
