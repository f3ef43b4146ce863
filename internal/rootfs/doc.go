// Package rootfs materializes container root filesystems.
//
// Two on-disk layouts are recognized: a container directory holding a
// rootfs/ subdirectory, and a path that points directly at a rootfs
// (detected by its usr/ subdirectory). [ResolveLocation] canonicalizes
// either layout to the container directory; [PrepareDirs] creates the
// directory tree a checkout or extraction will populate. Directory
// creation is idempotent, everything else fails loudly.
package rootfs
