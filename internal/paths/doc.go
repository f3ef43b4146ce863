// Provides filesystem locations for checkouts and the content store.
//
// Running as root uses the system-wide locations under /var/lib/containers
// and /ostree. Non-root invocations fall back to XDG conventions so the
// tool can operate against a per-user repository. All functions return
// plain paths; nothing is created.
package paths
