package launcher

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
)

// Path of the systemctl binary used for liveness probes.
const systemctlPath = "/usr/bin/systemctl"

// Liveness probe backed by systemd.
//
// A container counts as running when its service unit is active; the unit
// carries the container name.
type systemdLiveness struct{}

func (systemdLiveness) Active(ctx context.Context, name string) bool {
	cmd := exec.CommandContext(ctx, systemctlPath, "is-active", "--quiet", name+".service")
	return cmd.Run() == nil
}

// Resolves container names against the checkout root on disk.
//
// The bare container name is the active-deployment symlink maintained by
// the installer; a name without one has no checkout.
type checkoutLookup struct {
	root string
}

func (c checkoutLookup) Checkout(name string) (string, bool) {
	path := filepath.Join(c.root, name)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
