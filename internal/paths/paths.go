package paths

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "sysc"

	// System-wide checkout root used when running as root.
	systemCheckouts = "/var/lib/containers/atomic"

	// System-wide ostree repository used when running as root.
	systemRepo = "/ostree/repo"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory holding container checkouts.
//
//	root:     /var/lib/containers/atomic
//	non-root: $XDG_DATA_HOME/sysc/containers
func Checkouts() string {
	if os.Geteuid() == 0 {
		return systemCheckouts
	}
	return filepath.Join(xdg.DataHome, toolName, "containers")
}

// Path to the ostree repository used as the content store.
//
//	root:     /ostree/repo
//	non-root: $XDG_DATA_HOME/sysc/repo
func Repo() string {
	if os.Geteuid() == 0 {
		return systemRepo
	}
	return filepath.Join(xdg.DataHome, toolName, "repo")
}

// Path to the checkout directory for a named container at a deployment.
//
// Deployments are numbered; the active deployment is reachable through the
// bare container name, a symlink maintained by the installer.
func Checkout(name string, deployment int) string {
	return filepath.Join(Checkouts(), checkoutBase(name, deployment))
}

// Path to the active-deployment symlink for a named container.
func ActiveCheckout(name string) string {
	return filepath.Join(Checkouts(), name)
}

// Base name for a numbered deployment directory (e.g. "etcd.0").
func checkoutBase(name string, deployment int) string {
	return name + "." + strconv.Itoa(deployment)
}
