package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/syscontainers/sysc/internal/hostpkg"
	"github.com/syscontainers/sysc/internal/install"
	"github.com/syscontainers/sysc/internal/paths"
	"github.com/syscontainers/sysc/internal/store"
)

// Represents the 'sysc install' command.
type InstallCmd struct {
	Image string `arg:"" help:"Image reference, optionally with a transport prefix (oci:, http:, https:)."`
	Name  string `arg:"" optional:"" help:"Container name. Defaults to the image base name."`

	Destination   string            `help:"Install into this directory instead of the checkout root." placeholder:"PATH"`
	Remote        string            `help:"Materialize from an existing checkout instead of the store." placeholder:"PATH"`
	ExtractOnly   bool              `help:"Extract the image tree and stop."`
	SystemPackage string            `default:"no" enum:"yes,no,absent" help:"Host package mode for exported files."`
	Set           map[string]string `help:"Substitution values for templates and renames." placeholder:"KEY=VALUE"`
	Runtime       string            `help:"Path to the runtime tool." placeholder:"PATH"`
	Repo          string            `help:"Path to the ostree repository." placeholder:"PATH"`
}

// Executes the install command.
//
// The checkout lands in the numbered deployment directory under the checkout
// root, and the bare container name becomes a symlink to it so launch paths
// can resolve the active deployment. An explicit destination skips both the
// numbering and the symlink.
func (c *InstallCmd) Run(ctx context.Context) error {
	name := c.Name
	if name == "" {
		name = imageBase(c.Image)
	}

	repo := c.Repo
	if repo == "" {
		repo = paths.Repo()
	}

	destination := c.Destination
	managed := destination == ""
	if managed {
		destination = paths.Checkout(name, 0)
	}

	installer := install.New(store.NewOSTree("", repo), hostpkg.NewHostFiles(""))
	result, err := installer.Install(ctx, install.Options{
		Name:          name,
		Image:         c.Image,
		Destination:   destination,
		Remote:        c.Remote,
		ExtractOnly:   c.ExtractOnly,
		SystemPackage: c.SystemPackage,
		Values:        c.Set,
		RuntimePath:   c.Runtime,
	})
	if err != nil {
		return err
	}

	if managed && !c.ExtractOnly {
		if err := linkActive(name, result.Destination); err != nil {
			return err
		}
	}
	return nil
}

// Points the active-deployment symlink at the freshly installed checkout.
func linkActive(name, destination string) error {
	active := paths.ActiveCheckout(name)
	if err := os.Remove(active); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Symlink(filepath.Base(destination), active); err != nil {
		return err
	}
	slog.Debug("active deployment linked", "name", name, "target", destination)
	return nil
}

// Derives a container name from an image reference.
//
// The base name is the last path segment of the repository, with any tag or
// digest stripped.
func imageBase(image string) string {
	base := image
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '@'); i >= 0 {
		base = base[:i]
	}
	if i := strings.LastIndexByte(base, ':'); i >= 0 {
		base = base[:i]
	}
	return base
}
