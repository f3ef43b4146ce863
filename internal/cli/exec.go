package cli

import (
	"context"
	"os"

	"github.com/syscontainers/sysc/internal/launcher"
)

// Represents the 'sysc exec' command.
type ExecCmd struct {
	Name string   `arg:"" help:"Container name."`
	Args []string `arg:"" optional:"" passthrough:"" help:"Command to run inside a running container."`

	Detach  bool   `help:"Do not attach to the container's streams."`
	Runtime string `help:"Path to the runtime tool." placeholder:"PATH"`
	Backend string `help:"Storage backend the container was installed with." placeholder:"NAME"`
}

// Executes the exec command.
//
// Attaches to the container when its service is active; otherwise starts it
// in the foreground from its stored runtime configuration.
func (c *ExecCmd) Run(ctx context.Context) error {
	l := launcher.New(launcher.Config{
		RuntimePath: c.Runtime,
		Backend:     c.Backend,
		UserMode:    os.Geteuid() != 0,
	})
	return l.Exec(ctx, c.Name, c.Detach, c.Args)
}
