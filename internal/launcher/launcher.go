package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/containerd/errdefs"

	"github.com/syscontainers/sysc/internal/ociconfig"
	"github.com/syscontainers/sysc/internal/paths"
	"github.com/syscontainers/sysc/internal/rootfs"
)

const (

	// Default path of the runtime tool.
	DefaultRuntimePath = "/usr/bin/runc"

	// Storage backend identifier of the legacy ostree-direct backend,
	// which cannot host an exec session.
	LegacyBackend = "ostree"
)

// Probes whether a container's service is currently active.
type Liveness interface {
	Active(ctx context.Context, name string) bool
}

// Resolves a container name to its checkout directory.
type Lookup interface {
	Checkout(name string) (string, bool)
}

// Configures a [Launcher].
type Config struct {
	RuntimePath string   // Path to the runtime tool. Empty uses [DefaultRuntimePath].
	Backend     string   // Storage backend identifier of the container.
	UserMode    bool     // Whether the caller operates in user mode.
	Liveness    Liveness // Service probe. Nil uses systemd.
	Lookup      Lookup   // Checkout resolution. Nil uses the default checkout root.
	Stdin       *os.File // Stream probed for interactivity. Nil uses os.Stdin.
}

// Attaches to running containers and starts stopped ones.
type Launcher struct {
	runtimePath string
	backend     string
	userMode    bool
	liveness    Liveness
	lookup      Lookup
	stdin       *os.File

	// Executes the final invocation; replaced in tests.
	run func(ctx context.Context, argv []string, interactive bool, dir string) error
}

// Creates a launcher, filling unset configuration with defaults.
func New(cfg Config) *Launcher {
	l := &Launcher{
		runtimePath: cfg.RuntimePath,
		backend:     cfg.Backend,
		userMode:    cfg.UserMode,
		liveness:    cfg.Liveness,
		lookup:      cfg.Lookup,
		stdin:       cfg.Stdin,
	}
	if l.runtimePath == "" {
		l.runtimePath = DefaultRuntimePath
	}
	if l.liveness == nil {
		l.liveness = systemdLiveness{}
	}
	if l.lookup == nil {
		l.lookup = checkoutLookup{root: paths.Checkouts()}
	}
	if l.stdin == nil {
		l.stdin = os.Stdin
	}
	l.run = l.runAttached
	return l
}

// Attaches to a running container or starts a stopped one.
//
// A running container gets an exec invocation carrying the caller's
// arguments, with a --tty only when stdin is an interactive terminal. A
// stopped container is started in the foreground from its stored runtime
// configuration; detach is refused in that case, and execArgs are ignored
// because the stored config defines the process. User mode and the legacy
// ostree-direct backend cannot exec at all.
func (l *Launcher) Exec(ctx context.Context, name string, detach bool, execArgs []string) error {
	if l.userMode {
		return fmt.Errorf("exec is not supported in user mode: %w", errdefs.ErrInvalidArgument)
	}
	if l.backend == LegacyBackend {
		return fmt.Errorf("exec is not supported on the %s backend: %w", LegacyBackend, errdefs.ErrInvalidArgument)
	}

	if l.liveness.Active(ctx, name) {
		interactive := isTerminal(l.stdin)
		argv := buildExecArgv(l.runtimePath, name, interactive, execArgs)

		slog.Debug("attaching to running container", "name", name, "tty", interactive)
		return l.run(ctx, argv, interactive, "")
	}

	if detach {
		return fmt.Errorf("container %q is not running, cannot detach: %w", name, errdefs.ErrInvalidArgument)
	}

	checkout, ok := l.lookup.Checkout(name)
	if !ok {
		return fmt.Errorf("no checkout for container %q: %w", name, errdefs.ErrNotFound)
	}

	location, err := rootfs.ResolveLocation(checkout)
	if err != nil {
		return err
	}

	// The stored config defines the process; it must parse before the
	// runtime is handed the bundle.
	if _, err := ociconfig.Read(location); err != nil {
		return fmt.Errorf("%w: %w", ErrExec, err)
	}

	slog.Debug("starting container", "name", name, "checkout", location)
	return l.run(ctx, buildRunArgv(l.runtimePath, name), false, location)
}

// Builds the argv for attaching to a running container.
func buildExecArgv(runtimePath, name string, tty bool, execArgs []string) []string {
	argv := []string{runtimePath, "exec"}
	if tty {
		argv = append(argv, "--tty")
	}
	argv = append(argv, name)
	return append(argv, execArgs...)
}

// Builds the argv for starting a container from its stored configuration.
func buildRunArgv(runtimePath, name string) []string {
	return []string{runtimePath, "run", name}
}

// Runs the invocation with the caller's streams attached.
//
// Interactive invocations go through a pseudo-terminal so control
// characters and window resizes reach the container process; everything
// else is plain stream passthrough. dir, when set, becomes the working
// directory (the runtime resolves the bundle relative to it).
func (l *Launcher) runAttached(ctx context.Context, argv []string, interactive bool, dir string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	if interactive {
		return attachPTY(cmd, l.stdin)
	}

	cmd.Stdin = l.stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %w", ErrExec, err)
	}
	return nil
}

// Whether the given file is an interactive terminal.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
