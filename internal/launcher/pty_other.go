//go:build !linux

package launcher

import (
	"fmt"
	"os"
	"os/exec"
)

// Interactive attach without pty support: plain stream passthrough.
func attachPTY(cmd *exec.Cmd, stdin *os.File) error {
	cmd.Stdin = stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %w", ErrExec, err)
	}
	return nil
}
