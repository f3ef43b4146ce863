//go:build linux

package launcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// Runs the command behind a pseudo-terminal with the caller's terminal
// attached.
//
// The caller's stdin is switched to raw mode for the duration so control
// characters pass through to the container process, and window resizes are
// propagated via SIGWINCH.
func attachPTY(cmd *exec.Cmd, stdin *os.File) error {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("%w: start pty: %w", ErrExec, err)
	}
	defer ptmx.Close()

	resize := make(chan os.Signal, 1)
	signal.Notify(resize, syscall.SIGWINCH)
	defer signal.Stop(resize)

	go func() {
		for range resize {
			_ = pty.InheritSize(stdin, ptmx)
		}
	}()
	resize <- syscall.SIGWINCH

	if state, err := makeRaw(int(stdin.Fd())); err == nil {
		defer restore(int(stdin.Fd()), state)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = io.Copy(os.Stdout, ptmx)
	}()

	// The stdin copy can block past process exit; it is cleaned up by
	// process teardown rather than waited on.
	go func() { _, _ = io.Copy(ptmx, stdin) }()

	err = cmd.Wait()

	ptmx.Close()
	<-done

	if err != nil {
		return fmt.Errorf("%w: %w", ErrExec, err)
	}
	return nil
}

// Switches a terminal to raw mode, returning the previous state.
func makeRaw(fd int) (*unix.Termios, error) {
	old, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, err
	}

	raw := *old
	raw.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	raw.Cflag &^= unix.CSIZE | unix.PARENB
	raw.Cflag |= unix.CS8
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &raw); err != nil {
		return nil, err
	}
	return old, nil
}

// Restores a terminal to a previously saved state.
func restore(fd int, state *unix.Termios) {
	_ = unix.IoctlSetTermios(fd, unix.TCSETS, state)
}
