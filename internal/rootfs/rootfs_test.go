package rootfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/containerd/errdefs"
)

func TestResolveLocationContainerDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "rootfs", "usr"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveLocation(dir)
	if err != nil {
		t.Fatalf("ResolveLocation: %v", err)
	}

	want, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Fatalf("ResolveLocation = %q, want %q", got, want)
	}
}

func TestResolveLocationRootfsDir(t *testing.T) {
	dir := t.TempDir()
	rootfs := filepath.Join(dir, "rootfs")
	if err := os.MkdirAll(filepath.Join(rootfs, "usr"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveLocation(rootfs)
	if err != nil {
		t.Fatalf("ResolveLocation: %v", err)
	}

	want, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Fatalf("ResolveLocation = %q, want %q", got, want)
	}
}

func TestResolveLocationMissingPath(t *testing.T) {
	_, err := ResolveLocation(filepath.Join(t.TempDir(), "non-existent"))
	if !errdefs.IsNotFound(err) {
		t.Fatalf("err = %v, want not-found", err)
	}
}

func TestResolveLocationInvalidLayout(t *testing.T) {
	dir := t.TempDir() // exists but holds neither rootfs/usr nor usr
	_, err := ResolveLocation(dir)
	if !errdefs.IsNotFound(err) {
		t.Fatalf("err = %v, want not-found", err)
	}
}

func TestPrepareDirsExtractOnly(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "extract")

	got, err := PrepareDirs("", dest, true)
	if err != nil {
		t.Fatalf("PrepareDirs: %v", err)
	}
	if got != dest {
		t.Fatalf("target = %q, want %q", got, dest)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("destination not created: %v", err)
	}
}

func TestPrepareDirsRemote(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "dest")

	got, err := PrepareDirs("/some/remote", dest, false)
	if err != nil {
		t.Fatalf("PrepareDirs: %v", err)
	}
	if want := filepath.Join(dest, "rootfs"); got != want {
		t.Fatalf("target = %q, want %q", got, want)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("destination not created: %v", err)
	}
}

func TestPrepareDirsDestinationOnly(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "dest")

	got, err := PrepareDirs("", dest, false)
	if err != nil {
		t.Fatalf("PrepareDirs: %v", err)
	}
	want := filepath.Join(dest, "rootfs")
	if got != want {
		t.Fatalf("target = %q, want %q", got, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("rootfs target not created: %v", err)
	}
}

func TestPrepareDirsIdempotent(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "dest")

	first, err := PrepareDirs("", dest, false)
	if err != nil {
		t.Fatalf("first PrepareDirs: %v", err)
	}
	second, err := PrepareDirs("", dest, false)
	if err != nil {
		t.Fatalf("second PrepareDirs: %v", err)
	}
	if first != second {
		t.Fatalf("targets differ across runs: %q vs %q", first, second)
	}
}
