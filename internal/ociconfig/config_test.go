package ociconfig

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteConfigCopiesFixedConfig(t *testing.T) {
	dir := t.TempDir()
	exports := filepath.Join(dir, "rootfs", "exports")
	dest := filepath.Join(dir, "dest")
	mkdirs(t, exports, dest)

	// A fixed config is copied verbatim: placeholders are NOT substituted.
	writeFile(t, filepath.Join(exports, "config.json"), `{"test_one": "$hello_test"}`)

	err := WriteConfig(context.Background(), dest, exports, map[string]string{"hello_test": "new_val"}, "")
	if err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	got := readJSON(t, filepath.Join(dest, "config.json"))
	if got["test_one"] != "$hello_test" {
		t.Fatalf("test_one = %q, want literal $hello_test", got["test_one"])
	}
}

func TestWriteConfigInstantiatesTemplate(t *testing.T) {
	dir := t.TempDir()
	exports := filepath.Join(dir, "exports")
	dest := filepath.Join(dir, "dest")
	mkdirs(t, exports, dest)

	writeFile(t, filepath.Join(exports, "config.json.template"), `{"test_one": "$hello_test", "missing": "$unset"}`)

	err := WriteConfig(context.Background(), dest, exports, map[string]string{"hello_test": "new_val"}, "")
	if err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	got := readJSON(t, filepath.Join(dest, "config.json"))
	if got["test_one"] != "new_val" {
		t.Fatalf("test_one = %q, want new_val", got["test_one"])
	}
	if got["missing"] != "$unset" {
		t.Fatalf("missing = %q, want literal $unset", got["missing"])
	}
}

func TestWriteConfigGeneratesDefault(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "dest")
	mkdirs(t, dest)

	// Fake runtime tool whose spec subcommand writes a minimal config with
	// a root path the generator must rewrite.
	runtime := filepath.Join(dir, "runc")
	writeExecutable(t, runtime, `#!/bin/sh
[ "$1" = "spec" ] || exit 1
echo '{"ociVersion":"1.0.2","root":{"path":"overridden"}}' > "$3"/config.json
`)

	err := WriteConfig(context.Background(), dest, filepath.Join(dir, "not-exist"), nil, runtime)
	if err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	spec, err := Read(dest)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if spec.Root == nil || spec.Root.Path != "rootfs" {
		t.Fatalf("root.path = %+v, want rootfs", spec.Root)
	}
}

func TestExpand(t *testing.T) {
	values := map[string]string{"name": "etcd", "port": "2379"}

	tests := []struct {
		in   string
		want string
	}{
		{"$name", "etcd"},
		{"${name}", "etcd"},
		{"$name:$port", "etcd:2379"},
		{"$unknown", "$unknown"},
		{"${unknown}", "${unknown}"},
		{"$$name", "$name"},
		{"plain", "plain"},
		{"$", "$"},
		{"${unterminated", "${unterminated"},
	}
	for _, tt := range tests {
		if got := Expand(tt.in, values); got != tt.want {
			t.Errorf("Expand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func mkdirs(t *testing.T, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeExecutable(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}
}

func readJSON(t *testing.T, path string) map[string]string {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	return m
}
