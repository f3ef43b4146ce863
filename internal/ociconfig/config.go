package ociconfig

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	specs "github.com/opencontainers/runtime-spec/specs-go"

	"github.com/syscontainers/sysc/internal/paths"
	"github.com/syscontainers/sysc/internal/rootfs"
)

// Filename of the runtime configuration inside a checkout.
const ConfigFile = "config.json"

// Suffix of the templated variant shipped in image exports.
const templateSuffix = ".template"

// Writes the runtime config.json for a checkout.
//
// Sources are tried in priority order: exports/config.json is copied
// verbatim, exports/config.json.template is instantiated with values, and
// as a last resort the runtime tool generates a default spec. values only
// applies to the template path; the verbatim copy never substitutes.
func WriteConfig(ctx context.Context, destination, exportsDir string, values map[string]string, runtimePath string) error {
	fixed := filepath.Join(exportsDir, ConfigFile)
	if _, err := os.Stat(fixed); err == nil {
		return copyFile(fixed, filepath.Join(destination, ConfigFile))
	}

	template := fixed + templateSuffix
	if _, err := os.Stat(template); err == nil {
		return writeTemplate(template, filepath.Join(destination, ConfigFile), values)
	}

	return generateDefault(ctx, destination, runtimePath)
}

// Copies the fixed config shipped with the image.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, paths.DefaultFileMode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Instantiates a config template with the given values.
func writeTemplate(src, dst string, values map[string]string) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	expanded := Expand(string(raw), values)
	return os.WriteFile(dst, []byte(expanded), paths.DefaultFileMode)
}

// Substitutes $name and ${name} placeholders from values.
//
// Unresolved placeholders are left as literal text rather than failing;
// "$$" escapes a literal dollar sign. Image templates carry placeholders
// for variables the operator may never set, and those must survive the
// instantiation untouched.
func Expand(s string, values map[string]string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '$' {
			b.WriteByte(s[i])
			continue
		}

		if i+1 < len(s) && s[i+1] == '$' {
			b.WriteByte('$')
			i++
			continue
		}

		name, width := scanName(s[i+1:])
		if name == "" {
			b.WriteByte('$')
			continue
		}

		if v, ok := values[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(s[i : i+1+width])
		}
		i += width
	}

	return b.String()
}

// Scans a placeholder name following a '$'.
//
// Returns the name and the number of bytes consumed, including braces for
// the ${name} form. An empty name means the '$' starts no placeholder.
func scanName(s string) (string, int) {
	if len(s) == 0 {
		return "", 0
	}

	if s[0] == '{' {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return "", 0
		}
		return s[1:end], end + 1
	}

	n := 0
	for n < len(s) && isNameByte(s[n]) {
		n++
	}
	return s[:n], n
}

func isNameByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// Generates a default runtime configuration via the runtime tool.
//
// The runtime's spec generator writes a config.json into the bundle
// directory. The generated spec is then reparsed and its root path pinned
// to the rootfs subdirectory, the invariant every launch path relies on.
func generateDefault(ctx context.Context, destination, runtimePath string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, runtimePath, "spec", "--bundle", destination)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("generate default configuration: %s", msg)
	}

	configPath := filepath.Join(destination, ConfigFile)
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	var spec specs.Spec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return fmt.Errorf("parse generated configuration: %w", err)
	}

	if spec.Root == nil {
		spec.Root = &specs.Root{}
	}
	spec.Root.Path = rootfs.Dir

	out, err := json.MarshalIndent(spec, "", "\t")
	if err != nil {
		return err
	}

	slog.Debug("generated default configuration", "destination", destination)
	return os.WriteFile(configPath, out, paths.DefaultFileMode)
}

// Reads the runtime configuration stored in a checkout directory.
func Read(dir string) (*specs.Spec, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if err != nil {
		return nil, err
	}

	var spec specs.Spec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	return &spec, nil
}
