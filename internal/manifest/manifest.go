package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/containerd/errdefs"
)

// Filename of the install manifest inside an image's exports directory.
const File = "manifest.json"

// Per-image install metadata.
//
// RenameFiles maps checkout-relative paths to their install destination,
// possibly via a $variable placeholder. Defaults seeds the substitution
// values an image ships with. Unknown attributes are preserved in raw form.
type Manifest struct {
	RenameFiles map[string]string `json:"renameFiles,omitempty"`
	Defaults    map[string]string `json:"defaultValues,omitempty"`
	Version     string            `json:"version,omitempty"`

	raw map[string]json.RawMessage // Full document, for attribute lookups.
}

// Parses a manifest document.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m.raw); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Loads the manifest at path.
//
// A missing manifest is a not-found error; images without one are common
// and callers treat that case as an empty manifest.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest %q: %w", path, errdefs.ErrNotFound)
		}
		return nil, err
	}
	return Parse(data)
}

// Returns the raw attribute under key, or the default when absent.
//
// Pure lookup; the manifest is not mutated. String attributes are returned
// unquoted, anything else as its raw JSON text.
func (m *Manifest) Attribute(key, def string) string {
	if m == nil || m.raw == nil {
		return def
	}
	raw, ok := m.raw[key]
	if !ok {
		return def
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Resolves $variable rename targets in place.
//
// Every rename value beginning with '$' must resolve through values; an
// unresolved variable fails with an invalid-argument error naming it.
// Values not starting with '$' are left untouched. Entries processed before
// a failure keep their resolved values, matching the in-place contract.
func (m *Manifest) ResolveRenames(values map[string]string) error {
	for key, target := range m.RenameFiles {
		if !strings.HasPrefix(target, "$") {
			continue
		}

		name := strings.TrimPrefix(target, "$")
		replacement, ok := values[name]
		if !ok {
			return fmt.Errorf("rename value %q for %q cannot be replaced: %w", name, key, errdefs.ErrInvalidArgument)
		}
		m.RenameFiles[key] = replacement
	}
	return nil
}
