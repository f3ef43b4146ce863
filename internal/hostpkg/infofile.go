package hostpkg

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/syscontainers/sysc/internal/paths"
)

// Filename of the install record inside a checkout directory.
const InfoFile = "info"

// Persisted record of an installation attempt.
type InstallRecord struct {
	Destination   string            `json:"destination"`
	Image         string            `json:"image"`
	ImageID       string            `json:"image-id,omitempty"`
	Remote        string            `json:"remote,omitempty"`
	Prefix        string            `json:"prefix,omitempty"`
	Values        map[string]string `json:"values"`
	Files         []string          `json:"new_installed_files"`
	FileChecksums map[string]string `json:"new_installed_files_checksum"`
	RPMInstalled  bool              `json:"rpm_installed"`
	SystemPackage string            `json:"system_package,omitempty"`
}

// Writes the install record to <destination>/info.
//
// Precondition: the destination directory exists. On any write failure the
// files listed in the record are deleted before the original error is
// returned, so a failed install leaves nothing behind on the host. The
// rollback is unconditional; it does not try to classify the failure.
func WriteInfoFile(record InstallRecord) error {
	if record.Files == nil {
		record.Files = sortedKeys(record.FileChecksums)
	}
	if record.Values == nil {
		record.Values = map[string]string{}
	}
	if record.FileChecksums == nil {
		record.FileChecksums = map[string]string{}
	}

	data, err := json.MarshalIndent(record, "", "\t")
	if err != nil {
		removeFiles(record.Files)
		return err
	}
	data = append(data, '\n')

	path := filepath.Join(record.Destination, InfoFile)
	if err := os.WriteFile(path, data, paths.DefaultFileMode); err != nil {
		removeFiles(record.Files)
		return err
	}

	slog.Debug("install record written", "path", path, "files", len(record.Files))
	return nil
}

// Reads the install record of an existing checkout.
func ReadInfoFile(destination string) (*InstallRecord, error) {
	data, err := os.ReadFile(filepath.Join(destination, InfoFile))
	if err != nil {
		return nil, err
	}
	var record InstallRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Deletes every newly installed file, ignoring files already gone.
func removeFiles(files []string) {
	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove installed file during rollback", "path", f, "error", err)
		}
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
