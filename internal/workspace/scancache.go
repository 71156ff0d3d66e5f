package workspace

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"repodoctor/internal/doctor"
	"repodoctor/internal/schemas"
)

// ScanCacheFile is the name of the cached scan inside .repodoc.
const ScanCacheFile = "last_scan.json"

// ScanCachePath returns <root>/.repodoc/last_scan.json.
func ScanCachePath(root string) string {
	return filepath.Join(StateDir(root), ScanCacheFile)
}

// SaveScan caches result for later use by the report command.
func SaveScan(root string, result *schemas.ScanResult) (string, error) {
	if _, err := EnsureStateDir(root); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", doctor.IO("Failed to encode scan results", err)
	}
	path := ScanCachePath(root)
	if err := WriteFileAtomic(path, data, 0644); err != nil {
		return "", doctor.IO("Failed to save scan results", err)
	}
	return path, nil
}

// LoadScan reads the cached scan. A missing cache is a usage error.
func LoadScan(root string) (*schemas.ScanResult, error) {
	path := ScanCachePath(root)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, doctor.Usage("No scan results found. Run repodoc scan first.")
		}
		return nil, doctor.IO("Failed to read scan results", err)
	}

	var result schemas.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, doctor.IO("Failed to decode scan results from "+path, err)
	}
	return &result, nil
}
