// Package workspace resolves the repository being analyzed and manages the
// .repodoc state directory inside it.
package workspace

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"repodoctor/internal/config"
	"repodoctor/internal/doctor"
)

// codeExtensions marks a file as analyzable source.
var codeExtensions = map[string]bool{
	".py":   true,
	".js":   true,
	".ts":   true,
	".java": true,
	".go":   true,
	".rs":   true,
	".rb":   true,
	".cpp":  true,
	".c":    true,
	".h":    true,
	".css":  true,
	".html": true,
}

// IsCodeFile reports whether name has a source-code extension.
func IsCodeFile(name string) bool {
	return codeExtensions[filepath.Ext(name)]
}

// RepoRoot returns the absolute path of dir after checking it is a directory
// holding source code at the top level or one level down. Hidden directories
// are not searched. A directory that cannot be read is accepted with a warning.
func RepoRoot(dir string, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", doctor.InvalidRepository(dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", doctor.InvalidRepository(abs, err)
	}
	if !info.IsDir() {
		return "", doctor.InvalidRepository(abs, nil)
	}
	log.Debug("Working directory", zap.String("path", abs))

	found, err := hasCode(abs)
	if err != nil {
		log.Warn("Could not fully validate repository content", zap.Error(err))
		return abs, nil
	}
	if !found {
		log.Warn("No code files found", zap.String("path", abs))
		return "", doctor.EmptyRepository()
	}
	return abs, nil
}

func hasCode(root string) (bool, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			if IsCodeFile(e.Name()) {
				return true, nil
			}
			continue
		}
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		children, err := os.ReadDir(filepath.Join(root, e.Name()))
		if err != nil {
			return false, err
		}
		for _, c := range children {
			if !c.IsDir() && IsCodeFile(c.Name()) {
				return true, nil
			}
		}
	}
	return false, nil
}

// StateDir returns <root>/.repodoc.
func StateDir(root string) string {
	return filepath.Join(root, config.StateDir)
}

// LogsDir returns <root>/.repodoc/logs.
func LogsDir(root string) string {
	return filepath.Join(StateDir(root), "logs")
}

// PromptsDir returns <root>/.repodoc/prompts, where template overrides live.
func PromptsDir(root string) string {
	return filepath.Join(StateDir(root), "prompts")
}

// EnsureStateDir creates <root>/.repodoc and returns its path.
func EnsureStateDir(root string) (string, error) {
	dir := StateDir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", doctor.IO("Failed to create "+config.StateDir+" directory", err)
	}
	return dir, nil
}
