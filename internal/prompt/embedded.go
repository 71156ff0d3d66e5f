// Package prompt loads the versioned prompt templates sent to the backend CLI.
// Built-in templates are baked into the binary with go:embed; a repository can
// override them with files under .repodoc/prompts/<version>/.
package prompt

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// embeddedTemplates contains templates/<version>/*.yaml.
//
//go:embed templates
var embeddedTemplates embed.FS

// DefaultVersion is the template set used when none is configured.
const DefaultVersion = "v1"

// templateFile matches the YAML structure in templates/<version>/*.yaml.
type templateFile struct {
	Command     string `yaml:"command"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
}

// Loader holds the templates of one version, keyed by command.
type Loader struct {
	version   string
	templates map[string]*Template
	log       *zap.Logger
}

// NewLoader loads the embedded templates for version.
func NewLoader(version string, log *zap.Logger) (*Loader, error) {
	if version == "" {
		version = DefaultVersion
	}
	if log == nil {
		log = zap.NewNop()
	}
	l := &Loader{version: version, templates: make(map[string]*Template), log: log}

	sub, err := fs.Sub(embeddedTemplates, path.Join("templates", version))
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded templates: %w", err)
	}
	if err := l.loadFS(sub, "embedded"); err != nil {
		return nil, err
	}
	if len(l.templates) == 0 {
		return nil, fmt.Errorf("no prompt templates for version %q", version)
	}

	log.Info("Loaded prompt templates", zap.String("version", version), zap.Int("count", len(l.templates)))
	return l, nil
}

// Override loads <dir>/<version>/*.yaml over the current templates. A missing
// directory is not an error.
func (l *Loader) Override(dir string) error {
	versionDir := filepath.Join(dir, l.version)
	info, err := os.Stat(versionDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat prompt overrides: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("prompt override path is not a directory: %s", versionDir)
	}
	return l.loadFS(os.DirFS(versionDir), versionDir)
}

func (l *Loader) loadFS(fsys fs.FS, source string) error {
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(path.Ext(p))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", p, err)
		}
		var tf templateFile
		if err := yaml.Unmarshal(data, &tf); err != nil {
			l.log.Warn("Skipping unparsable template", zap.String("source", source), zap.String("file", p), zap.Error(err))
			return nil
		}

		command := tf.Command
		if command == "" {
			command = strings.TrimSuffix(path.Base(p), path.Ext(p))
		}
		if strings.TrimSpace(tf.Template) == "" {
			l.log.Warn("Skipping empty template", zap.String("source", source), zap.String("command", command))
			return nil
		}

		l.templates[command] = &Template{
			Command:     command,
			Version:     l.version,
			Description: tf.Description,
			Content:     tf.Template,
			Source:      source,
		}
		l.log.Debug("Loaded prompt template", zap.String("command", command), zap.String("source", source))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk templates in %s: %w", source, err)
	}
	return nil
}

// Version returns the template version this loader serves.
func (l *Loader) Version() string { return l.version }

// Get returns the template for command.
func (l *Loader) Get(command string) (*Template, error) {
	t, ok := l.templates[command]
	if !ok {
		return nil, fmt.Errorf("prompt template '%s' not found. Available: %s", command, strings.Join(l.Commands(), ", "))
	}
	return t, nil
}

// Render returns the prompt for command with vars substituted.
func (l *Loader) Render(command string, vars map[string]string) (string, error) {
	t, err := l.Get(command)
	if err != nil {
		return "", err
	}
	return t.Render(vars), nil
}

// Commands lists the loaded template names, sorted.
func (l *Loader) Commands() []string {
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
