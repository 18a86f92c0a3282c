package prompt

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Resolver renders a prompt template by id with named variables.
// The core does not manage template versioning beyond what the
// registry records.
type Resolver interface {
	Render(id string, vars map[string]any) (string, error)
}

// registryEntry describes one prompt in registry.yaml.
type registryEntry struct {
	ActiveVersion string            `yaml:"active_version"`
	Versions      map[string]string `yaml:"versions"` // version -> relative template path
}

// FileResolver loads a registry.yaml from a prompts directory and renders
// versioned template files. The active version can be overridden per prompt
// with a PROMPT_<ID>_VERSION environment variable.
type FileResolver struct {
	dir      string
	registry map[string]registryEntry
	logger   *slog.Logger
}

// NewFileResolver reads <dir>/registry.yaml and returns a resolver over it.
func NewFileResolver(dir string) (*FileResolver, error) {
	registryPath := filepath.Join(dir, "registry.yaml")
	raw, err := os.ReadFile(registryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt registry: %w", err)
	}

	registry := make(map[string]registryEntry)
	if err := yaml.Unmarshal(raw, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse prompt registry: %w", err)
	}

	return &FileResolver{
		dir:      dir,
		registry: registry,
		logger:   slog.Default(),
	}, nil
}

// Render resolves the active version for id, loads its template file, and
// renders it with vars. Missing variables are an error, not empty output.
func (r *FileResolver) Render(id string, vars map[string]any) (string, error) {
	entry, ok := r.registry[id]
	if !ok {
		return "", fmt.Errorf("prompt id %q not found in registry", id)
	}

	version := entry.ActiveVersion
	if env := os.Getenv("PROMPT_" + strings.ToUpper(id) + "_VERSION"); env != "" {
		version = env
	}
	if version == "" {
		return "", fmt.Errorf("could not resolve version for prompt id %q", id)
	}

	relPath, ok := entry.Versions[version]
	if !ok {
		return "", fmt.Errorf("version %q for prompt %q not found in registry", version, id)
	}
	// Registry paths stay inside the prompts directory.
	if strings.Contains(relPath, "..") || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("invalid template path %q: absolute paths and '..' are forbidden", relPath)
	}

	raw, err := os.ReadFile(filepath.Join(r.dir, relPath))
	if err != nil {
		return "", fmt.Errorf("failed to read template %q: %w", relPath, err)
	}

	rendered, err := renderTemplate(id, string(raw), vars)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256([]byte(rendered))
	r.logger.Debug("rendered prompt",
		"prompt_id", id,
		"version", version,
		"hash", fmt.Sprintf("%x", hash[:4]),
		"vars", varNames(vars),
	)
	return rendered, nil
}

func renderTemplate(id, text string, vars map[string]any) (string, error) {
	tmpl, err := template.New(id).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %q: %w", id, err)
	}

	var builder strings.Builder
	if err := tmpl.Execute(&builder, vars); err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", id, err)
	}
	return builder.String(), nil
}

func varNames(vars map[string]any) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	return names
}
