package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
)

// Manager resolves project paths and owns the output tree.
type Manager struct {
	projectDir string
	outputRoot string
}

// NewManager creates a manager for projectDir whose build outputs live under
// outputRoot (relative to projectDir unless absolute).
func NewManager(projectDir, outputRoot string) *Manager {
	if projectDir == "" {
		projectDir = "."
	}
	return &Manager{projectDir: projectDir, outputRoot: outputRoot}
}

// Path resolves a project-relative path.
func (m *Manager) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.projectDir, filepath.FromSlash(rel))
}

// OutputRoot returns the resolved output root.
func (m *Manager) OutputRoot() string {
	return m.Path(m.outputRoot)
}

// Clean removes the output root and everything below it. A missing output
// root is not an error.
func (m *Manager) Clean() error {
	root := m.OutputRoot()
	if _, err := os.Stat(root); os.IsNotExist(err) {
		slog.Debug("Output root already absent", logfields.Path(root))
		return nil
	}
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("failed to clean output root: %w", err)
	}
	slog.Info("Cleaned output root", logfields.Path(root))
	return nil
}
