package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// ManifestFile is the optional per-project manifest filename.
const ManifestFile = "ark.toml"

// Manifest represents a project-level ark.toml declaration. It lets a
// repository pin its protected source roots and output location so every
// session starts with the same safety posture.
type Manifest struct {
	Project  ProjectDeclaration  `toml:"project"`
	Output   OutputDeclaration   `toml:"output"`
	Analysis AnalysisDeclaration `toml:"analysis"`
	Safety   SafetyDeclaration   `toml:"safety"`
}

// ProjectDeclaration identifies the project
type ProjectDeclaration struct {
	Name string `toml:"name"`
	// Language is the primary source language (informational).
	Language string `toml:"language,omitempty"`
}

// OutputDeclaration overrides the output root
type OutputDeclaration struct {
	RootName string `toml:"root_name,omitempty"`
}

// AnalysisDeclaration overrides analysis defaults
type AnalysisDeclaration struct {
	DefaultTier string `toml:"default_tier,omitempty"`
	Workers     int    `toml:"workers,omitempty"`
}

// SafetyDeclaration lists workspace-relative roots to protect at session start.
type SafetyDeclaration struct {
	ProtectedRoots []string `toml:"protected_roots,omitempty"`
}

// LoadManifest reads ark.toml from the workspace root. A missing manifest is
// not an error; nil is returned.
func LoadManifest(workspace string) (*Manifest, error) {
	path := filepath.Join(workspace, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
