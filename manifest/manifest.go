// Package manifest locates and parses the package manifest of a circuit
// project and resolves the workspace it belongs to, including the export
// directory holding pre-materialized function artifacts.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blang/semver/v4"
)

// Filename is the manifest file expected at a package or workspace root.
const Filename = "circuit.json"

// ExportDirName is the directory under the workspace root where exported
// function artifacts live.
const ExportDirName = "export"

// Manifest declares either a single package or a workspace of member
// packages.
type Manifest struct {
	Package   *Package         `json:"package,omitempty"`
	Workspace *WorkspaceConfig `json:"workspace,omitempty"`
}

type Package struct {
	Name            string `json:"name"`
	Type            string `json:"type,omitempty"`
	CompilerVersion string `json:"compiler_version,omitempty"`
}

type WorkspaceConfig struct {
	Members []string `json:"members"`
}

// Workspace is a resolved project root.
type Workspace struct {
	Root     string
	Packages []*Package
}

// ExportDir returns the directory artifacts are exported to.
func (w *Workspace) ExportDir() string {
	return filepath.Join(w.Root, ExportDirName)
}

// GetPackageManifest finds the nearest manifest file at dir or any of its
// parents and returns its path.
func GetPackageManifest(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for d := abs; ; d = filepath.Dir(d) {
		path := filepath.Join(d, Filename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		if filepath.Dir(d) == d {
			return "", fmt.Errorf("no %s manifest found at %s or any parent directory", Filename, abs)
		}
	}
}

// ResolveWorkspace parses the manifest at manifestPath and resolves the
// workspace rooted there. Every member package's declared compiler version
// must be compatible with formatVersion.
func ResolveWorkspace(manifestPath string, formatVersion string) (*Workspace, error) {
	m, err := readManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	root := filepath.Dir(manifestPath)
	ws := &Workspace{Root: root}

	switch {
	case m.Workspace != nil:
		for _, member := range m.Workspace.Members {
			memberPath := filepath.Join(root, member, Filename)
			mm, err := readManifest(memberPath)
			if err != nil {
				return nil, fmt.Errorf("workspace member %q: %w", member, err)
			}
			if mm.Package == nil {
				return nil, fmt.Errorf("workspace member %q declares no package", member)
			}
			if err := checkCompilerVersion(mm.Package, formatVersion); err != nil {
				return nil, fmt.Errorf("workspace member %q: %w", member, err)
			}
			ws.Packages = append(ws.Packages, mm.Package)
		}
	case m.Package != nil:
		if err := checkCompilerVersion(m.Package, formatVersion); err != nil {
			return nil, err
		}
		ws.Packages = []*Package{m.Package}
	default:
		return nil, fmt.Errorf("manifest %s declares neither a package nor a workspace", manifestPath)
	}
	return ws, nil
}

func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

func checkCompilerVersion(p *Package, formatVersion string) error {
	if p.CompilerVersion == "" {
		return nil
	}
	declared, err := semver.Parse(p.CompilerVersion)
	if err != nil {
		return fmt.Errorf("invalid compiler_version %q: %w", p.CompilerVersion, err)
	}
	current := semver.MustParse(formatVersion)
	if declared.Major != current.Major || declared.GT(current) {
		return fmt.Errorf("package %q was compiled with version %s, incompatible with artifact format %s",
			p.Name, p.CompilerVersion, formatVersion)
	}
	return nil
}
