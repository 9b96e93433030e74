package project

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const manifestFileName = "pywasmc.yaml"

// Manifest is an optional project-level configuration file. Its absence
// is not an error - the resolver's default skip-set applies (spec §4.2).
// It may only add to the default skip-set and search paths, never remove
// from them (SPEC_FULL.md ambient-stack Configuration section).
type Manifest struct {
	SkipDirs     []string          `yaml:"skip_dirs"`
	SearchPaths  []string          `yaml:"search_paths"`
	Options      ManifestOptions   `yaml:"options"`
}

// ManifestOptions mirrors the subset of the library Options record a
// manifest may set as a project default.
type ManifestOptions struct {
	Optimize  *bool  `yaml:"optimize"`
	MaxMemory *int   `yaml:"max_memory"`
	Verbosity string `yaml:"verbosity"`
}

// FindProjectRoot walks upward from dir looking for a marker file
// (go.mod, .git, or the manifest itself), the way the teacher's
// module.Resolver.findProjectRoot walks for its own ailang.yaml marker.
func FindProjectRoot(dir string) string {
	markers := []string{manifestFileName, "go.mod", ".git"}
	cur := dir
	for {
		for _, m := range markers {
			if _, err := os.Stat(filepath.Join(cur, m)); err == nil {
				return cur
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}

// LoadManifest reads pywasmc.yaml from root, if present. A missing file
// returns a zero-value Manifest and no error.
func LoadManifest(root string) (*Manifest, error) {
	path := filepath.Join(root, manifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{}, nil
		}
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ApplySkipDirs adds manifest-declared extra skip directories to
// skipDirNames, the process-wide skip-set used by discovery, additive-only.
func (m *Manifest) ApplySkipDirs() {
	for _, d := range m.SkipDirs {
		skipDirNames[d] = true
	}
}
