// Package project implements C2, the project resolver: directory
// discovery, module-path derivation, dependency-graph construction with
// cycle tolerance, and topological ordering (spec §4.2). It consumes
// internal/imports (C1) per file and never touches the real parser -
// dependency extraction is lexical, exactly like the scanner it is built
// on.
package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const sourceExt = ".py"

// configSkipFiles is the closed set of configuration/fixture files
// excluded from compilation regardless of extension match (spec §4.2 step
// 1, concretized in SPEC_FULL.md against original_source's project.rs
// conventions).
var configSkipFiles = map[string]bool{
	"setup.py":    true,
	"setup.cfg":   true,
	"pyproject.toml": true,
	"_version.py": true,
	"conftest.py": true,
}

const packageInitFile = "__init__.py"

// skipDirNames is the closed skip-set of directory names excluded from
// discovery outright (exact match), grounded in
// original_source/src/analysis/project.rs `should_skip_directory`.
var skipDirNames = map[string]bool{
	"venv":         true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
}

// shouldSkipDir reports whether a directory should be excluded from
// discovery (spec §4.2 step 1): cache dirs, hidden dirs, virtual
// environments, nested-package dirs, and build-output dirs.
func shouldSkipDir(name string) bool {
	switch {
	case strings.HasPrefix(name, "__pycache__"):
		return true
	case strings.HasPrefix(name, "."):
		return true
	case strings.HasPrefix(name, "env"):
		return true
	case strings.Contains(name, "site-packages"):
		return true
	case skipDirNames[name]:
		return true
	}
	return false
}

// isTestFixtureFile reports whether a filename matches the scan-time
// test-fixture skip (`test_*.py` / `*_test.py`), distinct from the
// language subset's own support for test code reached via explicit
// compile targets (SPEC_FULL.md C2 supplement).
func isTestFixtureFile(name string) bool {
	return strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test.py")
}

// shouldSkipFile reports whether a discovered .py file should be excluded
// from the module map.
func shouldSkipFile(name string) bool {
	if configSkipFiles[name] {
		return true
	}
	return isTestFixtureFile(name) && name != packageInitFile
}

// discoverFiles recursively walks root, returning source files in sorted
// order. Sorting makes discovery deterministic regardless of the
// filesystem's own directory-entry enumeration order (spec §8 round-trip
// invariant).
func discoverFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != sourceExt {
			return nil
		}
		if shouldSkipFile(d.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// modulePath derives the dotted module path for a file relative to root
// (spec §4.2 step 2): strip the root prefix, drop the extension, replace
// separators with dots, and fold a package-init file into its parent
// directory's segment.
func modulePath(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = file
	}
	rel = strings.TrimSuffix(rel, sourceExt)
	rel = filepath.ToSlash(rel)

	if strings.HasSuffix(rel, "/__init__") {
		rel = strings.TrimSuffix(rel, "/__init__")
	} else if rel == "__init__" {
		rel = "."
	}

	return strings.ReplaceAll(rel, "/", ".")
}
