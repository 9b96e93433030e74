package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadSimpleProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.py", "def inc(x: int) -> int:\n    return x + 1\n")
	writeFile(t, dir, "main.py", "from lib import inc\ndef m(n: int) -> int:\n    return inc(n) * 2\n")

	p, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Modules) != 2 {
		t.Fatalf("want 2 modules, got %d: %+v", len(p.Modules), p.Modules)
	}
	idxLib, idxMain := -1, -1
	for i, m := range p.Order {
		if m == "lib" {
			idxLib = i
		}
		if m == "main" {
			idxMain = i
		}
	}
	if idxLib == -1 || idxMain == -1 || idxLib > idxMain {
		t.Errorf("expected lib before main, got order %v", p.Order)
	}
}

func TestLoadSkipsVendorDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "real.py", "x = 1\n")
	writeFile(t, dir, "venv/lib/pkg.py", "y = 2\n")
	writeFile(t, dir, "__pycache__/cache.py", "z = 3\n")
	writeFile(t, dir, "node_modules/x/a.py", "w = 4\n")

	p, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Modules) != 1 {
		t.Fatalf("want 1 module, got %+v", p.Modules)
	}
}

func TestLoadSkipsConfigFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "setup.py", "x = 1\n")
	writeFile(t, dir, "conftest.py", "y = 1\n")
	writeFile(t, dir, "test_foo.py", "z = 1\n")
	writeFile(t, dir, "app.py", "a = 1\n")

	p, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Modules) != 1 {
		t.Fatalf("want only app.py, got %+v", p.Modules)
	}
}

func TestPackageInitContributesParentOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pkg/__init__.py", "x = 1\n")
	writeFile(t, dir, "pkg/sub.py", "y = 1\n")

	p, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.Modules["pkg"]; !ok {
		t.Errorf("expected module %q, got %+v", "pkg", p.Modules)
	}
	if _, ok := p.Modules["pkg.sub"]; !ok {
		t.Errorf("expected module %q, got %+v", "pkg.sub", p.Modules)
	}
}

func TestCycleToleratedInTopoOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "from b import y\n")
	writeFile(t, dir, "b.py", "from a import x\n")

	p, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Order) != 2 {
		t.Fatalf("want both modules in order exactly once, got %v", p.Order)
	}
	seen := map[string]bool{}
	for _, m := range p.Order {
		if seen[m] {
			t.Fatalf("module %q appears twice in %v", m, p.Order)
		}
		seen[m] = true
	}
}

func TestUnresolvedImportIsWarningNotError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", "import some_host_module\n")

	p, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Warnings) == 0 {
		t.Errorf("expected a warning for unresolved host import")
	}
}

func TestDiscoveryIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "z.py", "x = 1\n")
	writeFile(t, dir, "a.py", "x = 1\n")
	writeFile(t, dir, "m.py", "x = 1\n")

	p1, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(p1.Order) != len(p2.Order) {
		t.Fatalf("non-deterministic module count")
	}
}
