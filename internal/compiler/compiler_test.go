package compiler_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/pywasmc/internal/codegen"
	"github.com/sunholo/pywasmc/internal/compiler"
)

// decodeExportNames walks a generated binary's section framing to pull out
// every name in the exports section, good enough to assert "did this
// function get exported" without a full decoder.
func decodeExportNames(t *testing.T, bin []byte) []string {
	t.Helper()
	i := 0
	for i < len(bin) {
		id := bin[i]
		i++
		length, n := decodeULEB(bin[i:])
		i += n
		body := bin[i : i+int(length)]
		i += int(length)
		if id != codegen.SecExports {
			continue
		}
		return decodeExportSection(body)
	}
	t.Fatal("no exports section found")
	return nil
}

func decodeExportSection(body []byte) []string {
	var names []string
	i := 0
	count, n := decodeULEB(body[i:])
	i += n
	for e := uint32(0); e < count; e++ {
		nameLen, n := decodeULEB(body[i:])
		i += n
		names = append(names, string(body[i:i+int(nameLen)]))
		i += int(nameLen)
		i++ // export kind byte
		_, n = decodeULEB(body[i:])
		i += n
	}
	return names
}

func decodeULEB(b []byte) (uint32, int) {
	var result uint32
	var shift uint
	i := 0
	for {
		v := b[i]
		result |= uint32(v&0x7f) << shift
		i++
		if v&0x80 == 0 {
			break
		}
		shift += 7
	}
	return result, i
}

func TestCompileSourceAddExportsFunction(t *testing.T) {
	res, err := compiler.CompileSource("def add(a: int, b: int) -> int:\n    return a + b\n", compiler.DefaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, res.Binary)
	assert.Empty(t, res.Warnings)
	assert.Contains(t, decodeExportNames(t, res.Binary), "add")
	assert.Contains(t, decodeExportNames(t, res.Binary), "memory")
}

func TestCompileSourcePowExportsFunction(t *testing.T) {
	res, err := compiler.CompileSource("def pw(a: int, b: int) -> int:\n    return a ** b\n", compiler.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, decodeExportNames(t, res.Binary), "pw")
}

func TestCompileSourceBoolAndExportsFunction(t *testing.T) {
	res, err := compiler.CompileSource("def h(a: bool, b: bool) -> bool:\n    return a and b\n", compiler.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, decodeExportNames(t, res.Binary), "h")
}

func TestCompileSourceUnknownCalleeWarns(t *testing.T) {
	res, err := compiler.CompileSource("def f():\n    mystery()\n    return 0\n", compiler.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "mystery")
}

func TestCompileSourceParseErrorReturnsParseReport(t *testing.T) {
	_, err := compiler.CompileSource("def (:\n", compiler.DefaultOptions())
	require.Error(t, err)
}

func TestCompileSourceEmptyYieldsMemoryOnlyExport(t *testing.T) {
	res, err := compiler.CompileSource("", compiler.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"memory"}, decodeExportNames(t, res.Binary))
}

func TestGetSourceMetadataRendersSignatures(t *testing.T) {
	sigs, err := compiler.GetSourceMetadata("def add(a: int, b: int) -> int:\n    return a + b\n")
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, "add", sigs[0].Name)
	assert.Equal(t, []string{"a: int", "b: int"}, sigs[0].Parameters)
	assert.Equal(t, "int", sigs[0].ReturnType)
}

func TestCompileProjectCrossModuleCall(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.py"),
		[]byte("def inc(x: int) -> int:\n    return x + 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"),
		[]byte("from lib import inc\n\ndef m(n: int) -> int:\n    return inc(n) * 2\n"), 0o644))

	res, err := compiler.CompileProject(dir, compiler.DefaultOptions())
	require.NoError(t, err)
	names := decodeExportNames(t, res.Binary)
	assert.Contains(t, names, "inc")
	assert.Contains(t, names, "m")
}

func TestCompileProjectNoSourceFilesIsDriverError(t *testing.T) {
	dir := t.TempDir()
	_, err := compiler.CompileProject(dir, compiler.DefaultOptions())
	require.Error(t, err)
}

func TestCompileSourceEntryPointOverrideCallsGivenName(t *testing.T) {
	src := "def real_main() -> int:\n    return 0\n\nif __name__ == \"__main__\":\n    real_main()\n"
	opts := compiler.DefaultOptions()
	opts.EntryPoint = "real_main"
	res, err := compiler.CompileSource(src, opts)
	require.NoError(t, err)
	assert.Contains(t, decodeExportNames(t, res.Binary), "main")
}
