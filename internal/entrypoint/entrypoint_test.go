package entrypoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/pywasmc/internal/entrypoint"
	"github.com/sunholo/pywasmc/internal/ir"
)

func TestDetectMainFileTakesPriority(t *testing.T) {
	src := "if __name__ == \"__main__\":\n    run()\n"
	assert.Equal(t, entrypoint.MainFile, entrypoint.Detect(src, "__main__.py"))
}

func TestDetectMainGuard(t *testing.T) {
	src := "def main():\n    pass\n\nif __name__ == '__main__':\n    main()\n"
	assert.Equal(t, entrypoint.MainGuard, entrypoint.Detect(src, "app.py"))
}

func TestDetectCliScript(t *testing.T) {
	src := "import argparse\np = argparse.ArgumentParser()\n"
	assert.Equal(t, entrypoint.CliScript, entrypoint.Detect(src, "cli.py"))
}

func TestDetectNone(t *testing.T) {
	src := "def helper():\n    return 1\n"
	assert.Equal(t, entrypoint.None, entrypoint.Detect(src, "lib.py"))
}

func TestSynthesizeSkipsExistingMain(t *testing.T) {
	mod := ir.NewModule()
	mod.Functions = append(mod.Functions, &ir.Function{Name: "main"})
	entrypoint.Synthesize(mod, entrypoint.MainGuard)
	require.Len(t, mod.Functions, 1)
	assert.Equal(t, "true", mod.Metadata["has_entry_point"])
}

func TestSynthesizeMainFileCallsThenReturnsZero(t *testing.T) {
	mod := ir.NewModule()
	entrypoint.Synthesize(mod, entrypoint.MainFile)
	require.Len(t, mod.Functions, 1)
	fn := mod.Functions[0]
	require.Len(t, fn.Body, 2)
	_, ok := fn.Body[0].(*ir.ExprStmt)
	require.True(t, ok)
	ret, ok := fn.Body[1].(*ir.ReturnStmt)
	require.True(t, ok)
	c := ret.Value.(*ir.ConstExpr)
	assert.Equal(t, int32(0), c.Value.Int)
	assert.Equal(t, "MainFile", mod.Metadata["entry_point_type"])
}

func TestSynthesizeMainGuardReturnsCallResult(t *testing.T) {
	mod := ir.NewModule()
	entrypoint.Synthesize(mod, entrypoint.MainGuard)
	fn := mod.Functions[0]
	require.Len(t, fn.Body, 1)
	ret := fn.Body[0].(*ir.ReturnStmt)
	call, ok := ret.Value.(*ir.FunctionCallExpr)
	require.True(t, ok)
	assert.Equal(t, "main", call.Name)
}
