package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/pywasmc/internal/codegen"
	"github.com/sunholo/pywasmc/internal/ir"
	"github.com/sunholo/pywasmc/internal/lower"
	"github.com/sunholo/pywasmc/internal/memlayout"
	"github.com/sunholo/pywasmc/internal/parser"
)

func mustLower(t *testing.T, src string) (*ir.Module, *memlayout.Layout) {
	t.Helper()
	p := parser.New("t.py", []byte(src))
	file := p.ParseFile()
	require.Empty(t, p.Errors())
	mem := memlayout.New()
	mod, _, err := lower.Lower(file, mem)
	require.NoError(t, err)
	return mod, mem
}

func TestGenerateSectionOrder(t *testing.T) {
	mod, mem := mustLower(t, "def add(a: int, b: int) -> int:\n    return a + b\n")
	bin, warnings, err := codegen.Generate(mod, mem, codegen.Options{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.NotEmpty(t, bin)

	var sectionIDs []byte
	i := 0
	for i < len(bin) {
		id := bin[i]
		sectionIDs = append(sectionIDs, id)
		i++
		length, n := decodeULEB(bin[i:])
		i += n + int(length)
	}
	assert.Equal(t, []byte{
		codegen.SecTypes, codegen.SecFunctions, codegen.SecMemory,
		codegen.SecExports, codegen.SecData, codegen.SecCode,
	}, sectionIDs)
}

func TestGenerateUnknownCalleeWarns(t *testing.T) {
	mod, mem := mustLower(t, "def f():\n    mystery()\n    return 0\n")
	_, warnings, err := codegen.Generate(mod, mem, codegen.Options{})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "mystery")
}

func TestGenerateStringInterningProducesDataSegment(t *testing.T) {
	mod, mem := mustLower(t, "greeting = \"hi\"\n")
	bin, _, err := codegen.Generate(mod, mem, codegen.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, bin)
	assert.Equal(t, "hi\x00", string(mem.Segment()))
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

func decodeSLEB(b []byte) (int64, int) {
	var result int64
	var shift uint
	i := 0
	for {
		v := b[i]
		result |= int64(v&0x7f) << shift
		shift += 7
		i++
		if v&0x80 == 0 {
			if shift < 64 && v&0x40 != 0 {
				result |= -1 << shift
			}
			break
		}
	}
	return result, i
}

// singleFunctionBody decodes a one-function module's code section and
// returns that function's raw body bytes (locals declaration, instructions,
// the trailing OpEnd).
func singleFunctionBody(t *testing.T, bin []byte) []byte {
	t.Helper()
	i := 0
	for i < len(bin) {
		id := bin[i]
		i++
		length, n := decodeULEB(bin[i:])
		i += n
		if id == codegen.SecCode {
			body := bin[i : i+int(length)]
			count, n := decodeULEB(body)
			require.Equal(t, uint32(1), count)
			bodySize, n2 := decodeULEB(body[n:])
			start := n + n2
			return body[start : start+int(bodySize)]
		}
		i += int(length)
	}
	t.Fatal("code section not found")
	return nil
}

// localGroups decodes a function body's locals declaration (group count,
// then count+type per group) and returns each group's (count, valtype).
func localGroups(body []byte) (groups [][2]uint32, rest []byte) {
	i := 0
	groupCount, n := decodeULEB(body)
	i += n
	for g := uint32(0); g < groupCount; g++ {
		count, n := decodeULEB(body[i:])
		i += n
		vt := body[i]
		i++
		groups = append(groups, [2]uint32{count, uint32(vt)})
	}
	return groups, body[i:]
}

func TestGenerateFloatLocalGroupedWithScratchSlots(t *testing.T) {
	mod, mem := mustLower(t, "def f() -> float:\n    x: float = 1.0\n    return x\n")
	bin, warnings, err := codegen.Generate(mod, mem, codegen.Options{})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	body := singleFunctionBody(t, bin)
	groups, instrs := localGroups(body)
	require.Len(t, groups, 2)
	assert.Equal(t, [2]uint32{4, uint32(codegen.ValI32)}, groups[0])
	assert.Equal(t, [2]uint32{1, uint32(codegen.ValF64)}, groups[1])

	// x's slot index follows the i32 group (4 scratch slots), so slot 4.
	// Assign(x, 1.0): i32.const 1 (truncated), f64.convert_i32_s, local.set 4.
	require.GreaterOrEqual(t, len(instrs), 5)
	assert.Equal(t, codegen.OpI32Const, instrs[0])
	v, n := decodeSLEB(instrs[1:])
	assert.Equal(t, int64(1), v)
	i := 1 + n
	assert.Equal(t, byte(0xb7), instrs[i]) // f64.convert_i32_s
	i++
	assert.Equal(t, codegen.OpLocalSet, instrs[i])
	i++
	slot, n := decodeULEB(instrs[i:])
	assert.Equal(t, uint32(4), slot)
}

func TestGenerateFloatReturnCoercesBareIntLiteral(t *testing.T) {
	mod, mem := mustLower(t, "def h() -> float:\n    return 1\n")
	bin, _, err := codegen.Generate(mod, mem, codegen.Options{})
	require.NoError(t, err)

	body := singleFunctionBody(t, bin)
	_, instrs := localGroups(body)
	require.GreaterOrEqual(t, len(instrs), 4)
	assert.Equal(t, codegen.OpI32Const, instrs[0])
	_, n := decodeSLEB(instrs[1:])
	i := 1 + n
	assert.Equal(t, byte(0xb7), instrs[i]) // f64.convert_i32_s before return
	i++
	assert.Equal(t, codegen.OpReturn, instrs[i])
}

func TestGenerateFloatArithmeticUsesI32OpsWithTruncatedOperand(t *testing.T) {
	mod, mem := mustLower(t, "def g(x: float) -> float:\n    return x * 2.0\n")
	bin, _, err := codegen.Generate(mod, mem, codegen.Options{})
	require.NoError(t, err)

	body := singleFunctionBody(t, bin)
	_, instrs := localGroups(body)
	// local.get 0 (param x, f64), i32.trunc_f64_s, i32.const 2, i32.mul,
	// f64.convert_i32_s (return coercion), return.
	require.GreaterOrEqual(t, len(instrs), 8)
	assert.Equal(t, codegen.OpLocalGet, instrs[0])
	slot, n := decodeULEB(instrs[1:])
	assert.Equal(t, uint32(0), slot)
	i := 1 + n
	assert.Equal(t, byte(0xaa), instrs[i]) // i32.trunc_f64_s
	i++
	assert.Equal(t, codegen.OpI32Const, instrs[i])
	i++
	v, n := decodeSLEB(instrs[i:])
	assert.Equal(t, int64(2), v)
	i += n
	assert.Equal(t, codegen.OpI32Mul, instrs[i])
	i++
	assert.Equal(t, byte(0xb7), instrs[i]) // f64.convert_i32_s
	i++
	assert.Equal(t, codegen.OpReturn, instrs[i])
}
