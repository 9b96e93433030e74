package codegen

// ValType is a target-language value type: spec §4.7.1 maps every IR type
// to i32 except Float, which maps to f64.
type ValType byte

const (
	ValI32 ValType = 0x7f
	ValF64 ValType = 0x7c
)

// Section ids, written in the fixed order spec §4.7.1 mandates.
const (
	SecTypes     byte = 1
	SecFunctions byte = 3
	SecMemory    byte = 5
	SecExports   byte = 7
	SecData      byte = 11
	SecCode      byte = 10
)

// Opcodes for the per-function code stream. These are this compiler's own
// flat instruction encoding (spec §4.7 names no existing target ISA), not a
// borrowed bytecode - every mnemonic below except OpUnreachable is emitted
// by a codegen rule in spec §4.7.2/§4.7.3; OpUnreachable is defined but
// never emitted.
const (
	OpUnreachable byte = 0x00
	OpBlock       byte = 0x02
	OpLoop        byte = 0x03
	OpIf          byte = 0x04
	OpElse        byte = 0x05
	OpEnd         byte = 0x0b
	OpBr          byte = 0x0c
	OpBrIf        byte = 0x0d
	OpReturn      byte = 0x0f
	OpCall        byte = 0x10
	OpDrop        byte = 0x1a

	OpLocalGet byte = 0x20
	OpLocalSet byte = 0x21

	OpI32Const byte = 0x41

	OpI32Eqz  byte = 0x45
	OpI32Eq   byte = 0x46
	OpI32Ne   byte = 0x47
	OpI32LtS  byte = 0x48
	OpI32GtS  byte = 0x4a
	OpI32LeS  byte = 0x4c
	OpI32GeS  byte = 0x4e

	OpI32Add  byte = 0x6a
	OpI32Sub  byte = 0x6b
	OpI32Mul  byte = 0x6c
	OpI32DivS byte = 0x6d
	OpI32RemS byte = 0x6f
	OpI32And  byte = 0x71
	OpI32Or   byte = 0x72
	OpI32Xor  byte = 0x73

	// blockTypeVoid / blockTypeI32 are the one-byte block-type tags this
	// encoding uses on OpBlock/OpLoop/OpIf.
	blockTypeVoid byte = 0x40
	blockTypeI32  byte = 0x7f
)

// valTypeFor maps an IR type to its target value type (spec §4.7.1):
// Float -> f64, everything else (including pointers-as-int) -> i32.
func valTypeFor(k string) ValType {
	if k == "float" {
		return ValF64
	}
	return ValI32
}
