// Package codegen implements C7: it lowers an IR module into the flat
// binary stack-VM module format spec §4.7 defines. No repo in the example
// pack emits a format resembling this one, so the binary writer here is
// built from first principles - a single owned `bytes.Buffer` plus small
// put/get helpers, the same "one owned buffer, small encode helpers" idiom
// other_examples/a0e9cadd_tinyrange-rtg__std-compiler-pe32.go.go uses for
// its PE32 assembler (there: putU32/getU32 over a pre-sized []byte; here:
// encoding/binary-based LEB128 and fixed-width writers over a
// bytes.Buffer, justified in DESIGN.md as a stdlib component).
package codegen

import (
	"bytes"
	"encoding/binary"
)

// encoder is the single owned byte buffer every section writer appends to.
type encoder struct {
	buf bytes.Buffer
}

func newEncoder() *encoder { return &encoder{} }

func (e *encoder) Bytes() []byte { return e.buf.Bytes() }
func (e *encoder) Len() int      { return e.buf.Len() }

func (e *encoder) writeByte(b byte) { e.buf.WriteByte(b) }

func (e *encoder) writeBytes(b []byte) { e.buf.Write(b) }

// writeU32 writes a fixed-width little-endian uint32. Section and segment
// lengths are written as ULEB128, not with this helper.
func (e *encoder) writeU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	e.buf.Write(tmp[:])
}

// writeULEB writes an unsigned LEB128 integer (counts, indices, offsets).
func (e *encoder) writeULEB(v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		e.buf.WriteByte(b)
		if v == 0 {
			return
		}
	}
}

// writeSLEB writes a signed LEB128 integer (i32.const operands).
func (e *encoder) writeSLEB(v int64) {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		e.buf.WriteByte(b)
	}
}

// writeString writes a length-prefixed (ULEB) UTF-8 string, the format
// used for every export/function name in the module.
func (e *encoder) writeString(s string) {
	e.writeULEB(uint32(len(s)))
	e.buf.WriteString(s)
}

// writeSection writes a one-byte section id followed by a ULEB byte-length
// prefix and the section body, matching the fixed section framing every
// section in §4.7.1 shares.
func writeSection(out *encoder, id byte, body []byte) {
	out.writeByte(id)
	out.writeULEB(uint32(len(body)))
	out.writeBytes(body)
}
