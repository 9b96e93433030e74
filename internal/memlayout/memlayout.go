// Package memlayout implements C6, the memory layout planner: it interns
// string literals encountered during lowering and assigns them byte
// offsets in linear memory starting at offset 0 (spec §4.5). It is the one
// mutable accumulator shared by reference during lowering (spec §5); its
// mutation discipline is append-only and idempotent on key, so once a
// string has an offset the offset never changes.
package memlayout

// Layout is an insertion-ordered string -> offset map.
type Layout struct {
	offsets map[string]int32
	order   []string
	cursor  int32
}

func New() *Layout {
	return &Layout{offsets: map[string]int32{}}
}

// Add interns s, returning its offset. Re-interning an already-present
// string is a no-op on the cursor and returns the original offset (spec
// §8 round-trip invariant).
func (l *Layout) Add(s string) int32 {
	if off, ok := l.offsets[s]; ok {
		return off
	}
	off := l.cursor
	l.offsets[s] = off
	l.order = append(l.order, s)
	l.cursor += int32(len(s)) + 1 // + NUL terminator
	return off
}

// Offset returns the offset of a previously-interned string.
func (l *Layout) Offset(s string) (int32, bool) {
	off, ok := l.offsets[s]
	return off, ok
}

// Len reports how many distinct strings have been interned.
func (l *Layout) Len() int { return len(l.order) }

// Segment concatenates every interned string in ascending-offset
// (= insertion) order with a single NUL byte after each one, forming the
// single active data segment the code generator writes at offset 0
// (spec §4.5).
func (l *Layout) Segment() []byte {
	var buf []byte
	for _, s := range l.order {
		buf = append(buf, s...)
		buf = append(buf, 0)
	}
	return buf
}
