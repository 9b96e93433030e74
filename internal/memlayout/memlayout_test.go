package memlayout

import "testing"

func TestAddIsIdempotent(t *testing.T) {
	l := New()
	a := l.Add("hello")
	b := l.Add("hello")
	if a != b {
		t.Fatalf("re-interning changed offset: %d != %d", a, b)
	}
	if l.Len() != 1 {
		t.Fatalf("want 1 entry, got %d", l.Len())
	}
}

func TestOffsetsMonotonic(t *testing.T) {
	l := New()
	a := l.Add("ab")
	b := l.Add("cde")
	if a != 0 {
		t.Fatalf("first offset should be 0, got %d", a)
	}
	if b != a+int32(len("ab"))+1 {
		t.Fatalf("second offset should follow len+NUL, got %d", b)
	}
}

func TestSegmentRoundTrips(t *testing.T) {
	l := New()
	l.Add("foo")
	l.Add("bar")
	seg := l.Segment()
	off1, _ := l.Offset("foo")
	off2, _ := l.Offset("bar")
	if string(seg[off1:off1+3]) != "foo" || seg[off1+3] != 0 {
		t.Errorf("foo not found at recorded offset")
	}
	if string(seg[off2:off2+3]) != "bar" || seg[off2+3] != 0 {
		t.Errorf("bar not found at recorded offset")
	}
}
