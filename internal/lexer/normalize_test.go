package lexer

import "testing"

func TestNormalizeStripsBOM(t *testing.T) {
	src := append([]byte{0xEF, 0xBB, 0xBF}, []byte("x = 1\n")...)
	got := Normalize(src)
	if string(got) != "x = 1\n" {
		t.Fatalf("BOM not stripped: %q", got)
	}
}

func TestNormalizeNFC(t *testing.T) {
	nfd := []byte("café") // e + combining acute accent
	nfc := Normalize(nfd)
	if string(nfc) != "café" {
		t.Fatalf("expected NFC form, got %q", nfc)
	}
}
