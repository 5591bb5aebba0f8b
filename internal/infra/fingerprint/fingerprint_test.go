package fingerprint

import (
	"testing"

	"authstamp/internal/domain"
)

func TestHashKnownVector(t *testing.T) {
	h := New()
	got := h.Hash([]byte("hello docs"))
	want := domain.Fingerprint("a2ccdc484466b1cac56411433c02b1c2a58b103cc8884904af4e4d3797f3e018")
	if got != want {
		t.Fatalf("Hash(hello docs) = %s, want %s", got, want)
	}
	if len(got) != 64 {
		t.Fatalf("fingerprint length = %d, want 64", len(got))
	}
}

func TestHashDeterministic(t *testing.T) {
	h := New()
	inputs := [][]byte{nil, {}, []byte("a"), []byte("hello docs"), make([]byte, 1<<16)}
	for _, in := range inputs {
		first := h.Hash(in)
		second := h.Hash(in)
		if first != second {
			t.Fatalf("hash of %d bytes not deterministic: %s vs %s", len(in), first, second)
		}
		if !Valid(first) {
			t.Fatalf("hash of %d bytes is not a valid fingerprint: %s", len(in), first)
		}
	}
}

func TestHashEmptyInput(t *testing.T) {
	h := New()
	// SHA-256 of the empty string.
	want := domain.Fingerprint("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855")
	if got := h.Hash(nil); got != want {
		t.Fatalf("Hash(nil) = %s, want %s", got, want)
	}
	if got := h.Hash([]byte{}); got != want {
		t.Fatalf("Hash(empty) = %s, want %s", got, want)
	}
}

func TestHashDistinguishesContent(t *testing.T) {
	h := New()
	a := h.Hash([]byte("hello docs"))
	b := h.Hash([]byte("hello docs!"))
	if a == b {
		t.Fatal("distinct inputs produced identical fingerprints")
	}
	// Single-byte mutation must change the digest.
	doc := []byte("certified content")
	mutated := append([]byte(nil), doc...)
	mutated[0] ^= 0x01
	if h.Hash(doc) == h.Hash(mutated) {
		t.Fatal("single-byte mutation did not change the fingerprint")
	}
}

func TestValid(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"a2ccdc484466b1cac56411433c02b1c2a58b103cc8884904af4e4d3797f3e018", true},
		{"A2CCDC484466B1CAC56411433C02B1C2A58B103CC8884904AF4E4D3797F3E018", false},
		{"a2ccdc48", false},
		{"", false},
		{"zzccdc484466b1cac56411433c02b1c2a58b103cc8884904af4e4d3797f3e018", false},
	}
	for _, tc := range cases {
		if got := Valid(domain.Fingerprint(tc.in)); got != tc.want {
			t.Errorf("Valid(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
