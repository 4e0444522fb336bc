package vapid

import (
	"bytes"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []byte
	}{
		{name: "unpadded", input: "SGVsbG8", want: []byte("Hello")},
		{name: "already padded", input: "SGVsbG8=", want: []byte("Hello")},
		{name: "url alphabet", input: "-_-_", want: []byte{0xfb, 0xff, 0xbf}},
		{name: "empty", input: "", want: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			if err != nil {
				t.Fatalf("Decode(%q): %v", tt.input, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Decode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeInvalid(t *testing.T) {
	for _, input := range []string{"a", "SGVsbG8x!", "%%%%"} {
		if _, err := Decode(input); err == nil {
			t.Errorf("Decode(%q): expected error", input)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	// Every byte sequence must survive encode-then-decode unchanged,
	// including lengths that require one or two padding characters.
	seq := make([]byte, 0, 64)
	for i := 0; i < 64; i++ {
		got, err := Decode(Encode(seq))
		if err != nil {
			t.Fatalf("len %d: %v", len(seq), err)
		}
		if !bytes.Equal(got, seq) {
			t.Fatalf("len %d: round trip mismatch: got %v, want %v", len(seq), got, seq)
		}
		seq = append(seq, byte(i*37))
	}
}
