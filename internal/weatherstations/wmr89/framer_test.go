package wmr89

import (
	"bytes"
	"testing"
)

func TestSplitPackets(t *testing.T) {
	tests := []struct {
		name     string
		buf      []byte
		expected [][]byte
	}{
		{
			name:     "leading trailing and adjacent delimiters",
			buf:      []byte("\xf2\xf2A\xf2\xf2B\xf2\xf2"),
			expected: [][]byte{[]byte("A"), []byte("B")},
		},
		{
			name:     "consecutive delimiters produce no empty fragment",
			buf:      []byte("\xf2\xf2\xf2\xf2A"),
			expected: [][]byte{[]byte("A")},
		},
		{
			name:     "delimiter-free buffer is a single fragment",
			buf:      []byte("ABC"),
			expected: [][]byte{[]byte("ABC")},
		},
		{
			name:     "empty buffer",
			buf:      nil,
			expected: nil,
		},
		{
			name:     "only delimiters",
			buf:      []byte("\xf2\xf2\xf2\xf2"),
			expected: nil,
		},
		{
			name: "multi-byte packets in stream order",
			buf:  []byte("\xf2\xf2\xb4\x09\x27\xe9\xf2\xf2\xb2\x0b\x00"),
			expected: [][]byte{
				{0xb4, 0x09, 0x27, 0xe9},
				{0xb2, 0x0b, 0x00},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitPackets(tt.buf)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d packets, got %d: %q", len(tt.expected), len(got), got)
			}
			for i := range got {
				if !bytes.Equal(got[i], tt.expected[i]) {
					t.Errorf("packet %d: expected %q, got %q", i, tt.expected[i], got[i])
				}
			}
		})
	}
}
