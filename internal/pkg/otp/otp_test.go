package otp

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	g := NewGenerator()

	tests := []struct {
		name   string
		length int
		want   int
	}{
		{name: "Default", length: 6, want: 6},
		{name: "Eight", length: 8, want: 8},
		{name: "One", length: 1, want: 1},
		{name: "ZeroFallsBack", length: 0, want: DefaultLength},
		{name: "NegativeFallsBack", length: -3, want: DefaultLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 200 {
				code, err := g.Generate(tt.length)
				require.NoError(t, err)
				assert.Len(t, code, tt.want)
				for _, c := range code {
					assert.True(t, c >= '0' && c <= '9', "non-digit %q in %q", c, code)
				}
			}
		})
	}
}

func TestGenerator_Generate_KeepsLeadingZeros(t *testing.T) {
	g := &Generator{rand: bytes.NewReader([]byte{0, 10, 20, 3, 4, 5})}

	code, err := g.Generate(6)
	require.NoError(t, err)
	assert.Equal(t, "000345", code)
}

func TestGenerator_Generate_RejectsBiasedBytes(t *testing.T) {
	g := &Generator{rand: bytes.NewReader([]byte{255, 250, 1, 2, 251, 3, 9, 9})}

	code, err := g.Generate(3)
	require.NoError(t, err)
	assert.Equal(t, "123", code)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGenerator_Generate_ReaderError(t *testing.T) {
	g := &Generator{rand: failingReader{}}

	code, err := g.Generate(6)
	assert.Error(t, err)
	assert.Empty(t, code)
}

func TestGenerator_Generate_Distribution(t *testing.T) {
	g := NewGenerator()

	counts := make(map[rune]int, 10)
	for range 2000 {
		code, err := g.Generate(6)
		require.NoError(t, err)
		for _, c := range code {
			counts[c]++
		}
	}

	// 12000 digits, expected 1200 each; bounds are far outside normal variance.
	assert.Len(t, counts, 10)
	for d, n := range counts {
		assert.Greater(t, n, 900, "digit %q underrepresented", d)
		assert.Less(t, n, 1500, "digit %q overrepresented", d)
	}
}

func TestGenerator_DigestEqual(t *testing.T) {
	g := NewGenerator()

	digest := g.Digest("123456")
	assert.Len(t, digest, 64)
	assert.Equal(t, "8d969eef6ecad3c29a3a629280e686cf0c3f5d5a86aff3ca12020c923adc6c92", digest)
	assert.NotContains(t, digest, "123456")

	assert.True(t, g.Equal(digest, "123456"))
	assert.False(t, g.Equal(digest, "123457"))
	assert.False(t, g.Equal(digest, ""))
	assert.False(t, g.Equal("", "123456"))
}
