package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText_Len(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"ascii", "abc", 3},
		{"multibyte", "日本␣語", 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewText(tc.in).Len())
		})
	}
}

func TestText_Slice(t *testing.T) {
	text := NewText("日本␣語x")

	tests := []struct {
		name   string
		lo, hi int
		want   string
	}{
		{"inner", 1, 3, "本␣"},
		{"whole", 0, 5, "日本␣語x"},
		{"clamp start", -3, 2, "日本"},
		{"clamp end", 3, 9, "語x"},
		{"clamp both", -1, 99, "日本␣語x"},
		{"empty range", 2, 2, ""},
		{"inverted range", 4, 1, ""},
		{"entirely before start", -5, -1, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, text.Slice(tc.lo, tc.hi))
		})
	}
}

func TestText_At(t *testing.T) {
	text := NewText("a␣é")

	assert.Equal(t, 'a', text.At(0))
	assert.Equal(t, DefaultMarker, text.At(1))
	assert.Equal(t, 'é', text.At(2))
}

func TestText_ByteOffset(t *testing.T) {
	text := NewText("a␣b")

	assert.Equal(t, 0, text.ByteOffset(-1))
	assert.Equal(t, 1, text.ByteOffset(1))
	assert.Equal(t, 4, text.ByteOffset(2))
	assert.Equal(t, 5, text.ByteOffset(10))
}
