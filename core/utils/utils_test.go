package utils_test

import (
	"testing"

	"itunes2storage/core/utils"

	"github.com/stretchr/testify/assert"
)

func TestIntOr(t *testing.T) {
	assert.Equal(t, 3, utils.IntOr(3, 1))
	assert.Equal(t, 1, utils.IntOr(0, 1))
	assert.Equal(t, 1, utils.IntOr(-2, 1))
}

func TestMillisToSeconds(t *testing.T) {
	tests := []struct {
		ms   int64
		want int
	}{
		{0, 0},
		{-5, 0},
		{1, 1},
		{999, 1},
		{1000, 1},
		{1001, 2},
		{215000, 215},
		{215001, 216},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, utils.MillisToSeconds(tt.ms), "ms=%d", tt.ms)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Plain", "Road Trip", "Road Trip"},
		{"Separators", "Rock/Pop\\Mix", "Rock_Pop_Mix"},
		{"Reserved", `a:b*c?d"e<f>g|h`, "a_b_c_d_e_f_g_h"},
		{"Trimmed", "  .hidden. ", "hidden"},
		{"Unicode", "Café 日本", "Café 日本"},
		{"Empty", "", "_"},
		{"OnlyDots", "...", "_"},
		{"Control", "a\tb", "a_b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := utils.SanitizeFileName(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, utils.SanitizeFileName(tt.in))
		})
	}
}
