package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"en_US", "en-us"},
		{"en-US", "en-us"},
		{"  fr ", "fr"},
		{"", ""},
		{"zh_Hant_TW", "zh-hant-tw"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeAll(t *testing.T) {
	got := NormalizeAll([]string{"en_US", "fr", "", "EN-us", "de", "fr"})
	assert.Equal(t, []string{"en-us", "fr", "de"}, got)
}

func TestParseTags_SkipsUnparseable(t *testing.T) {
	tags := ParseTags([]string{"en", "!!!", "fr-CA"})
	assert.Len(t, tags, 2)
}
