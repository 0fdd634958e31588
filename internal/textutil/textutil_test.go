package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"   ":             "",
		" left ":          "left",
		"a \t b\n c":      "a b c",
		"ＬＥＦＴ":            "LEFT",
		"Software  Engineer": "Software Engineer",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Left", Title("left"))
	assert.Equal(t, "Center", Title("CENTER"))
	assert.Equal(t, "Nan", Title("nan"))
}

func TestCleanCellStripsBOM(t *testing.T) {
	assert.Equal(t, "prompt", CleanCell("\ufeffprompt "))
}

func TestUniqueNormalized(t *testing.T) {
	got := UniqueNormalized([]string{"Left", " left", "", "Right", "RIGHT "})
	assert.Equal(t, []string{"Left", "Right"}, got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab…", Truncate("abcdef", 2))
}

func TestStripControl(t *testing.T) {
	assert.Equal(t, "a\tb\nc", StripControl("a\tb\x00\nc\x07"))
}
