package bias

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want Label
	}{
		{"Left", Left},
		{"left ", Left},
		{"  LEFT", Left},
		{"center", Center},
		{"Right", Right},
		{"rIGHT\t", Right},
		{"XYZ", Center},
		{"", Center},
		{"nan", Center},
		{"left wing", Center},
		{"ＲＩＧＨＴ", Right},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLabel(tt.in), "input %q", tt.in)
	}
}

func TestParseLabelReportsUnknown(t *testing.T) {
	l, ok := ParseLabel("right")
	assert.True(t, ok)
	assert.Equal(t, Right, l)

	l, ok = ParseLabel("moderate")
	assert.False(t, ok)
	assert.Equal(t, DefaultLabel, l)
}

func TestNormalizeLabelIsIdempotent(t *testing.T) {
	for _, in := range []string{"left", " Center ", "RIGHT", "junk", ""} {
		once := NormalizeLabel(in)
		twice := NormalizeLabel(once.String())
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestLabelOrderAndText(t *testing.T) {
	assert.Equal(t, []Label{Left, Center, Right}, Labels())
	assert.Equal(t, []string{"Left", "Center", "Right"}, LabelNames())
	assert.Equal(t, "Label(7)", Label(7).String())

	text, err := Right.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Right", string(text))
	_, err = Label(-1).MarshalText()
	assert.Error(t, err)

	var l Label
	require.NoError(t, l.UnmarshalText([]byte(" left")))
	assert.Equal(t, Left, l)
}
