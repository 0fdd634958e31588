package bias

import (
	"fmt"

	"yashubustudio/biaslab/internal/textutil"
)

// Label is one of the three political bias categories. The ordinal value is
// the display order used by every chart.
type Label int

const (
	Left Label = iota
	Center
	Right
)

// NumLabels is the size of the closed label set.
const NumLabels = 3

// DefaultLabel is assigned to anything that does not match a known label.
const DefaultLabel = Center

var labelNames = [NumLabels]string{"Left", "Center", "Right"}

// Labels returns the labels in display order.
func Labels() []Label {
	return []Label{Left, Center, Right}
}

// LabelNames returns the label names in display order.
func LabelNames() []string {
	out := make([]string, NumLabels)
	copy(out, labelNames[:])
	return out
}

func (l Label) String() string {
	if l < 0 || int(l) >= NumLabels {
		return fmt.Sprintf("Label(%d)", int(l))
	}
	return labelNames[l]
}

// MarshalText implements encoding.TextMarshaler.
func (l Label) MarshalText() ([]byte, error) {
	if l < 0 || int(l) >= NumLabels {
		return nil, fmt.Errorf("invalid bias label %d", int(l))
	}
	return []byte(labelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using NormalizeLabel.
func (l *Label) UnmarshalText(text []byte) error {
	*l = NormalizeLabel(string(text))
	return nil
}

// ParseLabel matches s against the label names after trimming and title
// casing. The boolean is false when s is not a known label.
func ParseLabel(s string) (Label, bool) {
	key := textutil.Title(textutil.Normalize(s))
	for i, name := range labelNames {
		if key == name {
			return Label(i), true
		}
	}
	return DefaultLabel, false
}

// NormalizeLabel maps free text onto the closed label set. Values are trimmed
// and title cased before matching; anything else, including the empty
// string, becomes DefaultLabel.
func NormalizeLabel(s string) Label {
	l, _ := ParseLabel(s)
	return l
}
