package main

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// spinner reports row progress on an interactive terminal and does nothing
// otherwise.
type spinner struct {
	bar *progressbar.ProgressBar
}

func newSpinner(w io.Writer, description string) *spinner {
	if !isTerminal(w) {
		return &spinner{}
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("rows"),
		progressbar.OptionClearOnFinish(),
	)
	return &spinner{bar: bar}
}

func (s *spinner) set(n int) {
	if s.bar != nil {
		_ = s.bar.Set(n)
	}
}

func (s *spinner) finish() {
	if s.bar != nil {
		_ = s.bar.Finish()
	}
}
