package console

import (
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows progress during long builds. It does nothing unless output
// is styled.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a spinner showing message.
func NewSpinner(message string) *Spinner {
	s := &Spinner{}
	if Styled() {
		s.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.spinner.Suffix = " " + message
		_ = s.spinner.Color("cyan")
	}
	return s
}

// Start begins the animation.
func (s *Spinner) Start() {
	if s.spinner != nil {
		s.spinner.Start()
	}
}

// Stop ends the animation.
func (s *Spinner) Stop() {
	if s.spinner != nil {
		s.spinner.Stop()
	}
}

// UpdateMessage replaces the message shown next to the spinner.
func (s *Spinner) UpdateMessage(message string) {
	if s.spinner != nil {
		s.spinner.Lock()
		s.spinner.Suffix = " " + message
		s.spinner.Unlock()
	}
}

// IsEnabled reports whether the spinner animates.
func (s *Spinner) IsEnabled() bool {
	return s.spinner != nil
}
