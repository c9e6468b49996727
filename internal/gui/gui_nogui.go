//go:build nogui
// +build nogui

package gui

import (
	"fmt"
)

// Create fails in builds with the GUI disabled
func (f *Factory) Create() (Interface, error) {
	return nil, fmt.Errorf("GUI not available in this build, use 'imgview tui'")
}

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return false
}
