//go:build !nogui

package gui

// Create returns a new GUI instance
func (f *Factory) Create() (Interface, error) {
	return NewApp(nil, f.config, f.ctrl), nil
}

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return true
}
