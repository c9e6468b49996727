package common

import "imgview/internal/tui/styles"

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	Title() string
	Body() string
	InfoLine() string
	PageLine() string
	StatusLine() string
	ErrorLine() string
	HelpView() string
	Theme() styles.Theme
}
