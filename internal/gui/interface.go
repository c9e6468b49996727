package gui

import (
	"imgview/internal/config"
	"imgview/internal/controller"
)

// Interface defines the contract for GUI operations
type Interface interface {
	Run()
	ShowError(title string, err error)
	ShowInfo(message string)
}

// Factory creates GUI instances
type Factory struct {
	config *config.Config
	ctrl   *controller.Controller
}

// NewFactory creates a new GUI factory
func NewFactory(cfg *config.Config, ctrl *controller.Controller) *Factory {
	return &Factory{
		config: cfg,
		ctrl:   ctrl,
	}
}
