//go:build !nogui

package gui

import (
	"context"

	"leafscan/internal/config"
	"leafscan/internal/errors"
	"leafscan/internal/intake"
	"leafscan/internal/upload"
)

// Interface defines the contract for GUI operations
type Interface interface {
	Run()
	Quit()
	ShowError(title string, err error)
	ShowInfo(message string)
}

// Factory creates GUI instances
type Factory struct {
	config    *config.Config
	predictor upload.Predictor
	loader    *intake.Loader
}

// NewFactory creates a new GUI factory
func NewFactory(cfg *config.Config, predictor upload.Predictor, loader *intake.Loader) *Factory {
	return &Factory{
		config:    cfg,
		predictor: predictor,
		loader:    loader,
	}
}

// Create returns a new GUI instance
func (f *Factory) Create(opts ...Option) (Interface, error) {
	if f.config == nil || f.predictor == nil || f.loader == nil {
		return nil, errors.New("gui needs a config, a predictor and a loader")
	}
	return NewApp(f.config, f.predictor, f.loader, opts...), nil
}

// Quit stops the fyne event loop
func (a *App) Quit() {
	a.fyneApp.Quit()
}

// StartGUI opens the window and blocks until it is closed or ctx is done
func StartGUI(ctx context.Context, cfg *config.Config, predictor upload.Predictor, loader *intake.Loader, configPath string) error {
	ui, err := NewFactory(cfg, predictor, loader).Create(WithContext(ctx), WithConfigPath(configPath))
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, ui.Quit)
	defer stop()
	ui.Run()
	return nil
}

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return true
}
