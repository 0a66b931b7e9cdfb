//go:build nogui

package gui

import (
	"context"
	"fmt"

	"leafscan/internal/config"
	"leafscan/internal/errors"
	"leafscan/internal/intake"
	"leafscan/internal/upload"
)

// StartGUI is a stub implementation for builds with GUI disabled
func StartGUI(_ context.Context, _ *config.Config, _ upload.Predictor, _ *intake.Loader, _ string) error {
	fmt.Println("GUI is disabled in this build. Please use `leafscan tui` instead.")
	return errors.New("GUI not available in this build")
}

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return false
}
