//go:build !nogui

package gui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"leafscan/internal/config"
	"leafscan/internal/errors"
	"leafscan/internal/predict"
	"leafscan/pkg/types"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

type healthChecker interface {
	Health(ctx context.Context) (*types.HealthReport, error)
}

// createSettingsTab creates the settings tab
func (a *App) createSettingsTab() fyne.CanvasObject {
	// --- Endpoint ---
	endpointEntry := widget.NewEntry()
	endpointEntry.SetPlaceHolder("http://localhost:5000")
	endpointEntry.SetText(a.cfg.Endpoint.BaseURL)

	timeoutEntry := widget.NewEntry()
	timeoutEntry.SetText(strconv.Itoa(a.cfg.Endpoint.Timeout))

	animateCheck := widget.NewCheck("Animate results", nil)
	animateCheck.SetChecked(!a.cfg.Animation.DisableAnimations)

	form := widget.NewForm(
		widget.NewFormItem("Prediction service", endpointEntry),
		widget.NewFormItem("Timeout (seconds)", timeoutEntry),
		widget.NewFormItem("", animateCheck),
	)

	healthLabel := widget.NewLabel("")
	healthLabel.Wrapping = fyne.TextWrapWord

	checkButton := widget.NewButtonWithIcon("Check connection", theme.ViewRefreshIcon(), func() {
		healthLabel.SetText("Checking...")
		go func() {
			healthLabel.SetText(a.checkHealth())
		}()
	})

	saveButton := widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() {
		if err := a.applySettings(endpointEntry.Text, timeoutEntry.Text, animateCheck.Checked); err != nil {
			a.ShowError("Invalid settings", err)
			return
		}
		if a.configPath != "" {
			a.ShowInfo("Settings saved to " + a.configPath)
		}
	})
	saveButton.Importance = widget.HighImportance

	pathLabel := widget.NewLabelWithStyle("Config file: "+a.configPath, fyne.TextAlignLeading, fyne.TextStyle{Italic: true})

	return container.NewVBox(
		widget.NewCard("Connection", "", form),
		container.NewHBox(checkButton, saveButton),
		healthLabel,
		pathLabel,
	)
}

// applySettings validates and saves the edited settings, then swaps in a
// client for the new endpoint.
func (a *App) applySettings(endpoint, timeout string, animate bool) error {
	secs, err := strconv.Atoi(strings.TrimSpace(timeout))
	if err != nil {
		return errors.NewConfigError("timeout must be a whole number of seconds", "endpoint.timeout", errors.InvalidConfig, err)
	}

	next := *a.cfg
	next.Endpoint.BaseURL = strings.TrimSpace(endpoint)
	next.Endpoint.Timeout = secs
	next.Animation.DisableAnimations = !animate
	if err := next.Validate(); err != nil {
		return errors.NewConfigError("invalid configuration", "", errors.InvalidConfig, err)
	}
	if a.configPath != "" {
		if err := config.SaveConfig(&next, a.configPath); err != nil {
			return errors.NewFileError("could not save settings", a.configPath, errors.FileAccessDenied, err)
		}
	}

	a.mu.Lock()
	*a.cfg = next
	a.timing = next.Timing()
	a.mu.Unlock()

	a.actions.Lock()
	if _, ok := a.predictor.(*predict.Client); ok {
		a.predictor = predict.FromConfig(&next)
	}
	a.actions.Unlock()
	return nil
}

// checkHealth queries the prediction service and describes the answer
func (a *App) checkHealth() string {
	a.actions.Lock()
	p := a.predictor
	a.actions.Unlock()

	hc, ok := p.(healthChecker)
	if !ok {
		return "Health check is not supported by this predictor"
	}

	a.mu.Lock()
	timeout := a.cfg.Timeout()
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(a.ctx, timeout)
	defer cancel()
	rep, err := hc.Health(ctx)
	if err != nil {
		return "✗ " + err.Error()
	}
	return fmt.Sprintf("✓ %s · model loaded: %t · %d classes", rep.Status, rep.ModelLoaded, rep.TotalClasses)
}
