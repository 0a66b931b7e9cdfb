//go:build !nogui

package gui

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"leafscan/internal/config"
	"leafscan/internal/intake"
	"leafscan/internal/log"
	"leafscan/internal/notify"
	"leafscan/internal/render"
	"leafscan/internal/upload"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// App is the GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	ctx        context.Context
	cfg        *config.Config
	configPath string
	machine    *upload.Machine
	center     *notify.Center
	predictor  upload.Predictor
	loader     *intake.Loader
	timing     render.Timing
	copyText   func(string)

	// actions serializes machine transitions coming from fyne callbacks,
	// timers and the request goroutine
	actions sync.Mutex
	// mu guards the widgets' view state below
	mu sync.Mutex

	dropZone    *fyne.Container
	previewBox  *fyne.Container
	previewImg  *fyne.Container
	previewInfo *widget.Label
	loadingBox  *fyne.Container
	loadingBar  *widget.ProgressBarInfinite
	loadingText *widget.Label
	resultsBox  *fyne.Container
	card        *resultCard
	statusLabel *widget.Label

	animSeq    int
	timeline   render.Timeline
	display    *render.Display
	result     *render.ResultView
	animTimer  *time.Timer
	toastTimer *time.Timer
}

// Option configures an App
type Option func(*App)

// WithFyneApp replaces the fyne application, used by tests with test.NewApp
func WithFyneApp(fa fyne.App) Option {
	return func(a *App) {
		a.fyneApp = fa
	}
}

// WithContext sets the parent context of analysis requests
func WithContext(ctx context.Context) Option {
	return func(a *App) {
		a.ctx = ctx
	}
}

// WithCenter replaces the notification center
func WithCenter(c *notify.Center) Option {
	return func(a *App) {
		a.center = c
	}
}

// WithClipboard replaces the clipboard writer
func WithClipboard(write func(string)) Option {
	return func(a *App) {
		a.copyText = write
	}
}

// WithConfigPath sets where the settings tab saves the configuration
func WithConfigPath(path string) Option {
	return func(a *App) {
		a.configPath = path
	}
}

// NewApp creates a new GUI application
func NewApp(cfg *config.Config, predictor upload.Predictor, loader *intake.Loader, opts ...Option) *App {
	a := &App{
		ctx:       context.Background(),
		cfg:       cfg,
		predictor: predictor,
		loader:    loader,
		timing:    cfg.Timing(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.fyneApp == nil {
		a.fyneApp = app.NewWithID("io.github.leafscan")
	}
	if a.center == nil {
		a.center = notify.NewCenter(notify.WithTTL(cfg.NotificationTTL()))
	}
	if a.configPath == "" {
		if p, err := config.DefaultPath(); err == nil {
			a.configPath = p
		}
	}

	a.machine = upload.New(a.center, upload.WithLogger(log.Default().With(log.F("ui", "gui"))))
	a.machine.Subscribe(a.onSnapshot)
	a.center.Subscribe(a.onNotification)

	a.mainWindow = a.fyneApp.NewWindow("leafscan")
	if a.copyText == nil {
		a.copyText = func(text string) {
			a.mainWindow.Clipboard().SetContent(text)
		}
	}
	if icon := loadIcon(); icon != nil {
		a.fyneApp.SetIcon(icon)
		a.mainWindow.SetIcon(icon)
	}

	a.setupMainWindow()
	a.setupSystemTray()
	return a
}

// loadIcon looks for the window icon next to the binary or in the source tree
func loadIcon() fyne.Resource {
	candidates := []string{"leafscan.png", filepath.Join("internal", "gui", "leafscan.png")}
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		res, err := fyne.LoadResourceFromPath(p)
		if err != nil {
			log.Warnf("Could not load app icon from %s: %v", p, err)
			continue
		}
		return res
	}
	return nil
}

// GetMainWindow returns the main window instance
func (a *App) GetMainWindow() fyne.Window {
	return a.mainWindow
}

// Machine returns the upload state machine driving the window
func (a *App) Machine() *upload.Machine {
	return a.machine
}

// setupSystemTray adds a tray menu on desktop drivers
func (a *App) setupSystemTray() {
	deskApp, ok := a.fyneApp.(desktop.App)
	if !ok {
		return
	}
	deskApp.SetSystemTrayMenu(fyne.NewMenu("leafscan",
		fyne.NewMenuItem("Show leafscan", func() {
			a.mainWindow.Show()
		}),
		fyne.NewMenuItem("Choose image...", func() {
			a.mainWindow.Show()
			a.showFileDialog()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Remove image", a.Remove),
	))
}

// Run shows the window and blocks until the application quits
func (a *App) Run() {
	a.mainWindow.Show()
	a.fyneApp.Run()
}

// setupMainWindow builds the widget tree and wires drop, keyboard and close handling
func (a *App) setupMainWindow() {
	title := canvas.NewText("leafscan", theme.PrimaryColor())
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.TextSize = 24
	title.Alignment = fyne.TextAlignCenter

	subtitle := widget.NewLabelWithStyle("Plant disease detection", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), a.showFileDialog),
		widget.NewToolbarAction(theme.DeleteIcon(), a.Remove),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.HelpIcon(), func() {
			dialog.ShowInformation("About leafscan",
				"Drop a photo of a leaf onto the window or choose one,\n"+
					"then press Enter to analyze it. Escape removes the image.",
				a.mainWindow)
		}),
	)

	tabs := container.NewAppTabs(
		container.NewTabItemWithIcon("Analyze", theme.SearchIcon(), a.createAnalyzeTab()),
		container.NewTabItemWithIcon("Settings", theme.SettingsIcon(), a.createSettingsTab()),
	)
	tabs.SetTabLocation(container.TabLocationTop)

	a.statusLabel = widget.NewLabel("")
	a.statusLabel.Wrapping = fyne.TextWrapWord

	content := container.NewBorder(
		container.NewVBox(title, subtitle, toolbar, widget.NewSeparator()),
		container.NewHBox(a.statusLabel, layout.NewSpacer()),
		nil,
		nil,
		tabs,
	)

	a.mainWindow.SetContent(content)
	a.mainWindow.Resize(fyne.NewSize(720, 640))
	a.mainWindow.SetOnDropped(a.onDropped)
	a.mainWindow.Canvas().SetOnTypedKey(a.typedKey)
	a.mainWindow.SetOnClosed(func() {
		a.actions.Lock()
		defer a.actions.Unlock()
		a.machine.Reset()
	})

	a.render(render.Render(a.machine.Snapshot()))
}

// createAnalyzeTab lays out the four phase regions; exactly one is visible
func (a *App) createAnalyzeTab() fyne.CanvasObject {
	chooseButton := widget.NewButtonWithIcon("Choose image", theme.FolderOpenIcon(), a.showFileDialog)
	chooseButton.Importance = widget.HighImportance

	a.dropZone = container.NewCenter(container.NewVBox(
		widget.NewLabelWithStyle("🌿 Drop a leaf image here", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("JPG, PNG or GIF up to 10MB", fyne.TextAlignCenter, fyne.TextStyle{}),
		chooseButton,
	))

	a.previewImg = container.NewStack()
	a.previewInfo = widget.NewLabel("")
	a.previewInfo.Wrapping = fyne.TextWrapWord
	analyzeButton := widget.NewButtonWithIcon("Analyze with AI", theme.SearchIcon(), a.Analyze)
	analyzeButton.Importance = widget.HighImportance
	a.previewBox = container.NewBorder(
		nil,
		container.NewVBox(a.previewInfo, container.NewHBox(
			layout.NewSpacer(),
			widget.NewButtonWithIcon("Remove", theme.DeleteIcon(), a.Remove),
			analyzeButton,
		)),
		nil, nil,
		a.previewImg,
	)

	a.loadingBar = widget.NewProgressBarInfinite()
	a.loadingText = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{})
	a.loadingBox = container.NewCenter(container.NewVBox(a.loadingText, a.loadingBar))

	a.card = newResultCard()
	a.resultsBox = container.NewBorder(
		nil,
		container.NewHBox(
			layout.NewSpacer(),
			widget.NewButtonWithIcon("Copy result", theme.ContentCopyIcon(), a.CopyResult),
			widget.NewButtonWithIcon("Analyze another", theme.ContentClearIcon(), a.Remove),
		),
		nil, nil,
		container.NewVScroll(a.card.Content()),
	)

	return container.NewStack(a.dropZone, a.previewBox, a.loadingBox, a.resultsBox)
}
