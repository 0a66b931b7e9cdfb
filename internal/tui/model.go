// Package tui is the interactive terminal front-end. Dropping a file onto
// the terminal pastes its path, which the drop zone turns into an upload.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"leafscan/internal/config"
	"leafscan/internal/errors"
	"leafscan/internal/intake"
	"leafscan/internal/log"
	"leafscan/internal/notify"
	"leafscan/internal/render"
	"leafscan/internal/tui/components"
	"leafscan/internal/tui/messages"
	"leafscan/internal/tui/styles"
	"leafscan/internal/tui/views"
	"leafscan/internal/upload"
	"leafscan/pkg/types"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Clipboard notification texts
const (
	MsgCopied     = "✓ Copied to clipboard!"
	MsgCopyFailed = "❌ Failed to copy"
)

// Model is the bubbletea model of the terminal UI
type Model struct {
	ctx       context.Context
	cfg       *config.Config
	machine   *upload.Machine
	center    *notify.Center
	predictor upload.Predictor
	loader    *intake.Loader
	keys      types.KeyMap
	styles    styles.Styles
	timing    render.Timing
	copyText  func(string) error

	input     textinput.Model
	picker    filepicker.Model
	help      help.Model
	progress  progress.Model
	statusBar *components.StatusBar
	panel     *components.ResultPanel

	picking   bool
	showHelp  bool
	thumbnail string
	width     int

	// result animation
	animSeq  int
	timeline render.Timeline
	display  *render.Display
	result   *render.ResultView

	scheduledToast uint64
}

// Option configures a Model
type Option func(*Model)

// WithContext sets the parent context of analysis requests
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		m.ctx = ctx
	}
}

// WithClipboard replaces the system clipboard writer
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		m.copyText = write
	}
}

// WithCenter replaces the notification center
func WithCenter(c *notify.Center) Option {
	return func(m *Model) {
		m.center = c
	}
}

// New creates the terminal UI model.
func New(cfg *config.Config, predictor upload.Predictor, loader *intake.Loader, opts ...Option) *Model {
	s := styles.New(cfg)

	input := textinput.New()
	input.Placeholder = "/path/to/leaf.jpg"
	input.Prompt = "› "
	input.Focus()

	picker := filepicker.New()
	picker.AllowedTypes = allowedExtensions()
	picker.Styles = pickerStyles(s)
	picker.AutoHeight = false
	picker.Height = 12
	if wd, err := os.Getwd(); err == nil {
		picker.CurrentDirectory = wd
	}

	m := &Model{
		ctx:       context.Background(),
		cfg:       cfg,
		predictor: predictor,
		loader:    loader,
		keys:      types.DefaultKeyMap(),
		styles:    s,
		timing:    cfg.Timing(),
		copyText:  clipboard.WriteAll,
		input:     input,
		picker:    picker,
		help:      help.New(),
		progress:  progress.New(progress.WithoutPercentage()),
		statusBar: components.NewStatusBar(s),
		panel:     components.NewResultPanel(s),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.center == nil {
		m.center = notify.NewCenter(notify.WithTTL(cfg.NotificationTTL()))
	}
	m.machine = upload.New(m.center, upload.WithLogger(log.LogWithFields(log.F("component", "tui"))))
	return m
}

func allowedExtensions() []string {
	lower := []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".tif", ".tiff"}
	exts := make([]string, 0, 2*len(lower))
	for _, e := range lower {
		exts = append(exts, e, strings.ToUpper(e))
	}
	return exts
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Machine exposes the upload machine
func (m *Model) Machine() *upload.Machine {
	return m.machine
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-12, 20)
		m.progress.Width = max(min(msg.Width-30, 60), 10)
		m.panel.SetSize(msg.Width-8, msg.Height-10)
		m.help.Width = msg.Width
		m.refreshPanel()

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case messages.FileLoadedMsg:
		cmds = append(cmds, m.handleFileLoaded(msg))

	case messages.PredictionMsg:
		cmds = append(cmds, m.handlePrediction(msg))

	case messages.AnimationStepMsg:
		cmds = append(cmds, m.handleAnimationStep(msg))

	case messages.NotificationExpiredMsg:
		m.center.Dismiss(msg.ID)

	case messages.ClipboardMsg:
		if msg.Err != nil {
			log.LogWithError(msg.Err).Warn("clipboard write failed")
			m.center.Show(types.NotifyError, MsgCopyFailed)
		} else {
			m.center.Show(types.NotifySuccess, MsgCopied)
		}

	case messages.ErrorMsg:
		log.LogWithError(msg.Err).Error("terminal UI error")

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		m.refreshPanel()
		cmds = append(cmds, cmd)

	default:
		if m.picking {
			cmds = append(cmds, m.updatePicker(msg))
		}
		cmds = append(cmds, m.statusBar.Update(msg))
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.syncStatus()
	cmds = append(cmds, m.toastCmd())
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}

	if msg.Paste {
		return m.dropText(string(msg.Runes))
	}

	if m.picking {
		if msg.Type == tea.KeyEsc {
			m.picking = false
			return nil
		}
		return m.updatePicker(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return nil

	case key.Matches(msg, m.keys.OpenPicker):
		if m.machine.Phase() == types.Analyzing {
			return nil
		}
		m.picking = true
		return m.picker.Init()

	case key.Matches(msg, m.keys.Copy):
		return m.copyResult()

	case key.Matches(msg, m.keys.Analyze):
		if text := strings.TrimSpace(m.input.Value()); text != "" {
			return m.dropText(text)
		}
		return m.pressKey(types.KeyEnter)

	case key.Matches(msg, m.keys.Remove):
		if m.input.Value() != "" {
			m.input.Reset()
			return nil
		}
		return m.remove()
	}

	if m.machine.Phase() == types.Results {
		if cmd := m.panel.Update(msg); cmd != nil {
			return cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// remove clears the held image. From Results it also drops the result;
// while Analyzing the pending request is cancelled and its answer ignored.
func (m *Model) remove() tea.Cmd {
	switch m.machine.Phase() {
	case types.Results, types.Analyzing:
		m.machine.Remove()
		return nil
	}
	return m.pressKey(types.KeyEscape)
}

func (m *Model) pressKey(k types.Key) tea.Cmd {
	req, err := m.machine.HandleKey(m.ctx, k)
	if err != nil {
		log.Debugf("key %d ignored: %v", k, err)
		return nil
	}
	if req == nil {
		return nil
	}
	return m.startRequest(req)
}

func (m *Model) startRequest(req *upload.Request) tea.Cmd {
	p := m.predictor
	return tea.Batch(
		m.statusBar.SetLoading(true),
		func() tea.Msg {
			return messages.PredictionMsg{Outcome: req.Do(p)}
		},
	)
}

func (m *Model) updatePicker(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		return tea.Batch(cmd, m.loadCmd(path))
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.picking = false
		m.center.Show(types.NotifyError, upload.MsgNotImage)
		log.LogWithFields(log.F("path", path)).Debug("picker selected a non-image file")
		return cmd
	}
	return cmd
}

// dropText handles pasted or typed paths. Only the first path is used.
func (m *Model) dropText(text string) tea.Cmd {
	m.input.Reset()
	paths := intake.ParseDroppedPaths(text)
	if len(paths) == 0 {
		return nil
	}
	if len(paths) > 1 {
		log.LogWithFields(log.F("count", len(paths))).Debug("multiple files dropped, using the first")
	}
	return m.loadCmd(paths[0])
}

func (m *Model) loadCmd(path string) tea.Cmd {
	if m.machine.Phase() == types.Analyzing {
		return nil
	}
	loader := m.loader
	width := m.cfg.Intake.ThumbnailWidth
	return func() tea.Msg {
		file, err := loader.Load(path)
		if err != nil {
			return messages.FileLoadedMsg{Path: path, Err: err}
		}
		msg := messages.FileLoadedMsg{Path: path, File: file}
		if width > 0 && file.IsImage() && len(file.Data) > 0 {
			if img, err := intake.Thumbnail(file, width); err == nil {
				msg.Thumbnail = intake.HalfBlocks(img)
			}
		}
		return msg
	}
}

func (m *Model) handleFileLoaded(msg messages.FileLoadedMsg) tea.Cmd {
	if msg.Err != nil {
		log.LogWithError(msg.Err).Warn("could not read dropped file")
		m.center.Show(types.NotifyError, fmt.Sprintf("❌ Could not open %s", filepath.Base(msg.Path)))
		return nil
	}
	if err := m.machine.Load(msg.File); err == nil {
		m.thumbnail = msg.Thumbnail
		m.stopAnimation()
	}
	return nil
}

func (m *Model) handlePrediction(msg messages.PredictionMsg) tea.Cmd {
	if !m.machine.Complete(msg.Outcome) {
		return nil
	}
	if m.machine.Phase() != types.Results {
		return nil
	}
	return m.startAnimation(render.Result(m.machine.Result()))
}

func (m *Model) startAnimation(v *render.ResultView) tea.Cmd {
	m.animSeq++
	m.result = v
	m.display = &render.Display{}
	m.timeline = render.BuildTimeline(v, m.timing)
	m.progress = progress.New(
		progress.WithSolidFill(string(m.styles.Color(v.Bar))),
		progress.WithoutPercentage(),
		progress.WithWidth(m.progress.Width),
	)
	m.refreshPanel()
	if len(m.timeline) == 0 {
		return nil
	}
	return m.stepCmd(0, m.timeline[0].Delay)
}

func (m *Model) stopAnimation() {
	m.animSeq++
	m.result = nil
	m.display = nil
	m.timeline = nil
}

func (m *Model) stepCmd(index int, after time.Duration) tea.Cmd {
	seq := m.animSeq
	if after <= 0 {
		return func() tea.Msg { return messages.AnimationStepMsg{Seq: seq, Index: index} }
	}
	return tea.Tick(after, func(time.Time) tea.Msg {
		return messages.AnimationStepMsg{Seq: seq, Index: index}
	})
}

func (m *Model) handleAnimationStep(msg messages.AnimationStepMsg) tea.Cmd {
	if msg.Seq != m.animSeq || m.display == nil || msg.Index >= len(m.timeline) {
		return nil
	}
	due := m.timeline[msg.Index].Delay
	barBefore := m.display.BarWidth
	next := m.timeline.PlayUntil(m.display, msg.Index, due)

	var cmds []tea.Cmd
	if m.display.BarWidth != barBefore {
		cmds = append(cmds, m.progress.SetPercent(float64(m.display.BarWidth)/100))
	}
	m.refreshPanel()
	if next < len(m.timeline) {
		cmds = append(cmds, m.stepCmd(next, m.timeline[next].Delay-due))
	}
	return tea.Batch(cmds...)
}

func (m *Model) refreshPanel() {
	if m.result == nil || m.display == nil {
		return
	}
	m.panel.SetContent(m.result, m.display, m.progress.View())
}

func (m *Model) copyResult() tea.Cmd {
	if m.machine.Phase() != types.Results || m.machine.Result() == nil {
		return nil
	}
	text := render.Summary(render.Result(m.machine.Result()))
	write := m.copyText
	return func() tea.Msg {
		return messages.ClipboardMsg{Err: write(text)}
	}
}

func (m *Model) syncStatus() {
	snap := m.machine.Snapshot()
	if snap.Phase == types.Analyzing {
		m.statusBar.SetText("Analyzing " + snap.File.Name + " with AI...")
		return
	}
	m.statusBar.SetLoading(false)
	m.statusBar.SetText("")
	if snap.Phase == types.Idle {
		m.thumbnail = ""
		if m.result != nil {
			m.stopAnimation()
		}
	}
}

// toastCmd schedules the dismissal of a newly shown notification
func (m *Model) toastCmd() tea.Cmd {
	n, ok := m.center.Visible()
	if !ok || n.ID == m.scheduledToast {
		return nil
	}
	m.scheduledToast = n.ID
	id := n.ID
	return tea.Tick(time.Until(n.ExpiresAt), func(time.Time) tea.Msg {
		return messages.NotificationExpiredMsg{ID: id}
	})
}

// Run starts the terminal UI and blocks until it exits
func Run(ctx context.Context, cfg *config.Config, predictor upload.Predictor, loader *intake.Loader) error {
	m := New(cfg, predictor, loader, WithContext(ctx))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "terminal UI failed")
	}
	return nil
}

// ModelReader implementation

func (m *Model) Screen() render.View {
	return render.Render(m.machine.Snapshot())
}

func (m *Model) Display() *render.Display {
	return m.display
}

func (m *Model) Notification() (types.Notification, bool) {
	return m.center.Visible()
}

func (m *Model) Thumbnail() string {
	return m.thumbnail
}

func (m *Model) ShowHelp() bool {
	return m.showHelp
}

func (m *Model) Picking() bool {
	return m.picking
}

func (m *Model) Styles() styles.Styles {
	return m.styles
}

func (m *Model) DropInputView() string {
	return m.input.View()
}

func (m *Model) PickerView() string {
	return m.picker.View()
}

func (m *Model) StatusView() string {
	return m.statusBar.View()
}

func (m *Model) ResultView() string {
	return m.panel.View()
}

func (m *Model) HelpView() string {
	return m.help.View(m.keys)
}
