//go:build !nogui

// Package gui is the fyne desktop front-end. Files dropped onto the window
// or picked from the file dialog are loaded into the upload machine; the
// window mirrors every machine transition.
package gui

import (
	"fmt"
	"path/filepath"
	"time"

	"leafscan/internal/log"
	"leafscan/internal/render"
	"leafscan/internal/upload"
	"leafscan/pkg/types"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/dialog"
)

// Clipboard notification text
const MsgCopied = "✓ Copied to clipboard!"

// LoadPath reads a file from disk and hands it to the machine
func (a *App) LoadPath(path string) {
	file, err := a.loader.Load(path)
	if err != nil {
		log.LogWithError(err).With(log.F("path", path)).Warn("could not read dropped file")
		a.center.Show(types.NotifyError, fmt.Sprintf("❌ Could not open %s", filepath.Base(path)))
		return
	}

	a.actions.Lock()
	defer a.actions.Unlock()
	if err := a.machine.Load(file); err != nil {
		log.Debugf("load of %s refused: %v", file.Name, err)
	}
}

// onDropped receives files dragged onto the window. Only the first local
// file is used.
func (a *App) onDropped(_ fyne.Position, uris []fyne.URI) {
	paths := localPaths(uris)
	if len(paths) == 0 {
		return
	}
	if len(paths) > 1 {
		log.Debugf("dropped %d files, using %s", len(paths), paths[0])
	}
	a.LoadPath(paths[0])
}

// showFileDialog opens the file picker limited to image extensions
func (a *App) showFileDialog() {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			a.ShowError("Could not open file", err)
			return
		}
		if r == nil {
			return
		}
		path := r.URI().Path()
		if cerr := r.Close(); cerr != nil {
			log.Debugf("closing %s: %v", path, cerr)
		}
		a.LoadPath(path)
	}, a.mainWindow)
	d.SetFilter(imageFilter())
	d.Show()
}

// Analyze starts classification of the previewed image
func (a *App) Analyze() {
	a.actions.Lock()
	req, err := a.machine.Analyze(a.ctx)
	a.actions.Unlock()
	if err != nil {
		log.Debugf("analyze refused: %v", err)
		return
	}
	a.startRequest(req)
}

// Remove clears the held image and any result
func (a *App) Remove() {
	a.actions.Lock()
	defer a.actions.Unlock()
	a.machine.Remove()
}

// startRequest runs the network call off the UI goroutine
func (a *App) startRequest(req *upload.Request) {
	a.actions.Lock()
	p := a.predictor
	a.actions.Unlock()
	go func() {
		out := req.Do(p)
		a.actions.Lock()
		defer a.actions.Unlock()
		a.machine.Complete(out)
	}()
}

// typedKey maps Escape and Enter onto the machine shortcuts
func (a *App) typedKey(ev *fyne.KeyEvent) {
	var k types.Key
	switch ev.Name {
	case fyne.KeyEscape:
		k = types.KeyEscape
	case fyne.KeyReturn, fyne.KeyEnter:
		k = types.KeyEnter
	default:
		return
	}

	a.actions.Lock()
	req, err := a.machine.HandleKey(a.ctx, k)
	a.actions.Unlock()
	if err != nil {
		log.Debugf("key %s refused: %v", ev.Name, err)
		return
	}
	if req != nil {
		a.startRequest(req)
	}
}

// CopyResult puts a plain text summary of the result on the clipboard
func (a *App) CopyResult() {
	res := a.machine.Result()
	if res == nil {
		return
	}
	a.copyText(render.Summary(render.Result(res)))
	a.center.Show(types.NotifySuccess, MsgCopied)
}

// ShowError displays an error dialog
func (a *App) ShowError(title string, err error) {
	if err == nil {
		return
	}
	log.LogWithError(err).Error(title)
	dialog.ShowError(fmt.Errorf("%s: %w", title, err), a.mainWindow)
}

// ShowInfo displays an information dialog
func (a *App) ShowInfo(message string) {
	dialog.ShowInformation("Information", message, a.mainWindow)
}

// onSnapshot mirrors a machine transition onto the widgets
func (a *App) onSnapshot(s upload.Snapshot) {
	a.render(render.Render(s))
}

func (a *App) render(v render.View) {
	a.mu.Lock()
	defer a.mu.Unlock()

	setVisible(a.dropZone, v.DropZone)
	setVisible(a.previewBox, v.Preview)
	setVisible(a.loadingBox, v.Loading)
	setVisible(a.resultsBox, v.Results)

	if v.Preview && v.File != nil {
		a.showPreviewLocked(v.File)
	}

	if v.Loading && v.File != nil {
		a.loadingText.SetText("Analyzing " + v.File.Name + " with AI...")
		a.loadingBar.Start()
	} else {
		a.loadingBar.Stop()
	}

	if v.Results && v.Result != nil {
		a.startAnimationLocked(v.Result)
	} else {
		a.stopAnimationLocked()
	}
}

func (a *App) showPreviewLocked(f *render.PreviewView) {
	a.previewImg.Objects = nil
	if len(f.Data) > 0 {
		img := canvas.NewImageFromResource(fyne.NewStaticResource(f.Name, f.Data))
		img.FillMode = canvas.ImageFillContain
		img.SetMinSize(fyne.NewSize(320, 240))
		a.previewImg.Objects = []fyne.CanvasObject{img}
	}
	a.previewImg.Refresh()
	a.previewInfo.SetText(previewText(f))
}

func (a *App) startAnimationLocked(v *render.ResultView) {
	a.stopAnimationLocked()
	a.result = v
	a.display = &render.Display{}
	a.timeline = render.BuildTimeline(v, a.timing)
	a.card.Reset(v)
	if len(a.timeline) == 0 {
		a.card.Update(v, a.display)
		return
	}
	a.scheduleLocked(a.animSeq, 0, a.timeline[0].Delay)
}

func (a *App) stopAnimationLocked() {
	a.animSeq++
	if a.animTimer != nil {
		a.animTimer.Stop()
		a.animTimer = nil
	}
	a.timeline = nil
	a.display = nil
	a.result = nil
}

func (a *App) scheduleLocked(seq, index int, after time.Duration) {
	if after <= 0 {
		a.stepLocked(seq, index)
		return
	}
	a.animTimer = time.AfterFunc(after, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.stepLocked(seq, index)
	})
}

// stepLocked applies every step due at the delay of step index and
// schedules the next one. Steps of a superseded animation are dropped.
func (a *App) stepLocked(seq, index int) {
	if seq != a.animSeq || a.display == nil || index >= len(a.timeline) {
		return
	}
	due := a.timeline[index].Delay
	next := a.timeline.PlayUntil(a.display, index, due)
	a.card.Update(a.result, a.display)
	if next < len(a.timeline) {
		a.scheduleLocked(seq, next, a.timeline[next].Delay-due)
	}
}

// onNotification shows a notification in the status line and clears it
// once it expires, unless a newer one replaced it.
func (a *App) onNotification(n types.Notification) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.statusLabel.Importance = kindImportance(n.Kind)
	a.statusLabel.SetText(n.Message)

	if a.toastTimer != nil {
		a.toastTimer.Stop()
	}
	id := n.ID
	a.toastTimer = time.AfterFunc(time.Until(n.ExpiresAt), func() {
		a.expire(id)
	})
}

func (a *App) expire(id uint64) {
	if !a.center.Dismiss(id) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.statusLabel.SetText("")
}

// StatusText returns the visible notification text
func (a *App) StatusText() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.statusLabel.Text
}
