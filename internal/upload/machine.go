// Package upload implements the upload/preview/analyze/results state machine.
//
// The machine owns the single held file and the visible phase. Transition
// methods are meant to be called from one event loop; the only work that may
// run elsewhere is Request.Do, which performs the network call without
// touching machine state. Its Outcome is handed back through Complete, which
// ignores outcomes whose request token is no longer current.
package upload

import (
	"context"
	"sync"

	"leafscan/internal/errors"
	"leafscan/internal/log"
	"leafscan/pkg/types"

	"github.com/google/uuid"
)

var (
	// ErrBusy is returned when an action is attempted while a request is outstanding
	ErrBusy = errors.New("analysis in progress")
	// ErrNotPreviewing is returned when analysis is requested outside the preview phase
	ErrNotPreviewing = errors.New("analysis can only start from the preview")
)

// Predictor classifies an uploaded image.
type Predictor interface {
	Predict(ctx context.Context, file *types.UploadedFile) (*types.PredictionResult, error)
}

// Notifier receives user-facing notifications.
type Notifier interface {
	Notify(kind types.NotificationKind, message string)
}

// Snapshot is the machine state handed to renderers after every transition.
type Snapshot struct {
	Phase  types.Phase
	File   *types.UploadedFile
	Result *types.PredictionResult
	Token  string
}

// HasFile reports whether a file is held
func (s Snapshot) HasFile() bool {
	return s.File != nil
}

// Observer is called after every transition
type Observer func(Snapshot)

// Machine is the upload state machine
type Machine struct {
	mu        sync.Mutex
	phase     types.Phase
	file      *types.UploadedFile
	result    *types.PredictionResult
	pending   *Request
	notifier  Notifier
	observers []Observer
	logger    *log.Logger
	newToken  func() string
}

// Option configures a Machine
type Option func(*Machine)

// WithLogger sets the developer trace logger
func WithLogger(l *log.Logger) Option {
	return func(m *Machine) {
		m.logger = l
	}
}

// WithTokens replaces the request token generator
func WithTokens(next func() string) Option {
	return func(m *Machine) {
		m.newToken = next
	}
}

// New creates a machine in the Idle phase. A nil notifier discards notifications.
func New(notifier Notifier, opts ...Option) *Machine {
	m := &Machine{
		phase:    types.Idle,
		notifier: notifier,
		logger:   log.Default(),
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe registers an observer for every subsequent transition
func (m *Machine) Subscribe(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// Snapshot returns the current state
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	s := Snapshot{Phase: m.phase, File: m.file, Result: m.result}
	if m.pending != nil {
		s.Token = m.pending.Token
	}
	return s
}

// Phase returns the current phase
func (m *Machine) Phase() types.Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// File returns the held file, nil when none
func (m *Machine) File() *types.UploadedFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.file
}

// Result returns the rendered result, nil outside the Results phase
func (m *Machine) Result() *types.PredictionResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// transition is what a handler decided while holding the lock; it is
// published after the lock is released so observers may call back in.
type transition struct {
	changed bool
	kind    types.NotificationKind
	message string
}

func (m *Machine) publish(t transition) {
	m.mu.Lock()
	snap := m.snapshotLocked()
	observers := append([]Observer(nil), m.observers...)
	m.mu.Unlock()

	if t.message != "" && m.notifier != nil {
		m.notifier.Notify(t.kind, t.message)
	}
	if t.changed {
		for _, o := range observers {
			o(snap)
		}
	}
}

// Load takes the first of the dropped or picked files. An empty selection
// is ignored. Invalid files leave the state untouched.
func (m *Machine) Load(files ...*types.UploadedFile) error {
	if len(files) == 0 || files[0] == nil {
		return nil
	}
	file := files[0]

	m.mu.Lock()
	if m.phase == types.Analyzing {
		m.mu.Unlock()
		return ErrBusy
	}
	if err := Validate(file); err != nil {
		m.mu.Unlock()
		m.logger.With(log.F("file", file.Name), log.F("media_type", file.MediaType), log.F("size", file.Size)).
			Debugf("rejected upload: %v", err)
		m.publish(transition{kind: types.NotifyError, message: MessageFor(err)})
		return err
	}
	m.file = file
	m.result = nil
	m.phase = types.Previewing
	m.mu.Unlock()

	m.logger.With(log.F("file", file.Name), log.F("size", file.Size)).Debug("image loaded")
	m.publish(transition{changed: true, kind: types.NotifySuccess, message: MsgLoaded})
	return nil
}

// Remove clears the held file and any result and returns to Idle. An
// outstanding request is cancelled and its eventual outcome ignored.
func (m *Machine) Remove() {
	m.mu.Lock()
	if m.phase == types.Idle {
		m.mu.Unlock()
		return
	}
	m.dropPendingLocked()
	m.file = nil
	m.result = nil
	m.phase = types.Idle
	m.mu.Unlock()

	m.publish(transition{changed: true, kind: types.NotifyInfo, message: MsgRemoved})
}

// Reset returns to Idle without notifying the user
func (m *Machine) Reset() {
	m.mu.Lock()
	m.dropPendingLocked()
	m.file = nil
	m.result = nil
	m.phase = types.Idle
	m.mu.Unlock()

	m.publish(transition{changed: true})
}

func (m *Machine) dropPendingLocked() {
	if m.pending != nil {
		m.logger.With(log.F("token", m.pending.Token)).Debug("abandoning outstanding request")
		m.pending.cancel()
		m.pending = nil
	}
}

// Analyze moves from Previewing to Analyzing and returns the request to run.
// The request context derives from ctx.
func (m *Machine) Analyze(ctx context.Context) (*Request, error) {
	m.mu.Lock()
	if m.phase == types.Analyzing {
		m.mu.Unlock()
		return nil, ErrBusy
	}
	if m.file == nil {
		m.mu.Unlock()
		m.publish(transition{kind: types.NotifyError, message: MsgNoFile})
		return nil, errors.ErrNoFileLoaded
	}
	if m.phase != types.Previewing {
		m.mu.Unlock()
		return nil, ErrNotPreviewing
	}

	reqCtx, cancel := context.WithCancel(ctx)
	req := &Request{
		Token:  m.newToken(),
		File:   m.file,
		ctx:    reqCtx,
		cancel: cancel,
	}
	m.pending = req
	m.phase = types.Analyzing
	m.mu.Unlock()

	m.logger.With(log.F("token", req.Token), log.F("file", req.File.Name)).Debug("analysis started")
	m.publish(transition{changed: true})
	return req, nil
}

// Complete applies the outcome of a request. It returns false, changing
// nothing, when the outcome belongs to a request that is no longer current.
func (m *Machine) Complete(out Outcome) bool {
	m.mu.Lock()
	if m.pending == nil || m.pending.Token != out.Token || m.phase != types.Analyzing {
		m.mu.Unlock()
		m.logger.With(log.F("token", out.Token)).Debug("ignoring stale response")
		return false
	}
	m.pending.cancel()
	m.pending = nil

	err := out.Err
	if err == nil && out.Result == nil {
		err = errors.NewTransportError("empty prediction result", errors.MalformedResponse, nil)
	}
	if err != nil {
		m.phase = types.Previewing
		m.mu.Unlock()

		m.logger.WithError(err).With(log.F("token", out.Token)).Error("analysis failed")
		m.publish(transition{changed: true, kind: types.NotifyError, message: MsgFailed})
		return true
	}

	m.result = out.Result
	m.phase = types.Results
	m.mu.Unlock()

	m.logger.With(log.F("token", out.Token), log.F("disease", out.Result.DiseaseName)).Debug("analysis complete")
	m.publish(transition{changed: true, kind: types.NotifySuccess, message: MsgComplete})
	return true
}

// AnalyzeSync runs Analyze, the request and Complete in sequence.
func (m *Machine) AnalyzeSync(ctx context.Context, p Predictor) error {
	req, err := m.Analyze(ctx)
	if err != nil {
		return err
	}
	out := req.Do(p)
	if !m.Complete(out) {
		return errors.ErrStaleResponse
	}
	return out.Err
}

// HandleKey maps the keyboard shortcuts: Escape removes the previewed image,
// Enter starts analysis when an image is previewed. It returns the started
// request, or nil when the key did nothing.
func (m *Machine) HandleKey(ctx context.Context, k types.Key) (*Request, error) {
	snap := m.Snapshot()
	if snap.Phase != types.Previewing {
		return nil, nil
	}
	switch k {
	case types.KeyEscape:
		m.Remove()
	case types.KeyEnter:
		if snap.File != nil {
			return m.Analyze(ctx)
		}
	}
	return nil, nil
}
