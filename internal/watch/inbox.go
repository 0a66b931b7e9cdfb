// Package watch feeds images dropped into inbox directories through the
// upload machine, one at a time.
package watch

import (
	"context"
	"sync"
	"time"

	"leafscan/internal/config"
	"leafscan/internal/errors"
	"leafscan/internal/intake"
	"leafscan/internal/log"
	"leafscan/internal/upload"
	"leafscan/pkg/types"
)

// Report is the outcome of one inbox file.
type Report struct {
	Path     string
	File     *types.UploadedFile
	Result   *types.PredictionResult
	Notices  []string
	Err      error
	Finished time.Time
}

// InboxStatus is a point-in-time view of the inbox
type InboxStatus struct {
	Running      bool
	Directories  []string
	LastActivity time.Time
	Processed    int
	Failed       int
}

// ReportHandler receives every finished report
type ReportHandler func(Report)

// Inbox watches directories and analyzes each accepted file.
type Inbox struct {
	directories []string
	debounce    time.Duration
	loader      *intake.Loader
	predictor   upload.Predictor
	machine     *upload.Machine
	handler     ReportHandler

	// busy holds one file in the machine at a time
	busy    sync.Mutex
	mutex   sync.Mutex
	timers  map[string]*time.Timer
	notices []string
	status  InboxStatus
}

// InboxOption configures an Inbox
type InboxOption func(*Inbox)

// WithReportHandler sets the callback for finished reports
func WithReportHandler(h ReportHandler) InboxOption {
	return func(in *Inbox) {
		in.handler = h
	}
}

// WithDebounce overrides the configured debounce interval
func WithDebounce(d time.Duration) InboxOption {
	return func(in *Inbox) {
		in.debounce = d
	}
}

// WithDirectories overrides the configured directories
func WithDirectories(dirs ...string) InboxOption {
	return func(in *Inbox) {
		in.directories = dirs
	}
}

// NewInbox creates an inbox using the watch section of cfg.
func NewInbox(cfg *config.Config, loader *intake.Loader, predictor upload.Predictor, opts ...InboxOption) *Inbox {
	in := &Inbox{
		directories: cfg.Watch.Directories,
		debounce:    cfg.Debounce(),
		loader:      loader,
		predictor:   predictor,
		timers:      make(map[string]*time.Timer),
	}
	in.machine = upload.New(in, upload.WithLogger(log.LogWithFields(log.F("component", "inbox"))))
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Notify records machine notifications for the report being built
func (in *Inbox) Notify(kind types.NotificationKind, message string) {
	in.mutex.Lock()
	defer in.mutex.Unlock()
	in.notices = append(in.notices, message)
}

// Status returns the inbox counters
func (in *Inbox) Status() InboxStatus {
	in.mutex.Lock()
	defer in.mutex.Unlock()
	s := in.status
	s.Directories = append([]string(nil), in.directories...)
	return s
}

// Run watches the directories until ctx is done.
func (in *Inbox) Run(ctx context.Context) error {
	if len(in.directories) == 0 {
		return errors.NewConfigError("no directories to watch", "watch.directories", errors.InvalidConfig, nil)
	}

	watcher, err := NewWatcher(64)
	if err != nil {
		return err
	}
	for _, dir := range in.directories {
		if err := watcher.AddDirectory(dir); err != nil {
			watcher.Stop()
			return err
		}
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	in.setRunning(true)
	defer in.setRunning(false)

	ready := make(chan string, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case path := <-ready:
				in.report(in.Process(ctx, path))
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case ev := <-watcher.Events():
			in.schedule(ctx, ev, ready)
		case <-ctx.Done():
			in.stopTimers()
			wg.Wait()
			return nil
		}
	}
}

// schedule debounces events per path: the file is processed once no event
// for it has arrived for the debounce interval.
func (in *Inbox) schedule(ctx context.Context, ev FileEvent, ready chan<- string) {
	if !in.loader.Accepts(ev.Path) {
		log.LogWithFields(log.F("file", ev.Path)).Debug("ignoring file that does not match intake patterns")
		return
	}

	in.mutex.Lock()
	defer in.mutex.Unlock()
	in.status.LastActivity = ev.Timestamp

	if t, ok := in.timers[ev.Path]; ok {
		t.Stop()
	}
	path := ev.Path
	in.timers[path] = time.AfterFunc(in.debounce, func() {
		in.mutex.Lock()
		delete(in.timers, path)
		in.mutex.Unlock()

		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
}

func (in *Inbox) stopTimers() {
	in.mutex.Lock()
	defer in.mutex.Unlock()
	for path, t := range in.timers {
		t.Stop()
		delete(in.timers, path)
	}
}

func (in *Inbox) setRunning(running bool) {
	in.mutex.Lock()
	defer in.mutex.Unlock()
	in.status.Running = running
}

// Process loads, analyzes and removes one file, returning what happened.
// It is used by Run for each settled file and may be called directly;
// concurrent calls take turns.
func (in *Inbox) Process(ctx context.Context, path string) Report {
	in.busy.Lock()
	defer in.busy.Unlock()

	in.mutex.Lock()
	in.notices = nil
	in.mutex.Unlock()

	rep := Report{Path: path}
	logger := log.LogWithFields(log.F("file", path))

	file, err := in.loader.Load(path)
	if err == nil {
		rep.File = file
		err = in.machine.Load(file)
	}
	if err == nil {
		err = in.machine.AnalyzeSync(ctx, in.predictor)
		rep.Result = in.machine.Result()
	}
	in.machine.Remove()

	in.mutex.Lock()
	rep.Notices = append([]string(nil), in.notices...)
	if err != nil {
		in.status.Failed++
	} else {
		in.status.Processed++
	}
	in.mutex.Unlock()

	rep.Err = err
	rep.Finished = time.Now()
	if err != nil {
		log.LogWithError(err).With(log.F("file", path)).Warn("inbox file not analyzed")
	} else {
		logger.With(log.F("disease", rep.Result.DiseaseName)).Info("inbox file analyzed")
	}
	return rep
}

func (in *Inbox) report(rep Report) {
	if in.handler != nil {
		in.handler(rep)
	}
}
