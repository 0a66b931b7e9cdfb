package upload

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"leafscan/internal/errors"
	"leafscan/internal/log"
	"leafscan/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	kind    types.NotificationKind
	message string
}

type recorder struct {
	mu    sync.Mutex
	notes []note
}

func (r *recorder) Notify(kind types.NotificationKind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{kind, message})
}

func (r *recorder) last() note {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return note{}
	}
	return r.notes[len(r.notes)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

type fakePredictor struct {
	mu     sync.Mutex
	calls  int
	result *types.PredictionResult
	err    error
}

func (f *fakePredictor) Predict(ctx context.Context, file *types.UploadedFile) (*types.PredictionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

func image(name string, size int64) *types.UploadedFile {
	return &types.UploadedFile{Name: name, MediaType: "image/jpeg", Size: size, Data: []byte("jpeg")}
}

func prediction() *types.PredictionResult {
	return &types.PredictionResult{
		Success:      true,
		DiseaseName:  "Tomato Early Blight",
		Confidence:   0.83,
		HealthStatus: types.Critical,
		Causes:       []string{"fungus"},
	}
}

func sequentialTokens() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("req-%d", n)
	}
}

func newMachine(t *testing.T) (*Machine, *recorder) {
	t.Helper()
	rec := &recorder{}
	return New(rec, WithTokens(sequentialTokens())), rec
}

func TestLoadValidImage(t *testing.T) {
	m, rec := newMachine(t)

	var seen []types.Phase
	m.Subscribe(func(s Snapshot) { seen = append(seen, s.Phase) })

	require.NoError(t, m.Load(image("leaf.jpg", 2048)))
	assert.Equal(t, types.Previewing, m.Phase())
	assert.Equal(t, "leaf.jpg", m.File().Name)
	assert.Equal(t, note{types.NotifySuccess, MsgLoaded}, rec.last())
	assert.Equal(t, []types.Phase{types.Previewing}, seen)
}

func TestLoadRejectsNonImage(t *testing.T) {
	m, rec := newMachine(t)

	var calls int
	m.Subscribe(func(Snapshot) { calls++ })

	err := m.Load(&types.UploadedFile{Name: "notes.txt", MediaType: "text/plain", Size: 10})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, errors.InvalidMediaType, errors.KindOf(err))
	assert.Equal(t, types.Idle, m.Phase())
	assert.Nil(t, m.File())
	assert.Equal(t, note{types.NotifyError, MsgNotImage}, rec.last())
	assert.Zero(t, calls)
}

func TestLoadRejectsOversize(t *testing.T) {
	m, rec := newMachine(t)

	require.NoError(t, m.Load(image("exact.jpg", MaxFileSize)))
	assert.Equal(t, types.Previewing, m.Phase())

	err := m.Load(image("big.jpg", MaxFileSize+1))
	require.Error(t, err)
	assert.Equal(t, errors.FileTooLarge, errors.KindOf(err))
	assert.Equal(t, note{types.NotifyError, MsgTooLarge}, rec.last())
	assert.Equal(t, "exact.jpg", m.File().Name, "rejected file must not replace the held one")
}

func TestLoadChecksTypeBeforeSize(t *testing.T) {
	m, rec := newMachine(t)
	err := m.Load(&types.UploadedFile{Name: "huge.pdf", MediaType: "application/pdf", Size: MaxFileSize * 2})
	assert.Equal(t, errors.InvalidMediaType, errors.KindOf(err))
	assert.Equal(t, MsgNotImage, rec.last().message)
}

func TestLoadEmptySelection(t *testing.T) {
	m, rec := newMachine(t)
	assert.NoError(t, m.Load())
	assert.NoError(t, m.Load(nil))
	assert.Equal(t, types.Idle, m.Phase())
	assert.Zero(t, rec.count())
}

func TestLoadTakesFirstFile(t *testing.T) {
	m, _ := newMachine(t)
	require.NoError(t, m.Load(image("first.jpg", 1), image("second.jpg", 1)))
	assert.Equal(t, "first.jpg", m.File().Name)
}

func TestLoadReplacesResult(t *testing.T) {
	m, _ := newMachine(t)
	p := &fakePredictor{result: prediction()}

	require.NoError(t, m.Load(image("a.jpg", 1)))
	require.NoError(t, m.AnalyzeSync(context.Background(), p))
	require.Equal(t, types.Results, m.Phase())

	require.NoError(t, m.Load(image("b.jpg", 1)))
	assert.Equal(t, types.Previewing, m.Phase())
	assert.Equal(t, "b.jpg", m.File().Name)
	assert.Nil(t, m.Result())
}

func TestRemove(t *testing.T) {
	t.Run("from previewing", func(t *testing.T) {
		m, rec := newMachine(t)
		require.NoError(t, m.Load(image("leaf.jpg", 1)))
		m.Remove()
		assert.Equal(t, types.Idle, m.Phase())
		assert.Nil(t, m.File())
		assert.Equal(t, note{types.NotifyInfo, MsgRemoved}, rec.last())
	})

	t.Run("from results", func(t *testing.T) {
		m, _ := newMachine(t)
		require.NoError(t, m.Load(image("leaf.jpg", 1)))
		require.NoError(t, m.AnalyzeSync(context.Background(), &fakePredictor{result: prediction()}))
		m.Remove()
		assert.Equal(t, types.Idle, m.Phase())
		assert.Nil(t, m.File())
		assert.Nil(t, m.Result())
	})

	t.Run("idle is a no-op", func(t *testing.T) {
		m, rec := newMachine(t)
		m.Remove()
		assert.Equal(t, types.Idle, m.Phase())
		assert.Zero(t, rec.count())
	})
}

func TestAnalyzeSuccess(t *testing.T) {
	m, rec := newMachine(t)
	p := &fakePredictor{result: prediction()}

	var phases []types.Phase
	m.Subscribe(func(s Snapshot) { phases = append(phases, s.Phase) })

	require.NoError(t, m.Load(image("leaf.jpg", 1)))
	require.NoError(t, m.AnalyzeSync(context.Background(), p))

	assert.Equal(t, types.Results, m.Phase())
	assert.Equal(t, "Tomato Early Blight", m.Result().DiseaseName)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, note{types.NotifySuccess, MsgComplete}, rec.last())
	assert.Equal(t, []types.Phase{types.Previewing, types.Analyzing, types.Results}, phases)
}

func TestAnalyzeFailureKeepsFile(t *testing.T) {
	m, rec := newMachine(t)
	p := &fakePredictor{err: errors.NewTransportError("request failed", errors.RequestFailed, fmt.Errorf("connection refused"))}

	require.NoError(t, m.Load(image("leaf.jpg", 1)))
	err := m.AnalyzeSync(context.Background(), p)
	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))

	assert.Equal(t, types.Previewing, m.Phase())
	assert.Equal(t, "leaf.jpg", m.File().Name)
	assert.Nil(t, m.Result())
	assert.Equal(t, note{types.NotifyError, MsgFailed}, rec.last())

	// retry is allowed
	p.err = nil
	p.result = prediction()
	require.NoError(t, m.AnalyzeSync(context.Background(), p))
	assert.Equal(t, types.Results, m.Phase())
	assert.Equal(t, 2, p.calls)
}

func TestAnalyzeFailureLogsToInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogger(log.WithOutput(&buf)).With(log.F("component", "scanner"))
	m := New(&recorder{}, WithTokens(sequentialTokens()), WithLogger(logger))
	p := &fakePredictor{err: errors.NewTransportError("server error", errors.BadStatus, nil).WithStatus(503, "model unavailable")}

	require.NoError(t, m.Load(image("leaf.jpg", 1)))
	require.Error(t, m.AnalyzeSync(context.Background(), p))

	out := buf.String()
	assert.Contains(t, out, "analysis failed")
	assert.Contains(t, out, "component=scanner")
	assert.Contains(t, out, "status=503")
	assert.Contains(t, out, "token=req-1")
}

func TestAnalyzeEmptyResultIsFailure(t *testing.T) {
	m, _ := newMachine(t)
	require.NoError(t, m.Load(image("leaf.jpg", 1)))
	err := m.AnalyzeSync(context.Background(), &fakePredictor{})
	assert.Equal(t, errors.MalformedResponse, errors.KindOf(err))
	assert.Equal(t, types.Previewing, m.Phase())
}

func TestAnalyzeWithoutFile(t *testing.T) {
	m, rec := newMachine(t)
	p := &fakePredictor{result: prediction()}

	err := m.AnalyzeSync(context.Background(), p)
	assert.True(t, errors.Is(err, errors.ErrNoFileLoaded))
	assert.Equal(t, note{types.NotifyError, MsgNoFile}, rec.last())
	assert.Zero(t, p.calls)
	assert.Equal(t, types.Idle, m.Phase())
}

func TestAnalyzeWhileAnalyzing(t *testing.T) {
	m, _ := newMachine(t)
	require.NoError(t, m.Load(image("leaf.jpg", 1)))

	req, err := m.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "req-1", req.Token)
	assert.Equal(t, "req-1", m.Snapshot().Token)

	_, err = m.Analyze(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, m.Load(image("other.jpg", 1)), ErrBusy)
	assert.Equal(t, "leaf.jpg", m.File().Name)
}

func TestAnalyzeFromResults(t *testing.T) {
	m, _ := newMachine(t)
	require.NoError(t, m.Load(image("leaf.jpg", 1)))
	require.NoError(t, m.AnalyzeSync(context.Background(), &fakePredictor{result: prediction()}))

	_, err := m.Analyze(context.Background())
	assert.ErrorIs(t, err, ErrNotPreviewing)
	assert.Equal(t, types.Results, m.Phase())
}

func TestLateResponseAfterRemove(t *testing.T) {
	m, _ := newMachine(t)
	p := &fakePredictor{result: prediction()}

	require.NoError(t, m.Load(image("leaf.jpg", 1)))
	req, err := m.Analyze(context.Background())
	require.NoError(t, err)

	m.Remove()
	assert.Error(t, req.Context().Err(), "removing must cancel the request")

	assert.False(t, m.Complete(req.Do(p)))
	assert.Equal(t, types.Idle, m.Phase())
	assert.Nil(t, m.Result())
}

func TestLateResponseAfterReload(t *testing.T) {
	m, _ := newMachine(t)
	p := &fakePredictor{result: prediction()}

	require.NoError(t, m.Load(image("a.jpg", 1)))
	stale, err := m.Analyze(context.Background())
	require.NoError(t, err)
	m.Remove()

	require.NoError(t, m.Load(image("b.jpg", 1)))
	current, err := m.Analyze(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, stale.Token, current.Token)

	assert.False(t, m.Complete(stale.Do(p)))
	assert.Equal(t, types.Analyzing, m.Phase())

	assert.True(t, m.Complete(current.Do(p)))
	assert.Equal(t, types.Results, m.Phase())
	assert.Equal(t, "b.jpg", m.File().Name)
}

func TestResetIsSilent(t *testing.T) {
	m, rec := newMachine(t)
	require.NoError(t, m.Load(image("leaf.jpg", 1)))
	before := rec.count()
	m.Reset()
	assert.Equal(t, types.Idle, m.Phase())
	assert.Equal(t, before, rec.count())
}

func TestHandleKey(t *testing.T) {
	ctx := context.Background()

	t.Run("escape in preview removes", func(t *testing.T) {
		m, _ := newMachine(t)
		require.NoError(t, m.Load(image("leaf.jpg", 1)))
		req, err := m.HandleKey(ctx, types.KeyEscape)
		assert.NoError(t, err)
		assert.Nil(t, req)
		assert.Equal(t, types.Idle, m.Phase())
	})

	t.Run("enter in preview analyzes", func(t *testing.T) {
		m, _ := newMachine(t)
		require.NoError(t, m.Load(image("leaf.jpg", 1)))
		req, err := m.HandleKey(ctx, types.KeyEnter)
		require.NoError(t, err)
		require.NotNil(t, req)
		assert.Equal(t, types.Analyzing, m.Phase())
	})

	t.Run("enter when idle does nothing", func(t *testing.T) {
		m, rec := newMachine(t)
		req, err := m.HandleKey(ctx, types.KeyEnter)
		assert.NoError(t, err)
		assert.Nil(t, req)
		assert.Zero(t, rec.count())
	})

	t.Run("escape in results does nothing", func(t *testing.T) {
		m, _ := newMachine(t)
		require.NoError(t, m.Load(image("leaf.jpg", 1)))
		require.NoError(t, m.AnalyzeSync(ctx, &fakePredictor{result: prediction()}))
		_, _ = m.HandleKey(ctx, types.KeyEscape)
		assert.Equal(t, types.Results, m.Phase())
	})

	t.Run("keys while analyzing do nothing", func(t *testing.T) {
		m, _ := newMachine(t)
		require.NoError(t, m.Load(image("leaf.jpg", 1)))
		_, err := m.Analyze(ctx)
		require.NoError(t, err)
		req, err := m.HandleKey(ctx, types.KeyEnter)
		assert.NoError(t, err)
		assert.Nil(t, req)
		_, _ = m.HandleKey(ctx, types.KeyEscape)
		assert.Equal(t, types.Analyzing, m.Phase())
	})
}

func TestMessageFor(t *testing.T) {
	assert.Equal(t, MsgNotImage, MessageFor(Validate(&types.UploadedFile{MediaType: "video/mp4"})))
	assert.Equal(t, MsgTooLarge, MessageFor(Validate(image("x", MaxFileSize+1))))
	assert.Equal(t, MsgNoFile, MessageFor(Validate(nil)))
	assert.Equal(t, MsgFailed, MessageFor(errors.New("boom")))
	assert.NoError(t, Validate(image("x", 0)))
}
