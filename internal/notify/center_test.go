package notify

import (
	"testing"
	"time"

	"leafscan/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newCenter() (*Center, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return NewCenter(WithClock(clock.Now)), clock
}

func TestShowAndExpire(t *testing.T) {
	c, clock := newCenter()

	n := c.Show(types.NotifySuccess, "loaded")
	assert.Equal(t, uint64(1), n.ID)
	assert.Equal(t, clock.t.Add(4*time.Second), n.ExpiresAt)

	got, ok := c.Visible()
	require.True(t, ok)
	assert.Equal(t, "loaded", got.Message)

	clock.Advance(3999 * time.Millisecond)
	_, ok = c.Visible()
	assert.True(t, ok)

	clock.Advance(time.Millisecond)
	_, ok = c.Visible()
	assert.False(t, ok)
}

func TestNewReplacesOld(t *testing.T) {
	c, _ := newCenter()

	first := c.Show(types.NotifyInfo, "first")
	second := c.Show(types.NotifyError, "second")
	assert.Greater(t, second.ID, first.ID)

	got, ok := c.Visible()
	require.True(t, ok)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, types.NotifyError, got.Kind)
}

func TestStaleDismiss(t *testing.T) {
	c, _ := newCenter()

	first := c.Show(types.NotifyInfo, "first")
	second := c.Show(types.NotifyInfo, "second")

	assert.False(t, c.Dismiss(first.ID))
	got, ok := c.Visible()
	require.True(t, ok)
	assert.Equal(t, "second", got.Message)

	assert.True(t, c.Dismiss(second.ID))
	_, ok = c.Visible()
	assert.False(t, ok)
	assert.False(t, c.Dismiss(second.ID))
}

func TestSubscribers(t *testing.T) {
	c, _ := newCenter()
	var got []string
	c.Subscribe(func(n types.Notification) { got = append(got, n.Message) })

	c.Notify(types.NotifySuccess, "a")
	c.Notify(types.NotifyError, "b")
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestWithTTL(t *testing.T) {
	c := NewCenter(WithTTL(time.Second), WithTTL(0))
	assert.Equal(t, time.Second, c.TTL())
	assert.Equal(t, DefaultTTL, NewCenter().TTL())
}
