// Package notify holds the single visible notification shown to the user.
package notify

import (
	"sync"
	"time"

	"leafscan/pkg/types"
)

// DefaultTTL is how long a notification stays visible
const DefaultTTL = 4 * time.Second

// Subscriber is called with every new notification
type Subscriber func(types.Notification)

// Center keeps at most one visible notification. Showing a new one replaces
// the old; dismissal is keyed by ID so a timer started for an older
// notification cannot hide a newer one.
type Center struct {
	mu          sync.Mutex
	ttl         time.Duration
	now         func() time.Time
	nextID      uint64
	current     *types.Notification
	subscribers []Subscriber
}

// Option configures a Center
type Option func(*Center)

// WithTTL sets the visibility duration
func WithTTL(ttl time.Duration) Option {
	return func(c *Center) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Center) {
		c.now = now
	}
}

// NewCenter creates an empty notification center
func NewCenter(opts ...Option) *Center {
	c := &Center{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the visibility duration
func (c *Center) TTL() time.Duration {
	return c.ttl
}

// Subscribe registers a callback for every subsequent notification
func (c *Center) Subscribe(s Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, s)
}

// Show replaces the visible notification and returns the new one
func (c *Center) Show(kind types.NotificationKind, message string) types.Notification {
	c.mu.Lock()
	c.nextID++
	now := c.now()
	n := types.Notification{
		ID:        c.nextID,
		Kind:      kind,
		Message:   message,
		ShownAt:   now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.current = &n
	subs := append([]Subscriber(nil), c.subscribers...)
	c.mu.Unlock()

	for _, s := range subs {
		s(n)
	}
	return n
}

// Notify is Show without the return value
func (c *Center) Notify(kind types.NotificationKind, message string) {
	c.Show(kind, message)
}

// Current returns the notification visible at now
func (c *Center) Current(now time.Time) (types.Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || !now.Before(c.current.ExpiresAt) {
		return types.Notification{}, false
	}
	return *c.current, true
}

// Visible returns the notification visible now
func (c *Center) Visible() (types.Notification, bool) {
	return c.Current(c.now())
}

// Dismiss hides the notification with the given ID. It reports false when a
// different notification is visible, leaving that one in place.
func (c *Center) Dismiss(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.ID != id {
		return false
	}
	c.current = nil
	return true
}
