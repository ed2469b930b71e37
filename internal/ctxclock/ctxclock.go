// Package ctxclock carries the current time source on a context, so cache
// expiry can be tested without sleeping.
package ctxclock

import (
	"context"
	"net/http"
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

var clockKey int

func WithClock(ctx context.Context, c Clock) context.Context {
	return context.WithValue(ctx, &clockKey, c)
}

// GetClock returns the clock stored on ctx, or the real clock.
func GetClock(ctx context.Context) Clock {
	if v, ok := ctx.Value(&clockKey).(Clock); ok && v != nil {
		return v
	}

	return RealClock{}
}

func Now(ctx context.Context) time.Time {
	return GetClock(ctx).Now()
}

func Register(c Clock) func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	return func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		next(rw, r.WithContext(WithClock(r.Context(), c)))
	}
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to.
type ManualClock struct {
	m sync.Mutex
	t time.Time
}

func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{t: t}
}

func (c *ManualClock) Now() time.Time {
	c.m.Lock()
	defer c.m.Unlock()

	return c.t
}

func (c *ManualClock) Advance(d time.Duration) {
	c.m.Lock()
	defer c.m.Unlock()

	c.t = c.t.Add(d)
}
