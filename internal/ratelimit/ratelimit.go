// Package ratelimit implements per-identity fixed windows at minute, hour,
// and day granularity. Windows are self-healing: an expired window is
// replaced on the next check, so no background sweep is needed.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

type Window string

const (
	WindowMinute Window = "minute"
	WindowHour   Window = "hour"
	WindowDay    Window = "day"
)

// windowOrder is the evaluation order; the first exhausted window
// determines the reported limit type.
var windowOrder = [3]Window{WindowMinute, WindowHour, WindowDay}

var windowLength = map[Window]time.Duration{
	WindowMinute: time.Minute,
	WindowHour:   time.Hour,
	WindowDay:    24 * time.Hour,
}

// Default per-identity limits.
const (
	DefaultMinuteLimit = 100
	DefaultHourLimit   = 1000
	DefaultDayLimit    = 5000
)

// Config holds the per-window request limits.
type Config struct {
	MinuteLimit int
	HourLimit   int
	DayLimit    int
}

// DefaultConfig returns the standard 100/1000/5000 limits.
func DefaultConfig() Config {
	return Config{
		MinuteLimit: DefaultMinuteLimit,
		HourLimit:   DefaultHourLimit,
		DayLimit:    DefaultDayLimit,
	}
}

func (c Config) limit(w Window) int {
	switch w {
	case WindowMinute:
		return c.MinuteLimit
	case WindowHour:
		return c.HourLimit
	default:
		return c.DayLimit
	}
}

// Status describes one window after a check.
type Status struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset_time"`
}

// Result is the outcome of a rate limit check. Windows is always populated
// so callers can emit metadata regardless of outcome. On denial, LimitType
// names the exhausted window and Reset is that window's reset time; on
// allow, Reset is the soonest reset across the three windows.
type Result struct {
	Allowed    bool
	LimitType  Window
	Reset      time.Time
	RetryAfter int // seconds until Reset, denial only
	Windows    map[Window]Status
}

type counter struct {
	count int
	reset time.Time
}

// entry holds one identity's windows. Its mutex serializes check-then-
// increment for that identity so concurrent calls cannot both slip past
// the last slot of a window.
type entry struct {
	mu      sync.Mutex
	windows map[Window]*counter
}

// Limiter tracks request windows keyed by identity. Distinct identities
// never contend beyond the map lookup.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	cfg     Config
	now     func() time.Time
}

// New returns a Limiter with the given limits.
func New(cfg Config) *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		cfg:     cfg,
		now:     time.Now,
	}
}

func (l *Limiter) entryFor(identity string, now time.Time) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[identity]
	if !ok {
		e = &entry{windows: make(map[Window]*counter, 3)}
		for _, w := range windowOrder {
			e.windows[w] = &counter{reset: now.Add(windowLength[w])}
		}
		l.entries[identity] = e
	}
	return e
}

// Check evaluates and, if all windows have headroom, counts one request for
// the identity. A denied request does not touch any counter.
func (l *Limiter) Check(identity string) Result {
	now := l.now()
	e := l.entryFor(identity, now)

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, w := range windowOrder {
		c := e.windows[w]
		if !now.Before(c.reset) {
			c.count = 0
			c.reset = now.Add(windowLength[w])
		}
	}

	statuses := make(map[Window]Status, 3)
	for _, w := range windowOrder {
		c := e.windows[w]
		statuses[w] = Status{
			Limit:     l.cfg.limit(w),
			Remaining: l.cfg.limit(w) - c.count,
			Reset:     c.reset,
		}
	}

	for _, w := range windowOrder {
		if statuses[w].Remaining <= 0 {
			s := statuses[w]
			s.Remaining = 0
			statuses[w] = s
			return Result{
				Allowed:    false,
				LimitType:  w,
				Reset:      s.Reset,
				RetryAfter: retryAfter(s.Reset, now),
				Windows:    statuses,
			}
		}
	}

	soonest := e.windows[windowOrder[0]].reset
	for _, w := range windowOrder {
		c := e.windows[w]
		c.count++
		s := statuses[w]
		s.Remaining--
		statuses[w] = s
		if c.reset.Before(soonest) {
			soonest = c.reset
		}
	}

	return Result{Allowed: true, Reset: soonest, Windows: statuses}
}

// Info reports current window state without counting a request.
func (l *Limiter) Info(identity string) map[Window]Status {
	now := l.now()
	e := l.entryFor(identity, now)

	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[Window]Status, 3)
	for _, w := range windowOrder {
		c := e.windows[w]
		count, reset := c.count, c.reset
		if !now.Before(reset) {
			count, reset = 0, now.Add(windowLength[w])
		}
		remaining := l.cfg.limit(w) - count
		if remaining < 0 {
			remaining = 0
		}
		out[w] = Status{Limit: l.cfg.limit(w), Remaining: remaining, Reset: reset}
	}
	return out
}

// Reset discards all windows for an identity.
func (l *Limiter) Reset(identity string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, identity)
}

func retryAfter(reset, now time.Time) int {
	d := reset.Sub(now)
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return secs
}

// SetHeaders writes the conventional X-RateLimit-* metadata for all three
// windows, plus Retry-After when the result is a denial.
func SetHeaders(h http.Header, res Result) {
	for _, w := range windowOrder {
		s := res.Windows[w]
		prefix := "X-RateLimit-" + titled(w)
		h.Set(prefix+"-Limit", strconv.Itoa(s.Limit))
		h.Set(prefix+"-Remaining", strconv.Itoa(max(0, s.Remaining)))
		h.Set(prefix+"-Reset", strconv.FormatInt(s.Reset.Unix(), 10))
	}
	if !res.Allowed {
		h.Set("Retry-After", strconv.Itoa(res.RetryAfter))
		h.Set("X-RateLimit-Status", "Exceeded "+string(res.LimitType)+" limit")
	}
}

func titled(w Window) string {
	switch w {
	case WindowMinute:
		return "Minute"
	case WindowHour:
		return "Hour"
	default:
		return "Day"
	}
}
