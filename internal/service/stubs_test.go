package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository"
)

// fakeEventRepo is a minimal stub that satisfies the repository.EventRepo interface.
type fakeEventRepo struct {
	mu sync.Mutex

	// captured inputs
	gotCtx   context.Context
	gotQuery repository.EventQuery
	appended []models.DeviceEvent

	// configured outputs
	events    []models.DeviceEvent
	err       error
	appendErr error

	calls int
}

func (f *fakeEventRepo) List(ctx context.Context, q repository.EventQuery) ([]models.DeviceEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotCtx = ctx
	f.gotQuery = q
	if f.err != nil {
		return nil, f.err
	}
	out := f.events
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[len(out)-q.Limit:]
	}
	return out, nil
}

func (f *fakeEventRepo) Append(_ context.Context, e models.DeviceEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, e)
	return nil
}

func (f *fakeEventRepo) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.appended))
	for _, e := range f.appended {
		out = append(out, e.Type)
	}
	return out
}

// memKV is an in-memory repository.KVStore.
type memKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	puts   map[string]int
	putErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, puts: map[string]int{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return append([]byte(nil), v...), ok, nil
}

func (m *memKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = append([]byte(nil), value...)
	m.puts[key]++
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) putCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts[key]
}

type sentCommand struct {
	deviceID string
	action   string
	params   map[string]any
}

// fakeTransport records sends. fail decides per call whether a send fails.
type fakeTransport struct {
	mu    sync.Mutex
	sent  []sentCommand
	fail  func(call int, action string) bool
	hook  func(call int)
	calls int
}

var errTransport = errors.New("transport down")

func (f *fakeTransport) Send(_ context.Context, deviceID, action string, params map[string]any) error {
	f.mu.Lock()
	f.calls++
	call := f.calls
	fail := f.fail != nil && f.fail(call, action)
	if !fail {
		f.sent = append(f.sent, sentCommand{deviceID: deviceID, action: action, params: params})
	}
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if fail {
		return errTransport
	}
	return nil
}

func (f *fakeTransport) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, s := range f.sent {
		out = append(out, s.action)
	}
	return out
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeReach is a settable Reachability and LinkProbe.
type fakeReach struct {
	mu sync.Mutex
	ok bool
}

func (r *fakeReach) Reachable() bool { r.mu.Lock(); defer r.mu.Unlock(); return r.ok }
func (r *fakeReach) Connected() bool { return r.Reachable() }
func (r *fakeReach) set(ok bool)     { r.mu.Lock(); r.ok = ok; r.mu.Unlock() }

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time { c.mu.Lock(); defer c.mu.Unlock(); return c.now }

func (c *fakeClock) Set(t time.Time) { c.mu.Lock(); c.now = t; c.mu.Unlock() }

func (c *fakeClock) Advance(d time.Duration) { c.mu.Lock(); c.now = c.now.Add(d); c.mu.Unlock() }

// captureSink records delivered alerts. err makes every delivery fail.
type captureSink struct {
	mu     sync.Mutex
	alerts []models.Alert
	err    error
}

func (s *captureSink) Deliver(_ context.Context, a models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.alerts = append(s.alerts, a)
	return nil
}

func (s *captureSink) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, a.Key)
	}
	return out
}

func (s *captureSink) setErr(err error) { s.mu.Lock(); s.err = err; s.mu.Unlock() }

func f64(v float64) *float64 { return &v }
