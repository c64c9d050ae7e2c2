package service

import (
	"context"
	"errors"
	"sync"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/logger"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository"
)

// AlertSink receives emitted alerts. A nil error means the alert reached the operator.
type AlertSink interface {
	Deliver(ctx context.Context, a models.Alert) error
}

var ErrNoSinks = errors.New("no alert sink accepted the alert")

// MultiSink fans an alert out to every sink. It succeeds when at least one does.
type MultiSink struct {
	sinks []AlertSink
	log   *logger.Logger
}

func NewMultiSink(log *logger.Logger, sinks ...AlertSink) *MultiSink {
	return &MultiSink{sinks: sinks, log: log.Named("sinks")}
}

func (m *MultiSink) Deliver(ctx context.Context, a models.Alert) error {
	delivered := 0
	var errs []error
	for _, s := range m.sinks {
		if err := s.Deliver(ctx, a); err != nil {
			m.log.Debugw("sink_delivery_failed", "key", a.Key, "err", err)
			errs = append(errs, err)
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return errors.Join(append([]error{ErrNoSinks}, errs...)...)
	}
	return nil
}

// EventLogSink records alerts in the device event log.
type EventLogSink struct {
	eventRepo repository.EventRepo
}

func NewEventLogSink(eventRepo repository.EventRepo) *EventLogSink {
	return &EventLogSink{eventRepo: eventRepo}
}

func (s *EventLogSink) Deliver(ctx context.Context, a models.Alert) error {
	typ := models.EventAlert
	if a.Kind == models.AlertKindRecommendation {
		typ = models.EventRecommendation
	}
	return s.eventRepo.Append(context.WithoutCancel(ctx), models.DeviceEvent{
		EventID:     a.ID,
		OccurredAt:  a.CreatedAt,
		Type:        typ,
		Description: a.Message,
		Metadata:    a,
	})
}

const hubBuffer = 16

// AlertHub broadcasts alerts to live subscribers such as dashboard sockets.
// Slow subscribers miss alerts rather than block delivery.
type AlertHub struct {
	mu     sync.Mutex
	subs   map[int]chan models.Alert
	nextID int
}

func NewAlertHub() *AlertHub {
	return &AlertHub{subs: map[int]chan models.Alert{}}
}

// Subscribe returns a channel of alerts and a func that releases it.
func (h *AlertHub) Subscribe() (<-chan models.Alert, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	ch := make(chan models.Alert, hubBuffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			h.mu.Unlock()
		})
	}
}

// Deliver fails when nobody is listening so it never counts as a delivery on its own.
func (h *AlertHub) Deliver(_ context.Context, a models.Alert) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subs) == 0 {
		return errNoSubscribers
	}
	for _, ch := range h.subs {
		select {
		case ch <- a:
		default:
		}
	}
	return nil
}

var errNoSubscribers = errors.New("alert hub: no subscribers")
