package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/logger"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository"
)

const (
	DefaultScheduleTick = 60 * time.Second

	defaultSilentStart = "22:00"
	defaultSilentEnd   = "05:00"
)

var ErrInvalidSchedule = errors.New("invalid schedule: times must be HH:MM")

// Commander issues commands through the queue.
type Commander interface {
	SendCommand(ctx context.Context, deviceID, action string, params map[string]any) (models.SendResult, error)
}

// SilentScheduleService disables detection during the configured silent
// window and re-enables it afterwards. It only issues a command when the
// desired state differs from the last one it issued.
type SilentScheduleService struct {
	kv        repository.KVStore
	eventRepo repository.EventRepo
	commands  Commander
	deviceID  string
	log       *logger.Logger
	now       func() time.Time

	tickMu sync.Mutex

	mu    sync.Mutex
	state *models.ScheduleState
}

func NewSilentScheduleService(
	kv repository.KVStore,
	eventRepo repository.EventRepo,
	commands Commander,
	deviceID string,
	log *logger.Logger,
) *SilentScheduleService {
	return &SilentScheduleService{
		kv:        kv,
		eventRepo: eventRepo,
		commands:  commands,
		deviceID:  deviceID,
		log:       log.Named("schedule"),
		now:       time.Now,
	}
}

// State returns the persisted schedule, defaulting it on first use.
func (s *SilentScheduleService) State(ctx context.Context) models.ScheduleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSchedule(*s.loadLocked(ctx))
}

// Update replaces the schedule window and evaluates it at once.
func (s *SilentScheduleService) Update(ctx context.Context, enabled bool, start, end string) (models.ScheduleState, error) {
	if _, err := parseClock(start); err != nil {
		return models.ScheduleState{}, err
	}
	if _, err := parseClock(end); err != nil {
		return models.ScheduleState{}, err
	}

	s.mu.Lock()
	st := s.loadLocked(ctx)
	st.Enabled = enabled
	st.StartTime = start
	st.EndTime = end
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.log.Infow("schedule_updated", "enabled", enabled, "start", start, "end", end)
	s.Tick(ctx)
	return s.State(ctx), nil
}

// Tick computes the desired state and issues a command if it changed.
// lastCommandIssued is updated after the attempt even when the command
// was queued instead of delivered.
func (s *SilentScheduleService) Tick(ctx context.Context) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	st := s.State(ctx)
	desired := desiredState(st, s.now())
	if st.LastCommandIssued != nil && *st.LastCommandIssued == desired {
		return
	}

	action := actionFor(desired)
	res, err := s.commands.SendCommand(ctx, s.deviceID, action, nil)
	if err != nil {
		s.log.Errorw("schedule_command_rejected", "action", action, "err", err)
		return
	}

	s.mu.Lock()
	cur := s.loadLocked(ctx)
	cur.LastCommandIssued = &desired
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.log.Infow("schedule_command_issued", "desired", desired, "delivered", res.Success, "queued", res.Queued)
	recordEvent(ctx, s.eventRepo, s.log, s.now(), models.EventSchedule,
		"Silent schedule issued "+action, map[string]any{"desired": desired, "queued": res.Queued})
}

// Run ticks immediately and then every tick until ctx is cancelled.
func (s *SilentScheduleService) Run(ctx context.Context, tick time.Duration) {
	runPeriodic(ctx, tick, s.log, "silent_schedule", s.Tick)
}

// HandleQueueEvent forgets lastCommandIssued when the queue drops the command
// that set it, so the next tick issues it again.
func (s *SilentScheduleService) HandleQueueEvent(ev models.QueueEvent) {
	d := ev.Dropped
	if d == nil || d.DeviceID != s.deviceID {
		return
	}
	if d.Action != models.ActionEnableDetection && d.Action != models.ActionDisableDetection {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.loadLocked(context.Background())
	if st.LastCommandIssued == nil || actionFor(*st.LastCommandIssued) != d.Action {
		return
	}
	st.LastCommandIssued = nil
	s.persistLocked(context.Background())
	s.log.Warnw("schedule_command_dropped", "action", d.Action)
}

func (s *SilentScheduleService) loadLocked(ctx context.Context) *models.ScheduleState {
	if s.state != nil {
		return s.state
	}
	st := models.ScheduleState{StartTime: defaultSilentStart, EndTime: defaultSilentEnd}
	found, err := repository.LoadJSON(ctx, s.kv, repository.KeySilentSchedule, &st)
	if err != nil {
		s.log.Warnw("schedule_load_failed", "err", err)
		st = models.ScheduleState{StartTime: defaultSilentStart, EndTime: defaultSilentEnd}
	}
	s.state = &st
	if !found && err == nil {
		s.persistLocked(ctx)
	}
	return s.state
}

func (s *SilentScheduleService) persistLocked(ctx context.Context) {
	if err := repository.SaveJSON(context.WithoutCancel(ctx), s.kv, repository.KeySilentSchedule, s.state); err != nil {
		s.log.Warnw("schedule_persist_failed", "err", err)
	}
}

func desiredState(st models.ScheduleState, now time.Time) string {
	if !st.Enabled {
		return models.ScheduleEnable
	}
	start, err1 := parseClock(st.StartTime)
	end, err2 := parseClock(st.EndTime)
	if err1 != nil || err2 != nil {
		return models.ScheduleEnable
	}
	if inWindow(now.Hour()*60+now.Minute(), start, end) {
		return models.ScheduleDisable
	}
	return models.ScheduleEnable
}

// inWindow reports whether minute-of-day m lies in [start, end), wrapping
// past midnight when start > end.
func inWindow(m, start, end int) bool {
	switch {
	case start == end:
		return false
	case start < end:
		return m >= start && m < end
	default:
		return m >= start || m < end
	}
}

func actionFor(desired string) string {
	if desired == models.ScheduleDisable {
		return models.ActionDisableDetection
	}
	return models.ActionEnableDetection
}

// parseClock converts HH:MM to minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSchedule, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func cloneSchedule(st models.ScheduleState) models.ScheduleState {
	if st.LastCommandIssued != nil {
		v := *st.LastCommandIssued
		st.LastCommandIssued = &v
	}
	return st
}
