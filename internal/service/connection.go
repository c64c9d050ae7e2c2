package service

import (
	"context"
	"sync"
	"time"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/logger"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository"
)

// DeviceClient is the device's local HTTP API.
type DeviceClient interface {
	FetchStatus(ctx context.Context) (models.ConnectionStatus, error)
	SetMode(ctx context.Context, mode models.Mode) error
	ForceSync(ctx context.Context) (models.SyncResult, error)
}

// LinkProbe reports whether the command link is up.
type LinkProbe interface {
	Connected() bool
}

const modePushTimeout = 5 * time.Second

type persistedMode struct {
	Mode        models.Mode `json:"mode"`
	PushPending bool        `json:"push_pending"`
}

// ConnectionModeService owns the operator's mode preference and the last
// observed device connection state.
type ConnectionModeService struct {
	kv        repository.KVStore
	eventRepo repository.EventRepo
	device    DeviceClient
	link      LinkProbe
	log       *logger.Logger
	now       func() time.Time

	pushes    sync.WaitGroup
	persistMu sync.Mutex

	mu           sync.Mutex
	view         models.ConnectionView
	pollSeq      uint64
	appliedSeq   uint64
	pushing      bool
	listeners    map[int]func(models.ConnectionView)
	nextListener int
}

func NewConnectionModeService(
	kv repository.KVStore,
	eventRepo repository.EventRepo,
	device DeviceClient,
	link LinkProbe,
	log *logger.Logger,
) *ConnectionModeService {
	return &ConnectionModeService{
		kv:        kv,
		eventRepo: eventRepo,
		device:    device,
		link:      link,
		log:       log.Named("connection"),
		now:       time.Now,
		view: models.ConnectionView{
			State:    models.StateUnknown,
			Mode:     models.ModeAuto,
			ModeName: models.ModeAuto.String(),
		},
		listeners: map[int]func(models.ConnectionView){},
	}
}

// Load restores the persisted mode preference. A pending push is retried.
func (s *ConnectionModeService) Load(ctx context.Context) error {
	var stored persistedMode
	found, err := repository.LoadJSON(ctx, s.kv, repository.KeyConnectionMode, &stored)
	if err != nil {
		return err
	}
	if !found || !stored.Mode.Valid() {
		return nil
	}

	s.mu.Lock()
	s.setModeLocked(stored.Mode)
	s.view.ModePushPending = stored.PushPending
	s.mu.Unlock()

	if stored.PushPending {
		s.pushMode(stored.Mode)
	}
	return nil
}

// Mode returns the operator's current preference.
func (s *ConnectionModeService) Mode() models.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Mode
}

// View returns the latest connection snapshot.
func (s *ConnectionModeService) View() models.ConnectionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Reachable decides whether commands may be sent directly.
// OFFLINE never is, ONLINE always is, AUTO follows the command link.
func (s *ConnectionModeService) Reachable() bool {
	switch s.Mode() {
	case models.ModeOffline:
		return false
	case models.ModeOnline:
		return true
	default:
		return s.link != nil && s.link.Connected()
	}
}

// SetMode updates the preference locally and persists it at once. The push
// to the device happens in the background and is retried on later polls if
// it fails.
func (s *ConnectionModeService) SetMode(ctx context.Context, mode models.Mode) error {
	if !mode.Valid() {
		return models.ErrInvalidMode
	}

	s.mu.Lock()
	prev := s.view.Mode
	s.setModeLocked(mode)
	s.view.ModePushPending = true
	view := s.view
	s.mu.Unlock()

	s.persist(ctx)
	s.notify(view)
	s.log.Infow("mode_changed", "from", prev.String(), "to", mode.String())
	recordEvent(ctx, s.eventRepo, s.log, s.now(), models.EventModeChange,
		"Connection mode set to "+mode.String(), map[string]any{"from": prev.String(), "to": mode.String()})

	s.pushMode(mode)
	return nil
}

func (s *ConnectionModeService) pushMode(mode models.Mode) {
	s.mu.Lock()
	if s.pushing {
		s.mu.Unlock()
		return
	}
	s.pushing = true
	s.mu.Unlock()

	s.pushes.Add(1)
	go func() {
		defer s.pushes.Done()

		ctx, cancel := context.WithTimeout(context.Background(), modePushTimeout)
		err := s.device.SetMode(ctx, mode)
		cancel()

		s.mu.Lock()
		s.pushing = false
		current := s.view.Mode
		if current == mode {
			s.view.ModePushPending = err != nil
		}
		view := s.view
		s.mu.Unlock()

		if err != nil {
			s.log.Warnw("mode_push_failed", "mode", mode.String(), "err", err)
		} else {
			s.log.Infow("mode_pushed", "mode", mode.String())
		}
		s.persist(context.Background())
		s.notify(view)

		// The preference changed while this push was in flight.
		if current != mode {
			s.pushMode(current)
		}
	}()
}

// Wait blocks until in-flight mode pushes have finished.
func (s *ConnectionModeService) Wait() {
	s.pushes.Wait()
}

// Poll asks the device for its status. Failure maps to unreachable. A poll
// that finishes after a later-started one has been applied is discarded.
func (s *ConnectionModeService) Poll(ctx context.Context) models.ConnectionView {
	s.mu.Lock()
	s.pollSeq++
	seq := s.pollSeq
	s.mu.Unlock()

	status, err := s.device.FetchStatus(ctx)
	now := s.now()

	s.mu.Lock()
	if seq < s.appliedSeq {
		view := s.view
		s.mu.Unlock()
		s.log.Debugw("status_poll_superseded", "seq", seq, "applied", view.State, "err", err)
		return view
	}
	s.appliedSeq = seq
	prev := s.view
	polledAt := now.UTC()
	s.view.PolledAt = &polledAt
	if err != nil {
		s.view.State = models.StateUnreachable
		s.view.SyncAvailable = false
	} else {
		st := status
		s.view.State = status.ConnectionState
		s.view.QueuedDetections = status.QueuedDetections
		s.view.Status = &st
		s.view.SyncAvailable = status.QueuedDetections > 0 &&
			status.ConnectionState != models.StateUnreachable &&
			status.ConnectionState != models.StateUnknown
	}
	repush := err == nil && (s.view.ModePushPending || status.UserModePreference != s.view.Mode)
	mode := s.view.Mode
	view := s.view
	s.mu.Unlock()

	if err != nil {
		s.log.Debugw("status_poll_failed", "err", err)
	}
	if repush {
		s.pushMode(mode)
	}
	if changed(prev, view) {
		s.notify(view)
	}
	return view
}

// Run polls immediately and then every interval until ctx is cancelled.
func (s *ConnectionModeService) Run(ctx context.Context, interval time.Duration) {
	runPeriodic(ctx, interval, s.log, "connection_poll", func(ctx context.Context) {
		s.Poll(ctx)
	})
	s.Wait()
}

// ForceSync asks the device to upload its offline backlog, then re-polls so
// the view reflects the post-sync state whatever the outcome.
func (s *ConnectionModeService) ForceSync(ctx context.Context) (models.SyncResult, models.ConnectionView, error) {
	result, err := s.device.ForceSync(ctx)
	if err != nil {
		s.log.Warnw("force_sync_failed", "err", err)
	} else {
		recordEvent(ctx, s.eventRepo, s.log, s.now(), models.EventForceSync, "Forced sync of offline detections", result)
	}
	view := s.Poll(ctx)
	return result, view, err
}

// AddListener registers fn for view changes and returns its handle.
func (s *ConnectionModeService) AddListener(fn func(models.ConnectionView)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextListener++
	s.listeners[s.nextListener] = fn
	return s.nextListener
}

func (s *ConnectionModeService) RemoveListener(id int) {
	s.mu.Lock()
	delete(s.listeners, id)
	s.mu.Unlock()
}

func (s *ConnectionModeService) notify(v models.ConnectionView) {
	s.mu.Lock()
	fns := make([]func(models.ConnectionView), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

func (s *ConnectionModeService) persist(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	stored := persistedMode{Mode: s.view.Mode, PushPending: s.view.ModePushPending}
	s.mu.Unlock()
	if err := repository.SaveJSON(context.WithoutCancel(ctx), s.kv, repository.KeyConnectionMode, stored); err != nil {
		s.log.Warnw("mode_persist_failed", "err", err)
	}
}

func (s *ConnectionModeService) setModeLocked(m models.Mode) {
	s.view.Mode = m
	s.view.ModeName = m.String()
}

// changed ignores PolledAt so identical polls do not produce transitions.
func changed(a, b models.ConnectionView) bool {
	return a.State != b.State ||
		a.Mode != b.Mode ||
		a.QueuedDetections != b.QueuedDetections ||
		a.SyncAvailable != b.SyncAvailable ||
		a.ModePushPending != b.ModePushPending
}
