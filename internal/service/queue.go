package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/logger"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository"
)

const (
	DefaultMaxAttempts = 3
	DefaultFlushDelay  = 500 * time.Millisecond
	DefaultSendTimeout = 5 * time.Second

	// NoFlushDelay disables the pause between flushed commands.
	NoFlushDelay time.Duration = -1
)

var (
	ErrDeviceRequired = errors.New("device id is required")
	ErrUnknownAction  = errors.New("unknown command action")
)

// CommandTransport delivers one command to the device. A nil error means delivered.
type CommandTransport interface {
	Send(ctx context.Context, deviceID, action string, params map[string]any) error
}

// Reachability reports whether the device can currently be addressed directly.
type Reachability interface {
	Reachable() bool
}

// QueueOptions tunes the command queue. Zero values fall back to defaults.
// A negative FlushDelay sends flushed commands back to back.
type QueueOptions struct {
	MaxAttempts  int
	FlushDelay   time.Duration
	SendTimeout  time.Duration
	DedupActions []string
}

// CommandQueueService sends commands directly while the device is reachable
// and holds them in a persisted FIFO otherwise.
type CommandQueueService struct {
	kv        repository.KVStore
	eventRepo repository.EventRepo
	transport CommandTransport
	reach     Reachability
	log       *logger.Logger

	maxAttempts int
	flushDelay  time.Duration
	sendTimeout time.Duration
	dedup       map[string]struct{}
	now         func() time.Time

	flushReq chan struct{}

	mu           sync.Mutex
	items        []models.Command
	flushing     bool
	listeners    map[int]func(models.QueueEvent)
	nextListener int

	persistMu sync.Mutex
}

func NewCommandQueueService(
	kv repository.KVStore,
	eventRepo repository.EventRepo,
	transport CommandTransport,
	reach Reachability,
	log *logger.Logger,
	opts QueueOptions,
) *CommandQueueService {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = DefaultSendTimeout
	}
	if opts.FlushDelay == 0 {
		opts.FlushDelay = DefaultFlushDelay
	}
	dedup := make(map[string]struct{}, len(opts.DedupActions))
	for _, a := range opts.DedupActions {
		dedup[a] = struct{}{}
	}
	return &CommandQueueService{
		kv:          kv,
		eventRepo:   eventRepo,
		transport:   transport,
		reach:       reach,
		log:         log.Named("queue"),
		maxAttempts: opts.MaxAttempts,
		flushDelay:  opts.FlushDelay,
		sendTimeout: opts.SendTimeout,
		dedup:       dedup,
		now:         time.Now,
		flushReq:    make(chan struct{}, 1),
		listeners:   map[int]func(models.QueueEvent){},
	}
}

// Load restores the persisted queue. A missing or unreadable entry leaves the queue empty.
func (s *CommandQueueService) Load(ctx context.Context) error {
	var items []models.Command
	if _, err := repository.LoadJSON(ctx, s.kv, repository.KeyCommandQueue, &items); err != nil {
		return fmt.Errorf("load command queue: %w", err)
	}
	s.mu.Lock()
	s.items = items
	status := s.statusLocked()
	s.mu.Unlock()

	s.notify(models.QueueEvent{Status: status})
	s.log.Infow("queue_loaded", "length", status.Length)
	return nil
}

// SendCommand delivers immediately when reachable, otherwise queues. A failed
// direct send also queues. Validation errors are the only error return.
func (s *CommandQueueService) SendCommand(ctx context.Context, deviceID, action string, params map[string]any) (models.SendResult, error) {
	if deviceID == "" {
		return models.SendResult{}, ErrDeviceRequired
	}
	if !models.IsKnownAction(action) {
		return models.SendResult{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	if s.reach.Reachable() {
		sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
		err := s.transport.Send(sendCtx, deviceID, action, params)
		cancel()
		if err == nil {
			recordEvent(ctx, s.eventRepo, s.log, s.now(), models.EventCommandSent,
				"Command sent: "+action, map[string]any{"device_id": deviceID, "action": action})
			s.supersede(ctx, models.Command{DeviceID: deviceID, Action: action})
			return models.SendResult{Success: true}, nil
		}
		s.log.Warnw("command_send_failed", "device_id", deviceID, "action", action, "err", err)
	}

	s.enqueue(ctx, models.Command{
		ID:       uuid.NewString(),
		DeviceID: deviceID,
		Action:   action,
		Params:   params,
		QueuedAt: s.now().UTC(),
	})
	return models.SendResult{Queued: true}, nil
}

func (s *CommandQueueService) enqueue(ctx context.Context, cmd models.Command) {
	s.mu.Lock()
	replaced := s.dropSameTargetLocked(cmd)
	s.items = append(s.items, cmd)
	status := s.statusLocked()
	s.mu.Unlock()

	s.persist(ctx)
	s.notify(models.QueueEvent{Status: status})
	s.log.Infow("command_queued", "device_id", cmd.DeviceID, "action", cmd.Action, "replaced", replaced, "length", status.Length)
	recordEvent(ctx, s.eventRepo, s.log, cmd.QueuedAt, models.EventCommandQueued,
		"Command queued: "+cmd.Action, map[string]any{"device_id": cmd.DeviceID, "action": cmd.Action, "id": cmd.ID})
}

// supersede removes queued commands that a delivered dedup-set command
// replaces, so a later flush cannot replay an older value.
func (s *CommandQueueService) supersede(ctx context.Context, sent models.Command) {
	s.mu.Lock()
	removed := s.dropSameTargetLocked(sent)
	status := s.statusLocked()
	s.mu.Unlock()
	if removed == 0 {
		return
	}

	s.persist(ctx)
	s.notify(models.QueueEvent{Status: status})
	s.log.Infow("queued_command_superseded", "device_id", sent.DeviceID, "action", sent.Action, "removed", removed, "length", status.Length)
}

// dropSameTargetLocked removes items with cmd's (device, action) when the
// action is in the dedup set and returns how many were removed.
func (s *CommandQueueService) dropSameTargetLocked(cmd models.Command) int {
	if _, ok := s.dedup[cmd.Action]; !ok {
		return 0
	}
	removed := 0
	kept := s.items[:0]
	for _, it := range s.items {
		if it.SameTarget(cmd) {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	s.items = kept
	return removed
}

// Flush drains the queue in FIFO order. Only one flush runs at a time; a
// concurrent call returns a report with Skipped set.
func (s *CommandQueueService) Flush(ctx context.Context) (report models.FlushReport) {
	s.mu.Lock()
	if s.flushing || len(s.items) == 0 || !s.reach.Reachable() {
		report = models.FlushReport{Skipped: s.flushing, Remaining: len(s.items)}
		s.mu.Unlock()
		return report
	}
	s.flushing = true
	batch := append([]models.Command(nil), s.items...)
	status := s.statusLocked()
	s.mu.Unlock()
	s.notify(models.QueueEvent{Status: status})

	defer func() {
		s.mu.Lock()
		s.flushing = false
		report.Remaining = len(s.items)
		status := s.statusLocked()
		s.mu.Unlock()
		s.persist(ctx)
		s.notify(models.QueueEvent{Status: status})
	}()

	s.log.Infow("queue_flush_started", "batch", len(batch))
	for i, cmd := range batch {
		if i > 0 && !s.pause(ctx) {
			break
		}
		if !s.reach.Reachable() {
			s.log.Infow("queue_flush_interrupted", "reason", "unreachable")
			break
		}
		if !s.contains(cmd.ID) {
			continue
		}

		report.Attempted++
		sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
		err := s.transport.Send(sendCtx, cmd.DeviceID, cmd.Action, cmd.Params)
		cancel()

		delivered, dropped := s.settle(cmd.ID, err)
		s.persist(ctx)
		if delivered {
			report.Delivered++
			recordEvent(ctx, s.eventRepo, s.log, s.now(), models.EventCommandDelivered,
				"Queued command delivered: "+cmd.Action, map[string]any{"device_id": cmd.DeviceID, "action": cmd.Action, "id": cmd.ID})
		}
		if dropped != nil {
			report.Dropped = append(report.Dropped, *dropped)
			s.log.Warnw("command_dropped", "device_id", dropped.DeviceID, "action", dropped.Action, "attempts", dropped.Attempts, "err", err)
			recordEvent(ctx, s.eventRepo, s.log, s.now(), models.EventCommandDropped,
				"Command dropped after max attempts: "+dropped.Action, map[string]any{"device_id": dropped.DeviceID, "action": dropped.Action, "id": dropped.ID})
		}
		s.mu.Lock()
		status := s.statusLocked()
		s.mu.Unlock()
		s.notify(models.QueueEvent{Status: status, Dropped: dropped})
	}
	s.log.Infow("queue_flush_finished", "attempted", report.Attempted, "delivered", report.Delivered, "dropped", len(report.Dropped))
	return report
}

// settle applies the outcome of one send to the live queue. The item may have
// been superseded by deduplication while the send was in flight.
func (s *CommandQueueService) settle(id string, sendErr error) (delivered bool, dropped *models.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return sendErr == nil, nil
	}
	if sendErr == nil {
		s.removeLocked(idx)
		return true, nil
	}
	s.items[idx].Attempts++
	if s.items[idx].Attempts >= s.maxAttempts {
		cmd := s.items[idx]
		s.removeLocked(idx)
		return false, &cmd
	}
	return false, nil
}

// Run flushes once at start when there is work, then on every reconnect
// signal or TriggerFlush until ctx is cancelled.
func (s *CommandQueueService) Run(ctx context.Context, reconnects <-chan struct{}) {
	s.Flush(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-reconnects:
			s.log.Infow("queue_reconnect_signal")
			s.Flush(ctx)
		case <-s.flushReq:
			s.Flush(ctx)
		}
	}
}

// TriggerFlush asks Run for a flush without blocking. Requests coalesce.
func (s *CommandQueueService) TriggerFlush() {
	select {
	case s.flushReq <- struct{}{}:
	default:
	}
}

// Status returns the queue length and whether a flush is in progress.
func (s *CommandQueueService) Status() models.QueueStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// Pending returns a copy of the queued commands in FIFO order.
func (s *CommandQueueService) Pending() []models.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Command{}, s.items...)
}

// AddListener registers fn for queue events and returns its handle.
func (s *CommandQueueService) AddListener(fn func(models.QueueEvent)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextListener++
	s.listeners[s.nextListener] = fn
	return s.nextListener
}

func (s *CommandQueueService) RemoveListener(id int) {
	s.mu.Lock()
	delete(s.listeners, id)
	s.mu.Unlock()
}

func (s *CommandQueueService) notify(ev models.QueueEvent) {
	s.mu.Lock()
	fns := make([]func(models.QueueEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// persist writes the current queue. Snapshots are taken under persistMu so
// the last write always reflects the latest in-memory state.
func (s *CommandQueueService) persist(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	snapshot := append([]models.Command{}, s.items...)
	s.mu.Unlock()

	if err := repository.SaveJSON(context.WithoutCancel(ctx), s.kv, repository.KeyCommandQueue, snapshot); err != nil {
		s.log.Warnw("queue_persist_failed", "length", len(snapshot), "err", err)
	}
}

func (s *CommandQueueService) pause(ctx context.Context) bool {
	if s.flushDelay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(s.flushDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (s *CommandQueueService) contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id) >= 0
}

func (s *CommandQueueService) indexLocked(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *CommandQueueService) removeLocked(idx int) {
	s.items = append(s.items[:idx], s.items[idx+1:]...)
}

func (s *CommandQueueService) statusLocked() models.QueueStatus {
	return models.QueueStatus{Length: len(s.items), Flushing: s.flushing}
}
