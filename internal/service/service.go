package service

import (
	"context"
	"time"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/logger"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Commands sends device commands, queueing them while the device is unreachable.
type Commands interface {
	Load(ctx context.Context) error
	SendCommand(ctx context.Context, deviceID, action string, params map[string]any) (models.SendResult, error)
	Flush(ctx context.Context) models.FlushReport
	Status() models.QueueStatus
	Pending() []models.Command
	Run(ctx context.Context, reconnects <-chan struct{})
}

// Connection exposes the operator's mode preference and the device link state.
type Connection interface {
	Load(ctx context.Context) error
	View() models.ConnectionView
	Poll(ctx context.Context) models.ConnectionView
	SetMode(ctx context.Context, mode models.Mode) error
	ForceSync(ctx context.Context) (models.SyncResult, models.ConnectionView, error)
	Run(ctx context.Context, interval time.Duration)
}

type Notifications interface {
	Evaluate(ctx context.Context, snap models.SensorSnapshot) []models.Alert
	Preferences(ctx context.Context) models.NotificationPreferences
	UpdatePreferences(ctx context.Context, u models.NotificationPreferencesUpdate) (models.NotificationPreferences, error)
}

type Recommendations interface {
	Evaluate(ctx context.Context, snap models.SensorSnapshot) []models.Alert
	Preferences(ctx context.Context) models.RecommendationPreferences
	UpdatePreferences(ctx context.Context, u models.RecommendationPreferencesUpdate) (models.RecommendationPreferences, error)
}

// Schedule drives detection on and off around the silent window.
type Schedule interface {
	State(ctx context.Context) models.ScheduleState
	Update(ctx context.Context, enabled bool, start, end string) (models.ScheduleState, error)
	Run(ctx context.Context, tick time.Duration)
}

type Sensors interface {
	Ingest(ctx context.Context, snap models.SensorSnapshot) (IngestResult, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error)
}

// AlertStream lets live clients follow emitted alerts.
type AlertStream interface {
	Subscribe() (<-chan models.Alert, func())
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Commands        Commands
	Connection      Connection
	Notifications   Notifications
	Recommendations Recommendations
	Schedule        Schedule
	Sensors         Sensors
	EventLog        EventLog
	Alerts          AlertStream
}

// Dependencies are the outbound adapters the core talks to.
type Dependencies struct {
	Transport CommandTransport
	Link      LinkProbe
	Device    DeviceClient
	History   SensorRecorder
	Sinks     []AlertSink
	Log       *logger.Logger
}

type Options struct {
	DeviceID   string
	Queue      QueueOptions
	SigningKey string
	TokenTTL   time.Duration
}

// NewService wires the repository layer and adapters into concrete services.
func NewService(repos *repository.Repository, deps Dependencies, opts Options) *Service {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	connection := NewConnectionModeService(repos.KV, repos.EventRepo, deps.Device, deps.Link, log)
	queue := NewCommandQueueService(repos.KV, repos.EventRepo, deps.Transport, connection, log, opts.Queue)
	connection.AddListener(func(models.ConnectionView) {
		if connection.Reachable() {
			queue.TriggerFlush()
		}
	})

	hub := NewAlertHub()
	sinks := append([]AlertSink{NewEventLogSink(repos.EventRepo), hub}, deps.Sinks...)
	alerts := NewMultiSink(log, sinks...)

	notifications := NewNotificationService(repos.KV, alerts, log)
	recommendations := NewRecommendationService(repos.KV, alerts, log)

	schedule := NewSilentScheduleService(repos.KV, repos.EventRepo, queue, opts.DeviceID, log)
	queue.AddListener(schedule.HandleQueueEvent)

	return &Service{
		Authorization:   NewAuthService(repos.Auth, opts.SigningKey, opts.TokenTTL),
		Commands:        queue,
		Connection:      connection,
		Notifications:   notifications,
		Recommendations: recommendations,
		Schedule:        schedule,
		Sensors:         NewSensorService(deps.History, notifications, recommendations, opts.DeviceID, log),
		EventLog:        NewEventLogService(repos.EventRepo),
		Alerts:          hub,
	}
}

// Load restores persisted queue and mode state before background loops start.
func (s *Service) Load(ctx context.Context) error {
	if err := s.Commands.Load(ctx); err != nil {
		return err
	}
	return s.Connection.Load(ctx)
}
