package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type sendCall struct {
	deviceID string
	action   string
	params   map[string]any
}

type mockCommands struct {
	result  models.SendResult
	sendErr error
	status  models.QueueStatus
	pending []models.Command
	report  models.FlushReport

	sends      []sendCall
	flushCalls int
}

func (m *mockCommands) Load(ctx context.Context) error { return nil }
func (m *mockCommands) SendCommand(ctx context.Context, deviceID, action string, params map[string]any) (models.SendResult, error) {
	m.sends = append(m.sends, sendCall{deviceID: deviceID, action: action, params: params})
	return m.result, m.sendErr
}
func (m *mockCommands) Flush(ctx context.Context) models.FlushReport {
	m.flushCalls++
	return m.report
}
func (m *mockCommands) Status() models.QueueStatus                 { return m.status }
func (m *mockCommands) Pending() []models.Command                  { return m.pending }
func (m *mockCommands) Run(ctx context.Context, _ <-chan struct{}) {}

type mockConnection struct {
	view       models.ConnectionView
	setModeErr error
	syncResult models.SyncResult
	syncErr    error

	lastMode   *models.Mode
	pollCalls  int
	syncCalled int
}

func (m *mockConnection) Load(ctx context.Context) error { return nil }
func (m *mockConnection) View() models.ConnectionView    { return m.view }
func (m *mockConnection) Poll(ctx context.Context) models.ConnectionView {
	m.pollCalls++
	return m.view
}
func (m *mockConnection) SetMode(ctx context.Context, mode models.Mode) error {
	m.lastMode = &mode
	if m.setModeErr != nil {
		return m.setModeErr
	}
	m.view.Mode = mode
	m.view.ModeName = mode.String()
	return nil
}
func (m *mockConnection) ForceSync(ctx context.Context) (models.SyncResult, models.ConnectionView, error) {
	m.syncCalled++
	return m.syncResult, m.view, m.syncErr
}
func (m *mockConnection) Run(ctx context.Context, _ time.Duration) {}

type mockNotifications struct {
	prefs     models.NotificationPreferences
	updateErr error
	updated   *models.NotificationPreferencesUpdate
}

func (m *mockNotifications) Evaluate(ctx context.Context, snap models.SensorSnapshot) []models.Alert {
	return nil
}
func (m *mockNotifications) Preferences(ctx context.Context) models.NotificationPreferences {
	return m.prefs
}
func (m *mockNotifications) UpdatePreferences(ctx context.Context, u models.NotificationPreferencesUpdate) (models.NotificationPreferences, error) {
	if m.updateErr != nil {
		return models.NotificationPreferences{}, m.updateErr
	}
	m.updated = &u
	m.prefs.Categories = u.Categories
	if u.Throttle != nil {
		m.prefs.Throttle = *u.Throttle
	}
	return m.prefs, nil
}

type mockRecommendations struct {
	prefs     models.RecommendationPreferences
	updateErr error
	updated   *models.RecommendationPreferencesUpdate
}

func (m *mockRecommendations) Evaluate(ctx context.Context, snap models.SensorSnapshot) []models.Alert {
	return nil
}
func (m *mockRecommendations) Preferences(ctx context.Context) models.RecommendationPreferences {
	return m.prefs
}
func (m *mockRecommendations) UpdatePreferences(ctx context.Context, u models.RecommendationPreferencesUpdate) (models.RecommendationPreferences, error) {
	if m.updateErr != nil {
		return models.RecommendationPreferences{}, m.updateErr
	}
	m.updated = &u
	m.prefs.Actions = u.Actions
	if u.Throttle != nil {
		m.prefs.Throttle = *u.Throttle
	}
	return m.prefs, nil
}

type mockSchedule struct {
	state     models.ScheduleState
	updateErr error
}

func (m *mockSchedule) State(ctx context.Context) models.ScheduleState { return m.state }
func (m *mockSchedule) Update(ctx context.Context, enabled bool, start, end string) (models.ScheduleState, error) {
	if m.updateErr != nil {
		return models.ScheduleState{}, m.updateErr
	}
	m.state.Enabled = enabled
	m.state.StartTime = start
	m.state.EndTime = end
	return m.state, nil
}
func (m *mockSchedule) Run(ctx context.Context, _ time.Duration) {}

type mockSensors struct {
	result service.IngestResult
	err    error
	last   *models.SensorSnapshot
}

func (m *mockSensors) Ingest(ctx context.Context, snap models.SensorSnapshot) (service.IngestResult, error) {
	m.last = &snap
	return m.result, m.err
}

type mockEventLog struct {
	resp []models.DeviceEvent
	err  error
	last service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.DeviceEvent, error) {
	m.last = f
	return m.resp, m.err
}

// mockAlerts hands out one channel per subscriber and records them so tests
// can push alerts.
// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
