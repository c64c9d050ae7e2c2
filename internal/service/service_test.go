package service

import (
	"context"
	"testing"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository"
)

type nopAuthRepo struct{}

func (nopAuthRepo) Create(string, string) (int, error)             { return 1, nil }
func (nopAuthRepo) GetByUsername(string) (*models.Operator, error) { return nil, nil }

func TestNewService_WiresQueueToConnectionMode(t *testing.T) {
	t.Parallel()

	repos := &repository.Repository{KV: newMemKV(), EventRepo: &fakeEventRepo{}, Auth: nopAuthRepo{}}
	tr := &fakeTransport{}
	dev := &fakeDevice{status: models.ConnectionStatus{ConnectionState: models.StateOnline}}
	s := NewService(repos, Dependencies{
		Transport: tr,
		Link:      &fakeReach{ok: true},
		Device:    dev,
	}, Options{DeviceID: "bot"})
	ctx := context.Background()

	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Connection.SetMode(ctx, models.ModeOffline); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	res, err := s.Commands.SendCommand(ctx, "bot", models.ActionRestart, nil)
	if err != nil || !res.Queued {
		t.Fatalf("OFFLINE must queue: %+v %v", res, err)
	}
	if tr.callCount() != 0 {
		t.Fatal("nothing may be sent while OFFLINE")
	}

	if err := s.Connection.SetMode(ctx, models.ModeAuto); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if report := s.Commands.Flush(ctx); report.Delivered != 1 {
		t.Fatalf("flush after returning to AUTO: %+v", report)
	}
	s.Connection.(*ConnectionModeService).Wait()
}

func TestNewService_AlertsReachSubscribers(t *testing.T) {
	t.Parallel()

	repos := &repository.Repository{KV: newMemKV(), EventRepo: &fakeEventRepo{}, Auth: nopAuthRepo{}}
	s := NewService(repos, Dependencies{Transport: &fakeTransport{}, Device: &fakeDevice{}}, Options{DeviceID: "bot"})
	n := s.Notifications.(*NotificationService)
	n.now = newFakeClock(noon).Now

	ch, cancel := s.Alerts.Subscribe()
	defer cancel()

	res, err := s.Sensors.Ingest(context.Background(), models.SensorSnapshot{SoilConductivity: f64(3100)})
	if err != nil || len(res.Alerts) != 1 {
		t.Fatalf("Ingest = %+v, %v", res, err)
	}
	if a := <-ch; a.Key != "soil_conductivity_critical" {
		t.Fatalf("subscriber got %+v", a)
	}
}
