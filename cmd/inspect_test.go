package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/service"
)

type staticEventLog struct {
	events []models.DeviceEvent
	last   service.LogFilter
}

func (s *staticEventLog) List(ctx context.Context, f service.LogFilter) ([]models.DeviceEvent, error) {
	s.last = f
	return s.events, nil
}

func TestRecentEvents_BuildsWindowFilter(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	log := &staticEventLog{events: []models.DeviceEvent{{EventID: "c", Type: models.EventCommandDropped}}}

	got, err := recentEvents(context.Background(), log, now, time.Hour, "COMMAND_DROPPED", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "c" {
		t.Fatalf("unexpected events: %+v", got)
	}
	want := service.LogFilter{From: now.Add(-time.Hour), To: now, Type: "COMMAND_DROPPED", Limit: 2}
	if !log.last.From.Equal(want.From) || !log.last.To.Equal(want.To) || log.last.Type != want.Type || log.last.Limit != want.Limit {
		t.Fatalf("filter=%+v, want %+v", log.last, want)
	}
}

func TestPrintQueue(t *testing.T) {
	var buf bytes.Buffer
	items := []models.Command{
		{ID: "0123456789abcdef", DeviceID: "bantay-01", Action: models.ActionSetVolume, Params: map[string]any{"level": 5}, Attempts: 2},
		{ID: "short", DeviceID: "bantay-01", Action: models.ActionRestart},
	}
	if err := printQueue(&buf, items); err != nil {
		t.Fatalf("printQueue: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"01234567", "set-volume", `{"level":5}`, "restart", "2 pending"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
