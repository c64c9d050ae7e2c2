package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/service"
)

func TestLogsHandler_List(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	logs := &mockEventLog{resp: []models.DeviceEvent{
		{EventID: "e1", OccurredAt: now, Type: models.EventCommandQueued, Description: "Command queued: set-volume"},
		{EventID: "e2", OccurredAt: now.Add(time.Second), Type: models.EventModeChange, Description: "Connection mode set to OFFLINE"},
	}}
	s := &service.Service{Authorization: &mockAuth{parseID: 99}, EventLog: logs}
	r := newTestRouter(s)

	q := "/api/v1/logs/?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) +
		"&type=mode_change&limit=50"
	w := doJSON(r, http.MethodGet, q, "")
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                  `json:"count"`
		Events []models.DeviceEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if !logs.last.From.Equal(now) || !logs.last.To.Equal(now.Add(2*time.Second)) {
		t.Fatalf("bounds not forwarded: %+v", logs.last)
	}
	if logs.last.Type != "mode_change" || logs.last.Limit != 50 {
		t.Fatalf("type/limit not forwarded: %+v", logs.last)
	}
}

func TestLogsHandler_DateOnlyToCoversWholeDay(t *testing.T) {
	logs := &mockEventLog{}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, EventLog: logs}

	w := doJSON(newTestRouter(s), http.MethodGet, "/api/v1/logs/?from=2026-03-01&to=2026-03-02", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	wantTo := time.Date(2026, 3, 2, 23, 59, 59, 999999999, time.UTC)
	if !logs.last.To.Equal(wantTo) {
		t.Fatalf("to=%v, want %v", logs.last.To, wantTo)
	}
	if !logs.last.From.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("from=%v", logs.last.From)
	}
}

func TestLogsHandler_Errors(t *testing.T) {
	cases := []struct {
		name    string
		query   string
		listErr error
		want    int
	}{
		{"bad from", "?from=notatime", nil, http.StatusBadRequest},
		{"bad to", "?to=31/12/2026", nil, http.StatusBadRequest},
		{"bad limit", "?limit=-3", nil, http.StatusBadRequest},
		{"limit too large", "?limit=5000", nil, http.StatusBadRequest},
		{"service rejects filter", "?type=bogus", fmt.Errorf("%w: unknown event type", service.ErrInvalidFilter), http.StatusBadRequest},
		{"storage failure", "", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logs := &mockEventLog{err: tc.listErr}
			s := &service.Service{Authorization: &mockAuth{parseID: 1}, EventLog: logs}
			w := doJSON(newTestRouter(s), http.MethodGet, "/api/v1/logs/"+tc.query, "")
			if w.Code != tc.want {
				t.Fatalf("status=%d, want %d (body=%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}
