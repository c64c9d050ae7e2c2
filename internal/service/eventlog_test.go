package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
)

func TestLogFilter_Normalize(t *testing.T) {
	t.Parallel()

	manila := time.FixedZone("PHT", 8*3600)
	cases := []struct {
		name     string
		in       LogFilter
		wantErr  bool
		wantFrom time.Time
		wantType string
	}{
		{name: "empty filter", in: LogFilter{}},
		{
			name:     "local bounds become UTC",
			in:       LogFilter{From: time.Date(2026, 3, 1, 8, 0, 0, 0, manila)},
			wantFrom: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{name: "type is trimmed and upper-cased", in: LogFilter{Type: " command_dropped "}, wantType: models.EventCommandDropped},
		{name: "unknown type", in: LogFilter{Type: "TELEMETRY"}, wantErr: true},
		{name: "negative limit", in: LogFilter{Limit: -1}, wantErr: true},
		{
			name: "inverted range",
			in: LogFilter{
				From: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := tc.in.normalize()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidFilter) {
					t.Fatalf("expected ErrInvalidFilter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.From.Equal(tc.wantFrom) || got.Type != tc.wantType {
				t.Fatalf("got %+v", got)
			}
			if !got.From.IsZero() && got.From.Location() != time.UTC {
				t.Fatalf("from not in UTC: %v", got.From.Location())
			}
		})
	}
}

func TestEventLogService_List_PassesNormalizedFilter(t *testing.T) {
	t.Parallel()

	repo := &fakeEventRepo{events: []models.DeviceEvent{{EventID: "e1", Type: models.EventForceSync}}}
	svc := NewEventLogService(repo)

	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("UTC+5", 5*3600))
	out, err := svc.List(context.Background(), LogFilter{From: from, Type: "force_sync"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].EventID != "e1" {
		t.Fatalf("unexpected events: %+v", out)
	}
	q := repo.gotQuery
	if !q.From.Equal(time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC)) || !q.To.IsZero() {
		t.Fatalf("bounds: from=%v to=%v", q.From, q.To)
	}
	if q.Type != models.EventForceSync {
		t.Fatalf("type=%q", q.Type)
	}
}

func TestEventLogService_List_LimitKeepsNewest(t *testing.T) {
	t.Parallel()

	repo := &fakeEventRepo{events: []models.DeviceEvent{{EventID: "1"}, {EventID: "2"}, {EventID: "3"}}}
	out, err := NewEventLogService(repo).List(context.Background(), LogFilter{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.gotQuery.Limit != 2 {
		t.Fatalf("limit not passed down: %+v", repo.gotQuery)
	}
	if len(out) != 2 || out[0].EventID != "2" || out[1].EventID != "3" {
		t.Fatalf("expected the two newest, got %+v", out)
	}
}

func TestEventLogService_List_Errors(t *testing.T) {
	t.Parallel()

	repo := &fakeEventRepo{}
	svc := NewEventLogService(repo)
	if _, err := svc.List(context.Background(), LogFilter{Type: "bogus"}); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
	if repo.calls != 0 {
		t.Fatalf("repo must not be called for an invalid filter, calls=%d", repo.calls)
	}

	repo.err = errors.New("db down")
	if _, err := svc.List(context.Background(), LogFilter{}); !errors.Is(err, repo.err) {
		t.Fatalf("expected repo error to propagate, got %v", err)
	}
}
