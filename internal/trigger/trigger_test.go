package trigger

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return ts
}

func TestNextInterval(t *testing.T) {
	t.Parallel()
	s := Schedule{Kind: KindInterval, Every: 2 * time.Hour}
	now := mustTime(t, "2024-01-01 10:00")
	if got := s.Next(now); !got.Equal(now.Add(2 * time.Hour)) {
		t.Fatalf("Next = %v", got)
	}
}

func TestNextDaily(t *testing.T) {
	t.Parallel()
	s := Schedule{Kind: KindDaily, Hour: 9, Minute: 0}

	tests := []struct {
		name string
		now  string
		want string
	}{
		{name: "before fire time", now: "2024-01-01 08:30", want: "2024-01-01 09:00"},
		{name: "after fire time rolls to next day", now: "2024-01-01 10:00", want: "2024-01-02 09:00"},
		{name: "exact match never re-fires immediately", now: "2024-01-01 09:00", want: "2024-01-02 09:00"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := s.Next(mustTime(t, tt.now))
			if want := mustTime(t, tt.want); !got.Equal(want) {
				t.Fatalf("Next(%s) = %v, want %v", tt.now, got, want)
			}
		})
	}
}

func TestNextDailyExactIs24hLater(t *testing.T) {
	t.Parallel()
	s := Schedule{Kind: KindDaily, Hour: 14, Minute: 30}
	now := mustTime(t, "2024-03-05 14:30")
	got := s.Next(now)
	if got.Sub(now) != 24*time.Hour {
		t.Fatalf("exact-match daily fire should be 24h later, got %v", got.Sub(now))
	}
}

func TestNextWeeklyAlwaysLandsOnWeekday(t *testing.T) {
	t.Parallel()
	s := Schedule{Kind: KindWeekly, Weekday: time.Wednesday, Hour: 9, Minute: 0}

	// 2024-01-01 is a Monday; walk all 7 "now" weekdays.
	for i := 0; i < 7; i++ {
		now := mustTime(t, "2024-01-01 10:00").AddDate(0, 0, i)
		got := s.Next(now)
		if got.Weekday() != time.Wednesday {
			t.Fatalf("Next from %s landed on %s", now.Weekday(), got.Weekday())
		}
		if !got.After(now) {
			t.Fatalf("Next(%v) = %v not strictly after now", now, got)
		}
	}
}

func TestNextWeeklySameDayPastTimeRollsWeek(t *testing.T) {
	t.Parallel()
	s := Schedule{Kind: KindWeekly, Weekday: time.Monday, Hour: 9, Minute: 0}
	now := mustTime(t, "2024-01-01 09:00") // Monday, exactly at fire time
	got := s.Next(now)
	want := mustTime(t, "2024-01-08 09:00")
	if !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}
}

func TestNextIsMonotonic(t *testing.T) {
	t.Parallel()
	s := Schedule{Kind: KindDaily, Hour: 6, Minute: 15}
	cur := mustTime(t, "2024-01-01 00:00")
	for i := 0; i < 10; i++ {
		next := s.Next(cur)
		if !next.After(cur) {
			t.Fatalf("fire sequence not increasing at step %d: %v -> %v", i, cur, next)
		}
		cur = next
	}
}

func TestParseParams(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		params  Params
		want    Schedule
		wantErr bool
	}{
		{name: "hourly", params: Params{Frequency: "hourly"}, want: Schedule{Kind: KindInterval, Every: time.Hour}},
		{name: "interval", params: Params{Frequency: "interval", Hours: 6}, want: Schedule{Kind: KindInterval, Every: 6 * time.Hour}},
		{name: "daily", params: Params{Frequency: "daily", Hour: 9, Minute: 0}, want: Schedule{Kind: KindDaily, Hour: 9}},
		{name: "weekly default day", params: Params{Frequency: "weekly", Hour: 8, Minute: 30}, want: Schedule{Kind: KindWeekly, Weekday: time.Monday, Hour: 8, Minute: 30}},
		{name: "weekly named day", params: Params{Frequency: "weekly", Day: "fri", Hour: 17, Minute: 0}, want: Schedule{Kind: KindWeekly, Weekday: time.Friday, Hour: 17}},
		{name: "unknown frequency", params: Params{Frequency: "fortnightly"}, wantErr: true},
		{name: "missing frequency", params: Params{}, wantErr: true},
		{name: "bad hours", params: Params{Frequency: "interval", Hours: 0}, wantErr: true},
		{name: "bad hour", params: Params{Frequency: "daily", Hour: 24}, wantErr: true},
		{name: "bad minute", params: Params{Frequency: "daily", Minute: 60}, wantErr: true},
		{name: "bad day", params: Params{Frequency: "weekly", Day: "someday"}, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseParams(tt.params)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				var ce *ConfigError
				if !errors.As(err, &ce) {
					t.Fatalf("expected *ConfigError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseParams: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseParams = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestScheduleJSONRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []Schedule{
		{Kind: KindInterval, Every: 3 * time.Hour},
		{Kind: KindDaily, Hour: 9, Minute: 0},
		{Kind: KindWeekly, Weekday: time.Friday, Hour: 17, Minute: 45},
	}
	for _, s := range tests {
		b, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal %v: %v", s, err)
		}
		var back Schedule
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if back != s {
			t.Fatalf("round trip %s: got %+v, want %+v", b, back, s)
		}
	}
}

func TestScheduleJSONRejectsUnknownKind(t *testing.T) {
	t.Parallel()
	var s Schedule
	if err := json.Unmarshal([]byte(`{"kind":"lunar"}`), &s); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
