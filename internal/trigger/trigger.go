// Package trigger computes recurring fire times for job schedules.
//
// A Schedule is pure data: Next(now) is deterministic and side-effect free,
// so trigger math is unit-testable without real clocks. Schedule implements
// robfig/cron's Schedule interface, which lets the scheduler service hand
// triggers straight to a cron.Cron instance.
package trigger

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	KindInterval Kind = "interval"
	KindDaily    Kind = "daily"
	KindWeekly   Kind = "weekly"
)

// Schedule is the tagged schedule variant persisted with each job.
//
// Interval uses Every; Daily uses Hour/Minute; Weekly uses Weekday/Hour/Minute.
type Schedule struct {
	Kind    Kind
	Every   time.Duration
	Hour    int
	Minute  int
	Weekday time.Weekday
}

// Next returns the first fire time strictly after t.
//
// A daily or weekly schedule whose wall-clock exactly equals t rolls to the
// next cycle. Immediate re-fire would race a trigger that just fired.
func (s Schedule) Next(t time.Time) time.Time {
	switch s.Kind {
	case KindInterval:
		if s.Every <= 0 {
			return time.Time{}
		}
		return t.Add(s.Every)
	case KindDaily:
		next := time.Date(t.Year(), t.Month(), t.Day(), s.Hour, s.Minute, 0, 0, t.Location())
		if !next.After(t) {
			next = next.AddDate(0, 0, 1)
		}
		return next
	case KindWeekly:
		days := (int(s.Weekday) - int(t.Weekday()) + 7) % 7
		next := time.Date(t.Year(), t.Month(), t.Day()+days, s.Hour, s.Minute, 0, 0, t.Location())
		if !next.After(t) {
			next = next.AddDate(0, 0, 7)
		}
		return next
	default:
		return time.Time{}
	}
}

// String renders a short human-readable form for logs and listings.
func (s Schedule) String() string {
	switch s.Kind {
	case KindInterval:
		return fmt.Sprintf("every %s", s.Every)
	case KindDaily:
		return fmt.Sprintf("daily at %02d:%02d", s.Hour, s.Minute)
	case KindWeekly:
		return fmt.Sprintf("weekly on %s at %02d:%02d", strings.ToLower(s.Weekday.String()[:3]), s.Hour, s.Minute)
	default:
		return "unknown"
	}
}

// ---- JSON codec (persisted in job records) ----

type scheduleJSON struct {
	Kind   Kind   `json:"kind"`
	Every  string `json:"every,omitempty"`
	Hour   int    `json:"hour,omitempty"`
	Minute int    `json:"minute,omitempty"`
	Day    string `json:"day,omitempty"`
}

func (s Schedule) MarshalJSON() ([]byte, error) {
	out := scheduleJSON{Kind: s.Kind, Hour: s.Hour, Minute: s.Minute}
	switch s.Kind {
	case KindInterval:
		out.Every = s.Every.String()
		out.Hour, out.Minute = 0, 0
	case KindWeekly:
		out.Day = strings.ToLower(s.Weekday.String()[:3])
	case KindDaily:
	default:
		return nil, fmt.Errorf("marshal schedule: unknown kind %q", s.Kind)
	}
	return json.Marshal(out)
}

func (s *Schedule) UnmarshalJSON(b []byte) error {
	var in scheduleJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	sched := Schedule{Kind: in.Kind, Hour: in.Hour, Minute: in.Minute}
	switch in.Kind {
	case KindInterval:
		d, err := time.ParseDuration(in.Every)
		if err != nil || d <= 0 {
			return fmt.Errorf("unmarshal schedule: bad interval %q", in.Every)
		}
		sched.Every = d
	case KindWeekly:
		wd, ok := parseWeekday(in.Day)
		if !ok {
			return fmt.Errorf("unmarshal schedule: bad weekday %q", in.Day)
		}
		sched.Weekday = wd
	case KindDaily:
	default:
		return fmt.Errorf("unmarshal schedule: unknown kind %q", in.Kind)
	}
	*s = sched
	return nil
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
	"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
	"sat": time.Saturday,
}

func parseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) > 3 {
		s = s[:3]
	}
	wd, ok := weekdays[s]
	return wd, ok
}
