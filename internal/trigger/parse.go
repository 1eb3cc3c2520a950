package trigger

import (
	"fmt"
	"time"
)

// ConfigError reports invalid schedule parameters. It is surfaced to the
// lifecycle API caller before any job state is created.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("schedule config: %s: %s", e.Field, e.Reason)
}

// Params is the wire form of a schedule request.
//
// Frequency selects the variant:
//   - "hourly":   every hour (legacy shorthand for interval with hours=1)
//   - "interval": every Hours hours
//   - "daily":    at Hour:Minute
//   - "weekly":   on Day at Hour:Minute
type Params struct {
	Frequency string `json:"frequency"`
	Hours     int    `json:"hours,omitempty"`
	Hour      int    `json:"hour,omitempty"`
	Minute    int    `json:"minute,omitempty"`
	Day       string `json:"day,omitempty"`
}

// ParseParams validates schedule parameters and maps them to a Schedule.
// An unknown frequency is rejected; no job may be created from it.
func ParseParams(p Params) (Schedule, error) {
	switch p.Frequency {
	case "hourly":
		return Schedule{Kind: KindInterval, Every: time.Hour}, nil

	case "interval":
		if p.Hours < 1 {
			return Schedule{}, &ConfigError{Field: "hours", Reason: "must be >= 1"}
		}
		return Schedule{Kind: KindInterval, Every: time.Duration(p.Hours) * time.Hour}, nil

	case "daily":
		h, m, err := clockFields(p)
		if err != nil {
			return Schedule{}, err
		}
		return Schedule{Kind: KindDaily, Hour: h, Minute: m}, nil

	case "weekly":
		h, m, err := clockFields(p)
		if err != nil {
			return Schedule{}, err
		}
		day := p.Day
		if day == "" {
			day = "mon"
		}
		wd, ok := parseWeekday(day)
		if !ok {
			return Schedule{}, &ConfigError{Field: "day", Reason: fmt.Sprintf("unknown weekday %q", p.Day)}
		}
		return Schedule{Kind: KindWeekly, Weekday: wd, Hour: h, Minute: m}, nil

	case "":
		return Schedule{}, &ConfigError{Field: "frequency", Reason: "required"}
	default:
		return Schedule{}, &ConfigError{Field: "frequency", Reason: fmt.Sprintf("unknown frequency %q", p.Frequency)}
	}
}

func clockFields(p Params) (int, int, error) {
	h, m := p.Hour, p.Minute
	if h < 0 || h > 23 {
		return 0, 0, &ConfigError{Field: "hour", Reason: "must be in 0..23"}
	}
	if m < 0 || m > 59 {
		return 0, 0, &ConfigError{Field: "minute", Reason: "must be in 0..59"}
	}
	return h, m, nil
}
