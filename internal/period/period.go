package period

import (
	"fmt"
	"strings"
	"time"
)

// Preset names accepted by Resolve.
const (
	ThisMonth    = "this-month"
	LastMonth    = "last-month"
	Last3Months  = "last-3-months"
	Last6Months  = "last-6-months"
	Last12Months = "last-12-months"
	YearToDate   = "ytd"
	Custom       = "custom"
)

// DefaultPreset is used when neither a preset nor explicit dates are given.
const DefaultPreset = Last12Months

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Range is an inclusive span of whole calendar months.
// From is the first day of the first month, To the last day of the last month.
type Range struct {
	Preset string    `json:"preset"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

// Until returns the exclusive upper bound of the range.
func (r Range) Until() time.Time {
	return r.To.AddDate(0, 0, 1)
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.Until())
}

// Months lists the first day of every month in the range.
func (r Range) Months() []time.Time {
	var months []time.Time
	for m := MonthStart(r.From); !m.After(r.To); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
	}
	return months
}

func (r Range) String() string {
	return fmt.Sprintf("%s..%s", r.From.Format(dayLayout), r.To.Format(dayLayout))
}

// MonthStart truncates t to the first day of its month in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last day of t's month in UTC.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// ParseDate accepts YYYY-MM-DD or YYYY-MM.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or YYYY-MM", s)
	}
	return t, nil
}

// Resolve turns a preset, or an explicit from/to pair, into a Range relative to now.
// Explicit dates without a preset imply the custom preset.
func Resolve(preset, from, to string, now time.Time) (Range, error) {
	preset = strings.ToLower(strings.TrimSpace(preset))
	if preset == "" {
		if from != "" || to != "" {
			preset = Custom
		} else {
			preset = DefaultPreset
		}
	}

	current := MonthStart(now)
	r := Range{Preset: preset}

	switch preset {
	case ThisMonth:
		r.From = current
	case LastMonth:
		r.From = current.AddDate(0, -1, 0)
		r.To = MonthEnd(r.From)
		return r, nil
	case Last3Months:
		r.From = current.AddDate(0, -2, 0)
	case Last6Months:
		r.From = current.AddDate(0, -5, 0)
	case Last12Months:
		r.From = current.AddDate(0, -11, 0)
	case YearToDate:
		r.From = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case Custom:
		if from == "" || to == "" {
			return Range{}, fmt.Errorf("custom range requires both from and to")
		}
		f, err := ParseDate(from)
		if err != nil {
			return Range{}, err
		}
		t, err := ParseDate(to)
		if err != nil {
			return Range{}, err
		}
		r.From = MonthStart(f)
		r.To = MonthEnd(t)
		if r.To.Before(r.From) {
			return Range{}, fmt.Errorf("range start %s is after end %s", from, to)
		}
		return r, nil
	default:
		return Range{}, fmt.Errorf("unknown date range preset %q", preset)
	}

	r.To = MonthEnd(current)
	return r, nil
}
