// Package hours decides whether a venue is open from the free-text weekly
// hours places providers return, e.g. "Monday: 9:00 AM – 10:00 PM".
//
// Every function here is total: malformed text is logged at debug level and
// treated as closed.
package hours

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chrisdamba/whattoeat/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	enDash    = "–"
	closed    = "Closed"
	allDay    = "Open 24 hours"
	daySep    = ": "
	rangeSep  = ", "
	meridiemA = "AM"
	meridiemP = "PM"
)

var (
	ErrNoDayLine    = errors.New("no hours line for day")
	ErrBadTime      = errors.New("unparseable time")
	ErrBadRange     = errors.New("malformed time range")
	errNoSeparator  = errors.New("missing day separator")
	weekdayPrefixes = func() map[time.Weekday]string {
		m := make(map[time.Weekday]string, 7)
		for d := time.Sunday; d <= time.Saturday; d++ {
			m[d] = strings.ToLower(d.String()) + ":"
		}
		return m
	}()
)

// IsOpenNow reports whether h describes a venue open at now. A provider's
// OpenNow flag is returned as-is; otherwise today's weekday line is parsed.
func IsOpenNow(h *models.OpeningHours, now time.Time) bool {
	if h == nil {
		return false
	}
	if h.OpenNow != nil {
		return *h.OpenNow
	}

	line, err := DayLine(h.WeekdayText, now.Weekday())
	if err != nil {
		log.Debug().Err(err).Str("weekday", now.Weekday().String()).Msg("No opening hours for today")
		return false
	}
	return LineOpen(line, now)
}

// DayLine finds the line for day. Lines that start with a weekday name are
// matched by name so Monday-first lists work; without any names the list is
// indexed Sunday-first.
func DayLine(lines []string, day time.Weekday) (string, error) {
	named := false
	for _, line := range lines {
		lower := strings.ToLower(strings.TrimSpace(line))
		for d, prefix := range weekdayPrefixes {
			if strings.HasPrefix(lower, prefix) {
				named = true
				if d == day {
					return line, nil
				}
			}
		}
	}
	if !named && int(day) < len(lines) && strings.TrimSpace(lines[day]) != "" {
		return lines[day], nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoDayLine, day)
}

// LineOpen evaluates a single "<Weekday>: <ranges>" line at now's wall-clock
// time, ignoring which weekday the line names.
func LineOpen(line string, now time.Time) bool {
	open, err := lineOpen(line, Clock(now))
	if err != nil {
		log.Debug().Err(err).Str("line", line).Msg("Error parsing opening hours")
		return false
	}
	return open
}

// Clock encodes t's wall-clock time as HHMM, e.g. 14:30 is 1430.
func Clock(t time.Time) int {
	return t.Hour()*100 + t.Minute()
}

func lineOpen(line string, now int) (bool, error) {
	_, hoursText, found := strings.Cut(line, daySep)
	if !found {
		return false, fmt.Errorf("%w in %q", errNoSeparator, line)
	}
	hoursText = strings.TrimSpace(hoursText)
	switch {
	case hoursText == closed:
		return false, nil
	case strings.EqualFold(hoursText, allDay):
		// has no dash to split on, so it is matched before range parsing
		return true, nil
	}

	for _, r := range strings.Split(hoursText, rangeSep) {
		start, end, err := ParseRange(r)
		if err != nil {
			log.Debug().Err(err).Str("range", r).Msg("Skipping time range")
			continue
		}
		if InRange(now, start, end) {
			return true, nil
		}
	}
	return false, nil
}

// ParseRange splits "9:00 AM – 5:00 PM" (en dash, or a plain hyphen when no
// en dash is present) into HHMM bounds.
func ParseRange(r string) (start, end int, err error) {
	sep := "-"
	if strings.Contains(r, enDash) {
		sep = enDash
	}
	parts := strings.Split(r, sep)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadRange, r)
	}
	if start, err = ParseClock(parts[0]); err != nil {
		return 0, 0, err
	}
	if end, err = ParseClock(parts[1]); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ParseClock turns "2:30 PM" into 1430 and "12:15 AM" into 15.
//
// A time without AM/PM and an hour below 12 is taken as PM. Providers often
// write "5:30 – 10:30 PM" and leave the meridiem off the first bound, so this
// guess is usually right, but it misreads a genuine bare morning time such
// as "9:00" as 21:00.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	isPM := strings.Contains(upper, meridiemP)
	isAM := !isPM && strings.Contains(upper, meridiemA)

	timePart := upper
	if isPM {
		timePart = strings.Replace(timePart, meridiemP, "", 1)
	} else if isAM {
		timePart = strings.Replace(timePart, meridiemA, "", 1)
	}
	timePart = strings.TrimSpace(timePart)

	hourStr, minuteStr, found := strings.Cut(timePart, ":")
	if !found {
		return 0, fmt.Errorf("%w: %q", ErrBadTime, s)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(hourStr))
	if err != nil || hour < 0 || hour > 24 {
		return 0, fmt.Errorf("%w: hour in %q", ErrBadTime, s)
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(minuteStr))
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: minutes in %q", ErrBadTime, s)
	}

	switch {
	case isPM && hour < 12:
		hour += 12
	case isAM && hour == 12:
		hour = 0
	case !isPM && !isAM && hour < 12:
		hour += 12
	}
	return hour*100 + minutes, nil
}

// InRange reports whether t falls within [start, end], all HHMM.
//
// Ranges starting at 20:00 or later and ending before noon run past
// midnight. A range starting after 10:00 whose end is below 10:00 has lost
// its PM marker and gets twelve hours added to the end. Anything else is a
// plain same-day range; both bounds are inclusive.
//
// The overnight test runs before the missing-PM correction on purpose:
// checked the other way round, "10:00 PM – 2:00 AM" could never be open.
func InRange(t, start, end int) bool {
	switch {
	case start >= 2000 && end < 1200:
		return t >= start || t <= end
	case start > 1000 && end < 1000:
		return t >= start && t <= end+1200
	default:
		return t >= start && t <= end
	}
}
