// Package family computes the family-status overview and free-time slots
// from the shared event set.
package family

import (
	"strings"
	"time"

	"github.com/famtime/backend/internal/storage/models"
)

// Member is a configured family member.
type Member struct {
	Name string `json:"name" yaml:"name"`
	Role string `json:"role" yaml:"role"` // "parent", "child" or "school"
}

// Member status values.
const (
	StatusFree     = "free"
	StatusBusy     = "busy"
	StatusAtSchool = "at_school"
)

// MemberStatus is the live overview entry for one member.
type MemberStatus struct {
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	NextEvent   string  `json:"next_event,omitempty"`
	WeeklyHours float64 `json:"weekly_hours"`
	FreeHours   float64 `json:"free_hours"`
}

// The day window used for availability: 08:00 to 22:00.
const (
	dayStartHour = 8
	dayEndHour   = 22
)

// Overview derives each member's current status, next event and weekly hours
// from the event set. An event concerns a member when its title or notes
// mention the member's name; an event mentioning no configured member is
// treated as a whole-family event and concerns everyone.
func Overview(members []Member, events []models.Event, now time.Time) []MemberStatus {
	out := make([]MemberStatus, 0, len(members))

	weekStart := startOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)

	for _, m := range members {
		mine := memberEvents(m, members, events)

		status := StatusFree
		if m.Role == "school" && isSchoolHours(now) {
			status = StatusAtSchool
		}
		for _, ev := range mine {
			if covers(ev, now) {
				status = StatusBusy
				break
			}
		}

		var next *models.Event
		for i := range mine {
			ev := mine[i]
			if !ev.Start.After(now) {
				continue
			}
			if next == nil || ev.Start.Before(next.Start) {
				next = &mine[i]
			}
		}

		committed := 0.0
		for _, ev := range mine {
			if ev.Start.Before(weekStart) || !ev.Start.Before(weekEnd) {
				continue
			}
			committed += eventDuration(ev).Hours()
		}

		window := float64((dayEndHour - dayStartHour) * 7)
		free := window - committed
		if free < 0 {
			free = 0
		}

		ms := MemberStatus{
			Name:        m.Name,
			Status:      status,
			WeeklyHours: committed,
			FreeHours:   free,
		}
		if next != nil {
			ms.NextEvent = next.Title + " kl. " + next.Start.Format("15:04")
		}
		out = append(out, ms)
	}

	return out
}

// Filters narrows the free-slot search.
type Filters struct {
	MinDurationMin  int    `json:"min_duration_min"`
	IncludeWeekends bool   `json:"include_weekends"`
	OnlyFreeForAll  bool   `json:"only_free_for_all"`
	TimeOfDay       string `json:"time_of_day"` // "any", "morning", "afternoon" or "evening"
}

// Slot is one free-time candidate within a day.
type Slot struct {
	ID               string   `json:"id"`
	StartTime        string   `json:"start_time"`
	EndTime          string   `json:"end_time"`
	DurationMin      int      `json:"duration_min"`
	AvailableMembers []string `json:"available_members"`
	Conflicts        []string `json:"conflicts"`
}

// FreeSlots computes hourly availability slots for the given day. Slots where
// nobody is available are omitted.
func FreeSlots(members []Member, events []models.Event, day time.Time, f Filters) []Slot {
	if !f.IncludeWeekends && isWeekend(day) {
		return nil
	}

	slotMin := 60
	if f.MinDurationMin > slotMin {
		// Hourly grid; longer minimums have no candidates.
		return nil
	}

	var slots []Slot
	for hour := dayStartHour; hour < dayEndHour; hour++ {
		if !matchesTimeOfDay(hour, f.TimeOfDay) {
			continue
		}

		slotStart := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
		slotEnd := slotStart.Add(time.Hour)

		var available []string
		var conflicts []string
		for _, m := range members {
			busy := false
			for _, ev := range memberEvents(m, members, events) {
				if overlaps(ev, slotStart, slotEnd) {
					busy = true
					conflicts = appendUnique(conflicts, ev.Title)
				}
			}
			if !busy {
				available = append(available, m.Name)
			}
		}

		if len(available) == 0 {
			continue
		}
		if f.OnlyFreeForAll && len(available) < len(members) {
			continue
		}

		slots = append(slots, Slot{
			ID:               slotStart.Format("2006-01-02-15"),
			StartTime:        slotStart.Format("15:04"),
			EndTime:          slotEnd.Format("15:04"),
			DurationMin:      slotMin,
			AvailableMembers: available,
			Conflicts:        conflicts,
		})
	}

	return slots
}

// memberEvents selects the events concerning one member: events mentioning
// the member by name, plus events mentioning no configured member at all.
func memberEvents(m Member, all []Member, events []models.Event) []models.Event {
	var out []models.Event
	for _, ev := range events {
		if mentions(ev, m.Name) {
			out = append(out, ev)
			continue
		}
		shared := true
		for _, other := range all {
			if mentions(ev, other.Name) {
				shared = false
				break
			}
		}
		if shared {
			out = append(out, ev)
		}
	}
	return out
}

func mentions(ev models.Event, name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(strings.ToLower(ev.Title), name) ||
		strings.Contains(strings.ToLower(ev.Notes), name)
}

func covers(ev models.Event, at time.Time) bool {
	return overlaps(ev, at, at.Add(time.Nanosecond))
}

func overlaps(ev models.Event, start, end time.Time) bool {
	return ev.Start.Before(end) && eventEnd(ev).After(start)
}

func eventEnd(ev models.Event) time.Time {
	if ev.End != nil && ev.End.After(ev.Start) {
		return *ev.End
	}
	return ev.Start.Add(time.Hour)
}

func eventDuration(ev models.Event) time.Duration {
	return eventEnd(ev).Sub(ev.Start)
}

func matchesTimeOfDay(hour int, timeOfDay string) bool {
	switch timeOfDay {
	case "", "any":
		return true
	case "morning":
		return hour >= 6 && hour < 12
	case "afternoon":
		return hour >= 12 && hour < 18
	case "evening":
		return hour >= 18
	default:
		return true
	}
}

func isWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func isSchoolHours(now time.Time) bool {
	if isWeekend(now) {
		return false
	}
	return now.Hour() >= 8 && now.Hour() < 15
}

func startOfWeek(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday-start week
	return day.AddDate(0, 0, -offset)
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
