// Package planner provides activity templates, suggested dates and times, and
// the form-to-event construction used by the activity planner flow.
package planner

import (
	"errors"
	"fmt"
	"time"

	"github.com/famtime/backend/internal/calendar"
)

// Template is a predefined family activity.
type Template struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Emoji string `json:"emoji"`
	Type  string `json:"type"`
}

// Templates returns the built-in activity templates.
func Templates() []Template {
	return []Template{
		{ID: 1, Title: "Familie middag", Emoji: "🍽️", Type: "meal"},
		{ID: 2, Title: "Film aften", Emoji: "🎬", Type: "entertainment"},
		{ID: 3, Title: "Spil tid", Emoji: "🎮", Type: "game"},
		{ID: 4, Title: "Gå tur", Emoji: "🚶", Type: "exercise"},
		{ID: 5, Title: "Læse sammen", Emoji: "📚", Type: "educational"},
		{ID: 6, Title: "Bage/Lave mad", Emoji: "👨‍🍳", Type: "cooking"},
		{ID: 7, Title: "Besøg familie", Emoji: "👨‍👩‍👧‍👦", Type: "family"},
		{ID: 8, Title: "Sport aktivitet", Emoji: "⚽", Type: "sports"},
	}
}

// DateOption is a suggested date for a planned activity.
type DateOption struct {
	ID       int    `json:"id"`
	Label    string `json:"label"`
	Date     string `json:"date"` // YYYY-MM-DD
	Subtitle string `json:"subtitle"`
}

// TimeOption is a suggested time of day for a planned activity.
type TimeOption struct {
	ID       int    `json:"id"`
	Label    string `json:"label"`
	Time     string `json:"time"` // HH:MM
	Subtitle string `json:"subtitle"`
}

const dateLayout = "2006-01-02"

// DateOptions returns suggested dates relative to now: today, tomorrow, the
// coming weekend and the Monday of next week.
func DateOptions(now time.Time) []DateOption {
	return []DateOption{
		{ID: 1, Label: "I dag", Date: now.Format(dateLayout), Subtitle: now.Format("02-01-2006")},
		{ID: 2, Label: "I morgen", Date: now.AddDate(0, 0, 1).Format(dateLayout), Subtitle: now.AddDate(0, 0, 1).Format("02-01-2006")},
		{ID: 3, Label: "Denne weekend", Date: nextSaturday(now).Format(dateLayout), Subtitle: "Lørdag eller søndag"},
		{ID: 4, Label: "Næste uge", Date: nextMonday(now).Format(dateLayout), Subtitle: "Mandag næste uge"},
	}
}

// TimeOptions returns the suggested times of day.
func TimeOptions() []TimeOption {
	return []TimeOption{
		{ID: 1, Label: "Morgen", Time: "08:00", Subtitle: "Start dagen sammen"},
		{ID: 2, Label: "Frokost", Time: "12:00", Subtitle: "Middag pause"},
		{ID: 3, Label: "Eftermiddag", Time: "15:00", Subtitle: "Efter skole/arbejde"},
		{ID: 4, Label: "Aften", Time: "18:00", Subtitle: "Middag tid"},
		{ID: 5, Label: "Nat", Time: "20:00", Subtitle: "Hygge tid"},
	}
}

func nextSaturday(now time.Time) time.Time {
	days := int(time.Saturday) - int(now.Weekday())
	if days < 0 {
		days += 7
	}
	return now.AddDate(0, 0, days)
}

func nextMonday(now time.Time) time.Time {
	days := 8 - int(now.Weekday())
	if days > 7 {
		days -= 7
	}
	return now.AddDate(0, 0, days)
}

// Form is the planner's event creation form. Title, Date and Time are
// required; Description doubles as the event notes.
type Form struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // HH:MM
	Type        string `json:"type"`
}

// ErrMissingFields is the planner's required-field validation failure. It is
// the only user-visible failure path in the create flow.
var ErrMissingFields = errors.New("udfyld venligst alle felter")

// DefaultDuration is applied when the form carries no explicit end.
const DefaultDuration = time.Hour

// BuildEvent validates the form and constructs the event input: start from
// date+time, end one hour later, notes mirroring the description.
func BuildEvent(f Form) (calendar.EventInput, error) {
	if f.Title == "" || f.Date == "" || f.Time == "" {
		return calendar.EventInput{}, ErrMissingFields
	}

	start, err := time.Parse("2006-01-02T15:04", f.Date+"T"+f.Time)
	if err != nil {
		return calendar.EventInput{}, fmt.Errorf("parsing date/time: %w", err)
	}
	end := start.Add(DefaultDuration)

	return calendar.EventInput{
		Title: f.Title,
		Start: start,
		End:   &end,
		Notes: f.Description,
	}, nil
}
