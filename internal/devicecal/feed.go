package devicecal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/famtime/backend/internal/storage/models"
)

// FeedSource describes a single ICS subscription feed.
type FeedSource struct {
	ID   string
	Name string
	URL  string
}

// FeedProvider implements Provider over one or more ICS subscription feeds.
// Feeds are read-only: Create and Delete always fail, which drives callers
// onto their local fallback path.
type FeedProvider struct {
	sources []FeedSource
	client  *http.Client
}

// NewFeedProvider creates a provider over the given feeds.
func NewFeedProvider(sources []FeedSource) *FeedProvider {
	return &FeedProvider{
		sources: sources,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RequestPermission is granted whenever at least one feed is configured.
func (p *FeedProvider) RequestPermission(ctx context.Context) (bool, error) {
	return len(p.sources) > 0, nil
}

// Calendars lists one read-only calendar per configured feed.
func (p *FeedProvider) Calendars(ctx context.Context) ([]Calendar, error) {
	calendars := make([]Calendar, 0, len(p.sources))
	for _, src := range p.sources {
		calendars = append(calendars, Calendar{
			ID:       src.ID,
			Title:    src.Name,
			Writable: false,
		})
	}
	return calendars, nil
}

// Events fetches and parses the requested feeds, expanding recurring events
// into concrete occurrences within [start, end).
func (p *FeedProvider) Events(ctx context.Context, calendarIDs []string, start, end time.Time) ([]models.Event, error) {
	wanted := make(map[string]bool, len(calendarIDs))
	for _, id := range calendarIDs {
		wanted[id] = true
	}

	var events []models.Event
	for _, src := range p.sources {
		if len(wanted) > 0 && !wanted[src.ID] {
			continue
		}

		body, err := p.fetch(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("fetching feed %s: %w", src.ID, err)
		}

		feedEvents, err := expandFeed(src, body, start, end)
		if err != nil {
			return nil, fmt.Errorf("parsing feed %s: %w", src.ID, err)
		}

		events = append(events, feedEvents...)
	}

	return events, nil
}

// Create always fails: ICS subscriptions cannot be written to.
func (p *FeedProvider) Create(ctx context.Context, calendarID string, ev models.Event) (string, error) {
	return "", ErrReadOnlyCalendar
}

// Delete always fails: ICS subscriptions cannot be written to.
func (p *FeedProvider) Delete(ctx context.Context, id string) error {
	return ErrReadOnlyCalendar
}

func (p *FeedProvider) fetch(ctx context.Context, src FeedSource) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// expandFeed parses an ICS payload and expands its VEVENTs into occurrences
// within [start, end). A VEVENT that fails to parse is skipped so one bad
// entry does not lose the whole feed.
func expandFeed(src FeedSource, body []byte, start, end time.Time) ([]models.Event, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var events []models.Event
	for _, ve := range cal.Events() {
		occurrences, err := expandVEvent(src, ve, start, end)
		if err != nil {
			log.Printf("Skipping unparseable event in feed %s: %v", src.ID, err)
			continue
		}
		events = append(events, occurrences...)
	}

	return events, nil
}

func expandVEvent(src FeedSource, ve *ical.VEvent, start, end time.Time) ([]models.Event, error) {
	uid := ""
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		uid = p.Value
	}
	if uid == "" {
		return nil, fmt.Errorf("missing UID")
	}

	evStart, err := ve.GetStartAt()
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", uid, err)
	}
	evEnd, err := ve.GetEndAt()
	if err != nil || evEnd.Before(evStart) {
		// No usable DTEND; fall back to a one-hour duration.
		evEnd = evStart.Add(time.Hour)
	}
	duration := evEnd.Sub(evStart)

	base := models.Event{Title: uid}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil && p.Value != "" {
		base.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		base.Notes = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		base.Location = p.Value
	}

	rruleProp := ve.GetProperty(ical.ComponentPropertyRrule)
	if rruleProp == nil || rruleProp.Value == "" {
		if evStart.Before(end) && evStart.Add(duration).After(start) {
			return []models.Event{occurrence(src, base, uid, evStart, duration)}, nil
		}
		return nil, nil
	}

	rule, err := rrule.StrToRRule(rruleProp.Value)
	if err != nil {
		return nil, fmt.Errorf("event %s: parsing RRULE: %w", uid, err)
	}
	rule.DTStart(evStart)

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range exDates(ve) {
		set.ExDate(ex)
	}

	var events []models.Event
	for _, occ := range set.Between(start, end, true) {
		events = append(events, occurrence(src, base, uid, occ, duration))
	}
	return events, nil
}

func occurrence(src FeedSource, base models.Event, uid string, start time.Time, duration time.Duration) models.Event {
	ev := base
	ev.ID = fmt.Sprintf("ics-%s-%s-%d", src.ID, uid, start.Unix())
	ev.Start = start
	end := start.Add(duration)
	ev.End = &end
	return ev
}

// exDates collects EXDATE values. The property can appear multiple times and
// each occurrence can carry a comma-separated list.
func exDates(ve *ical.VEvent) []time.Time {
	var out []time.Time
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out = append(out, t)
			}
		}
	}
	return out
}

// parseICSTime parses the basic ICS date and date-time forms used by EXDATE.
func parseICSTime(v string) (time.Time, error) {
	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.Parse("20060102T150405", v)
	default:
		return time.Parse("20060102", v)
	}
}
