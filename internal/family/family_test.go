package family

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famtime/backend/internal/storage/models"
)

var testMembers = []Member{
	{Name: "Mor", Role: "parent"},
	{Name: "Far", Role: "parent"},
	{Name: "Emma", Role: "child"},
	{Name: "Lucas", Role: "school"},
}

func ev(title string, start time.Time, dur time.Duration) models.Event {
	end := start.Add(dur)
	return models.Event{ID: "mock-" + title, Title: title, Start: start, End: &end}
}

func findMember(t *testing.T, statuses []MemberStatus, name string) MemberStatus {
	t.Helper()
	for _, s := range statuses {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no status for %s", name)
	return MemberStatus{}
}

func TestOverviewStatuses(t *testing.T) {
	// Wednesday 10:00, inside school hours.
	now := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)

	events := []models.Event{
		ev("Møde med Mor", now.Add(-30*time.Minute), time.Hour),
		ev("Emma fodbold", now.Add(4*time.Hour), time.Hour),
	}

	statuses := Overview(testMembers, events, now)
	require.Len(t, statuses, 4)

	assert.Equal(t, StatusBusy, findMember(t, statuses, "Mor").Status)
	assert.Equal(t, StatusFree, findMember(t, statuses, "Far").Status)
	assert.Equal(t, StatusFree, findMember(t, statuses, "Emma").Status)
	assert.Equal(t, StatusAtSchool, findMember(t, statuses, "Lucas").Status)
}

func TestOverviewSchoolStatusOnlyDuringSchoolHours(t *testing.T) {
	evening := time.Date(2025, 1, 8, 19, 0, 0, 0, time.UTC)
	statuses := Overview(testMembers, nil, evening)
	assert.Equal(t, StatusFree, findMember(t, statuses, "Lucas").Status)

	weekend := time.Date(2025, 1, 11, 10, 0, 0, 0, time.UTC)
	statuses = Overview(testMembers, nil, weekend)
	assert.Equal(t, StatusFree, findMember(t, statuses, "Lucas").Status)
}

func TestOverviewNextEvent(t *testing.T) {
	now := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)

	events := []models.Event{
		ev("Emma fodbold", now.Add(4*time.Hour), time.Hour),
		ev("Emma tandlæge", now.Add(2*time.Hour), time.Hour),
		ev("Emma gammel aftale", now.Add(-24*time.Hour), time.Hour),
	}

	statuses := Overview(testMembers, events, now)
	emma := findMember(t, statuses, "Emma")
	assert.Equal(t, "Emma tandlæge kl. 12:00", emma.NextEvent)

	// Far is not mentioned in any event, so nothing upcoming.
	assert.Empty(t, findMember(t, statuses, "Far").NextEvent)
}

func TestOverviewWholeFamilyEventConcernsEveryone(t *testing.T) {
	now := time.Date(2025, 1, 8, 18, 30, 0, 0, time.UTC)

	events := []models.Event{ev("Aftensmad", now.Add(-10*time.Minute), time.Hour)}

	statuses := Overview(testMembers, events, now)
	for _, s := range statuses {
		assert.Equal(t, StatusBusy, s.Status, "member %s", s.Name)
	}
}

func TestOverviewWeeklyHours(t *testing.T) {
	now := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)

	events := []models.Event{
		ev("Mor yoga", now.Add(24*time.Hour), 2*time.Hour),
		// Outside the current week, must not count.
		ev("Mor kursus", now.AddDate(0, 0, 10), 3*time.Hour),
	}

	statuses := Overview(testMembers, events, now)
	mor := findMember(t, statuses, "Mor")
	assert.InDelta(t, 2.0, mor.WeeklyHours, 0.001)
	assert.InDelta(t, 96.0, mor.FreeHours, 0.001) // 14h/day * 7 - 2
}

func TestFreeSlotsBasicDay(t *testing.T) {
	// A Wednesday with one conflict for Mor at 10:00.
	day := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	events := []models.Event{
		ev("Mor møde", day.Add(10*time.Hour), time.Hour),
	}

	slots := FreeSlots(testMembers, events, day, Filters{})
	require.Len(t, slots, 14) // hourly 08-22, everyone free somewhere each hour

	ten := slots[2]
	assert.Equal(t, "10:00", ten.StartTime)
	assert.Equal(t, "11:00", ten.EndTime)
	assert.NotContains(t, ten.AvailableMembers, "Mor")
	assert.Contains(t, ten.Conflicts, "Mor møde")
}

func TestFreeSlotsOnlyFreeForAll(t *testing.T) {
	day := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	events := []models.Event{
		ev("Mor møde", day.Add(10*time.Hour), time.Hour),
	}

	slots := FreeSlots(testMembers, events, day, Filters{OnlyFreeForAll: true})
	for _, s := range slots {
		assert.Len(t, s.AvailableMembers, len(testMembers))
		assert.NotEqual(t, "10:00", s.StartTime)
	}
	assert.Len(t, slots, 13)
}

func TestFreeSlotsWeekendFilter(t *testing.T) {
	saturday := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)

	assert.Nil(t, FreeSlots(testMembers, nil, saturday, Filters{}))
	assert.NotEmpty(t, FreeSlots(testMembers, nil, saturday, Filters{IncludeWeekends: true}))
}

func TestFreeSlotsTimeOfDay(t *testing.T) {
	day := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)

	morning := FreeSlots(testMembers, nil, day, Filters{TimeOfDay: "morning"})
	require.NotEmpty(t, morning)
	for _, s := range morning {
		hour := s.StartTime[:2]
		assert.True(t, hour >= "08" && hour < "12", "slot %s is not a morning slot", s.StartTime)
	}

	evening := FreeSlots(testMembers, nil, day, Filters{TimeOfDay: "evening"})
	require.Len(t, evening, 4) // 18, 19, 20, 21
}

func TestFreeSlotsMinDurationBeyondGrid(t *testing.T) {
	day := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	assert.Nil(t, FreeSlots(testMembers, nil, day, Filters{MinDurationMin: 90}))
}

func TestWholeFamilyEventBlocksEveryoneInSlots(t *testing.T) {
	day := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	events := []models.Event{ev("Aftensmad", day.Add(18*time.Hour), time.Hour)}

	slots := FreeSlots(testMembers, events, day, Filters{})
	for _, s := range slots {
		assert.NotEqual(t, "18:00", s.StartTime)
	}
}

func TestEventEndFallsBackToOneHour(t *testing.T) {
	start := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)
	open := models.Event{ID: "a", Title: "x", Start: start}
	assert.Equal(t, start.Add(time.Hour), eventEnd(open))

	backwards := start.Add(-time.Hour)
	bad := models.Event{ID: "b", Title: "y", Start: start, End: &backwards}
	assert.Equal(t, start.Add(time.Hour), eventEnd(bad))
}
