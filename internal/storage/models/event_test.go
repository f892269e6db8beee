package models

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalCanonicalShape(t *testing.T) {
	data := []byte(`{
		"id": "mock-1736532000000",
		"title": "Familie middag",
		"startDate": "2025-01-10T18:00:00.000Z",
		"endDate": "2025-01-10T19:00:00.000Z",
		"location": "Hjemme",
		"notes": "Pizza"
	}`)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))

	assert.Equal(t, "mock-1736532000000", ev.ID)
	assert.Equal(t, "Familie middag", ev.Title)
	assert.Equal(t, time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC), ev.Start.UTC())
	require.NotNil(t, ev.End)
	assert.Equal(t, time.Date(2025, 1, 10, 19, 0, 0, 0, time.UTC), ev.End.UTC())
	assert.Equal(t, "Hjemme", ev.Location)
	assert.Equal(t, "Pizza", ev.Notes)
	assert.True(t, ev.Valid())
	assert.True(t, ev.IsLocal())
}

func TestUnmarshalLegacyShape(t *testing.T) {
	data := []byte(`{"id":"mock-2","title":"Film aften","date":"2025-02-01","time":"20:00"}`)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))

	assert.True(t, ev.Valid())
	assert.Equal(t, time.Date(2025, 2, 1, 20, 0, 0, 0, time.UTC), ev.Start)
	assert.Nil(t, ev.End)
}

func TestUnmarshalPrefersStartDateOverLegacy(t *testing.T) {
	data := []byte(`{"id":"mock-3","title":"x","startDate":"2025-03-01T10:00:00Z","date":"2025-02-01","time":"20:00"}`)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), ev.Start.UTC())
}

func TestUnmarshalDescriptionFallsBackToNotes(t *testing.T) {
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","title":"x","startDate":"2025-01-01T00:00:00Z","description":"besked"}`), &ev))
	assert.Equal(t, "besked", ev.Notes)
}

func TestUnmarshalNoResolvableStart(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"no dates at all", `{"title":"no date"}`},
		{"garbage startDate", `{"title":"x","startDate":"not-a-date"}`},
		{"date without time", `{"title":"x","date":"2025-01-01"}`},
		{"garbage legacy pair", `{"title":"x","date":"bad","time":"worse"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ev Event
			require.NoError(t, json.Unmarshal([]byte(tc.data), &ev))
			assert.False(t, ev.Valid())
		})
	}
}

func TestMarshalWritesBothNotesFields(t *testing.T) {
	end := time.Date(2025, 1, 10, 19, 0, 0, 0, time.UTC)
	ev := Event{
		ID:    "mock-1",
		Title: "Familie middag",
		Start: time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC),
		End:   &end,
		Notes: "Pizza",
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "Pizza", raw["notes"])
	assert.Equal(t, "Pizza", raw["description"])
	assert.Equal(t, "2025-01-10T18:00:00.000Z", raw["startDate"])
	assert.Equal(t, "2025-01-10T19:00:00.000Z", raw["endDate"])
	assert.NotContains(t, raw, "date")
	assert.NotContains(t, raw, "time")
}

func TestMarshalRoundTrip(t *testing.T) {
	ev := Event{
		ID:    "mock-42",
		Title: "Gå tur",
		Start: time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var back Event
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ev.ID, back.ID)
	assert.Equal(t, ev.Title, back.Title)
	assert.True(t, ev.Start.Equal(back.Start))
}

func TestNewLocalID(t *testing.T) {
	id := NewLocalID(time.UnixMilli(1736532000000))
	assert.Equal(t, "mock-1736532000000", id)
	assert.Regexp(t, regexp.MustCompile(`^mock-\d+$`), id)
	assert.True(t, IsLocalID(id))
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "mock-1", NormalizeID("  mock-1 "))
	assert.True(t, IsLocalID(" mock-1"))
	assert.False(t, IsLocalID("ics-feed-abc-1"))
}
