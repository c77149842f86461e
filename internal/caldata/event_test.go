package caldata

import (
	"testing"
	"time"

	"github.com/anhofer/libgroupdav/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storedVevent = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:event-1\r\n" +
	"SUMMARY:Standup\r\n" +
	"DTSTART:20240401T090000Z\r\n" +
	"DTEND:20240401T091500Z\r\n" +
	"ORGANIZER;CN=Alice:mailto:alice@example.com\r\n" +
	"ATTENDEE;CN=Bob;PARTSTAT=DECLINED:mailto:bob@example.com\r\n" +
	"BEGIN:VALARM\r\n" +
	"ACTION:DISPLAY\r\n" +
	"DESCRIPTION:Reminder\r\n" +
	"TRIGGER:-PT10M\r\n" +
	"END:VALARM\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestDecodeEvent(t *testing.T) {
	event, err := DecodeEvent(storedVevent)
	require.NoError(t, err)

	assert.Equal(t, "event-1", event.UID)
	assert.Equal(t, "Standup", event.Summary)
	require.NotNil(t, event.Start)
	assert.False(t, event.Start.DateOnly)
	assert.False(t, event.AllDay())

	require.NotNil(t, event.Organizer)
	assert.Equal(t, "alice@example.com", event.Organizer.Email)
	require.Len(t, event.Attendees, 1)
	assert.Equal(t, "DECLINED", event.Attendees[0].Status)

	require.NotNil(t, event.ReminderBefore)
	assert.Equal(t, 10*time.Minute, *event.ReminderBefore)
}

func TestDecodeAllDayEvent(t *testing.T) {
	data := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//Test//EN\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:event-2\r\n" +
		"DTSTART;VALUE=DATE:20240401\r\n" +
		"DTEND;VALUE=DATE:20240402\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	event, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.True(t, event.AllDay())
	assert.Equal(t, "20240401", event.Start.Time.Format("20060102"))
}

func TestDecodeEventZonedStart(t *testing.T) {
	data := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//Test//EN\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:event-4\r\n" +
		"DTSTART;TZID=America/New_York:20240110T100000\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	event, err := DecodeEvent(data)
	require.NoError(t, err)
	require.NotNil(t, event.Start)

	// 10:00 Eastern in January is 15:00 UTC; the digits are wall-clock
	// time in the named zone, not UTC.
	want := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	assert.True(t, event.Start.Time.Equal(want), "got %s", event.Start.Time)
}

func TestEncodeEventEmptyPatchIsStable(t *testing.T) {
	out, err := EncodeEvent(storedVevent, "event-1", record.EventPatch{})
	require.NoError(t, err)

	// storedVevent has no DTSTAMP; re-encode supplies one.
	assert.Contains(t, out, "DTSTAMP:")

	for _, line := range []string{
		"SUMMARY:Standup",
		"DTSTART:20240401T090000Z",
		"DTEND:20240401T091500Z",
		"mailto:alice@example.com",
		"mailto:bob@example.com",
		"TRIGGER:-PT10M",
	} {
		assert.Contains(t, out, line)
	}
}

func TestEncodeEventImpliedEnd(t *testing.T) {
	start := record.Date(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))

	// A new date-only start with no end gets the next calendar day,
	// crossing the year boundary here.
	out, err := EncodeEvent("", "event-3", record.EventPatch{
		Start: record.Set(start),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20241231")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20250101")

	// An explicit end wins over the default.
	end := record.Date(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	out, err = EncodeEvent("", "event-3", record.EventPatch{
		Start: record.Set(start),
		End:   record.Set(end),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "DTEND;VALUE=DATE:20250102")

	// A timed start gets no implied end.
	timed := record.Timestamp(time.Date(2024, 12, 31, 9, 0, 0, 0, time.UTC))
	out, err = EncodeEvent("", "event-3", record.EventPatch{
		Start: record.Set(timed),
	})
	require.NoError(t, err)
	assert.NotContains(t, out, "DTEND")
}

func TestEncodeEventClearReminder(t *testing.T) {
	out, err := EncodeEvent(storedVevent, "event-1", record.EventPatch{
		ReminderBefore: record.Clear[time.Duration](),
	})
	require.NoError(t, err)
	assert.NotContains(t, out, "VALARM")
	assert.NotContains(t, out, "TRIGGER")
}

func TestEncodeEventRecurrenceRuleVerbatim(t *testing.T) {
	out, err := EncodeEvent(storedVevent, "event-1", record.EventPatch{
		RecurrenceRule: record.Set("FREQ=MONTHLY;INTERVAL=2;BYMONTHDAY=15"),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "RRULE:FREQ=MONTHLY;INTERVAL=2;BYMONTHDAY=15")
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "PT15M", want: 15 * time.Minute},
		{in: "-PT15M", want: -15 * time.Minute},
		{in: "-P1DT2H", want: -(26 * time.Hour)},
		{in: "P2W", want: 14 * 24 * time.Hour},
		{in: "PT1H30M10S", want: time.Hour + 30*time.Minute + 10*time.Second},
		{in: "-PT0S", want: 0},
		{in: "15M", wantErr: true},
		{in: "PTXM", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDuration(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNegativeTrigger(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 15 * time.Minute, want: "-PT15M"},
		{in: time.Hour, want: "-PT1H"},
		{in: 90 * time.Minute, want: "-PT1H30M"},
		{in: 45 * time.Second, want: "-PT45S"},
		{in: 0, want: "-PT0S"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, negativeTrigger(tt.in))
	}
}
