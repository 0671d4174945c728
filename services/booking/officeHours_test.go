package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOfficeHours(t *testing.T) {
	hours, err := ParseOfficeHours("mon-fri=08:30-18:00; sat=10:00-14:00; sun=closed")
	require.NoError(t, err)

	for _, d := range []time.Weekday{time.Monday, time.Wednesday, time.Friday} {
		dh, open := hours.For(d)
		require.True(t, open, d.String())
		assert.Equal(t, DayHours{Open: 8*60 + 30, Close: 18 * 60}, dh)
	}
	sat, open := hours.For(time.Saturday)
	require.True(t, open)
	assert.Equal(t, DayHours{Open: 10 * 60, Close: 14 * 60}, sat)

	_, open = hours.For(time.Sunday)
	assert.False(t, open)
}

func TestParseOfficeHours_UnlistedDaysAreClosed(t *testing.T) {
	hours, err := ParseOfficeHours("tue=09:00-12:00")
	require.NoError(t, err)
	_, open := hours.For(time.Monday)
	assert.False(t, open)
	_, open = hours.For(time.Tuesday)
	assert.True(t, open)
}

func TestParseOfficeHours_EmptyMeansDefault(t *testing.T) {
	hours, err := ParseOfficeHours("  ")
	require.NoError(t, err)
	assert.Equal(t, DefaultOfficeHours(), hours)
}

func TestParseOfficeHours_Errors(t *testing.T) {
	for _, raw := range []string{
		"mon",
		"funday=09:00-17:00",
		"mon=09:00",
		"mon=17:00-09:00",
		"mon=9am-5pm",
	} {
		_, err := ParseOfficeHours(raw)
		assert.Error(t, err, raw)
	}
}

func TestParseDateTime(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)

	got, err := ParseDateTime("2025-12-23 10:00", loc)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, loc, got.Location())

	got, err = ParseDateTime("2025-12-23T15:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour(), "zoned input is converted to the office location")

	got, err = ParseDateTime("2025-12-23T10:30", loc)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Minute())

	_, err = ParseDateTime("tomorrow at 2pm", loc)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestClockHelpers(t *testing.T) {
	m, err := ParseClockToMinutes("09:45")
	require.NoError(t, err)
	assert.Equal(t, 585, m)
	assert.Equal(t, "09:45", MinutesToClock(m))

	_, err = ParseClockToMinutes("25:00")
	assert.Error(t, err)

	assert.Equal(t, "APT202512230007", ConfirmationNumber(time.Date(2025, 12, 23, 9, 0, 0, 0, time.UTC), 7))
}
