package service

import (
	"testing"

	"sop-platform/tenant-svc/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowContains(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		at         string
		want       bool
	}{
		{"inside", "12:00", "23:00", "19:30", true},
		{"at start", "12:00", "23:00", "12:00", true},
		{"at end", "12:00", "23:00", "23:00", true},
		{"before", "12:00", "23:00", "11:59", false},
		{"after", "12:00", "23:00", "23:01", false},
		{"wraps after midnight", "18:00", "02:00", "01:30", true},
		{"wraps before midnight", "18:00", "02:00", "22:00", true},
		{"wraps outside", "18:00", "02:00", "03:00", false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			w, err := newWindow(domain.ReservationSettings{StartTime: testCase.start, EndTime: testCase.end})
			require.NoError(t, err)
			minute, err := parseClock(testCase.at)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, w.contains(minute))
		})
	}
}

func TestWindowSlots(t *testing.T) {
	w, err := newWindow(domain.ReservationSettings{StartTime: "22:00", EndTime: "00:30"})
	require.NoError(t, err)
	assert.Equal(t, []string{"22:00", "23:00", "00:00"}, w.slots(60))
	assert.Equal(t, []string{"22:00", "22:45", "23:30", "00:15"}, w.slots(45))
	assert.Empty(t, w.slots(0))
}

func TestNewWindowRejectsBadClock(t *testing.T) {
	_, err := newWindow(domain.ReservationSettings{StartTime: "7pm", EndTime: "23:00"})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestEnabledSettingsDefaults(t *testing.T) {
	_, err := enabledSettings(&domain.Restaurant{})
	assert.ErrorIs(t, err, domain.ErrFeatureDisabled)

	_, err = enabledSettings(&domain.Restaurant{ReservationSettings: &domain.ReservationSettings{IsEnabled: false}})
	assert.ErrorIs(t, err, domain.ErrFeatureDisabled)

	rest := &domain.Restaurant{ReservationSettings: &domain.ReservationSettings{IsEnabled: true, StartTime: "12:00", EndTime: "22:00"}}
	rs, err := enabledSettings(rest)
	require.NoError(t, err)
	assert.Equal(t, defaultAdvanceBookingDays, rs.AdvanceBookingDays)
	assert.Equal(t, defaultMaxGuests, rs.MaxGuests)
	assert.Zero(t, rest.ReservationSettings.MaxGuests)
}
