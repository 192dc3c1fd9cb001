package service

import (
	"testing"

	"sop-platform/tenant-svc/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Al Sharq", "al-sharq"},
		{"  Burger   House  ", "burger-house"},
		{"Cafe\tNine", "cafe-nine"},
		{"pizza", "pizza"},
		{"Joe's Diner!", "joe-s-diner"},
		{"مطعم Sham 24", "sham-24"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			got := Slugify(testCase.name)
			assert.Equal(t, testCase.want, got)
			assert.Regexp(t, slugPattern, got)
		})
	}

	assert.Empty(t, Slugify("مطعم الشام"))
	assert.Regexp(t, slugPattern, generatedSlug())
}

func TestValidateReservationSettings(t *testing.T) {
	valid := domain.ReservationSettings{StartTime: "12:00", EndTime: "23:00", SlotDuration: 30, MaxGuests: 8, IsEnabled: true}

	tests := []struct {
		name    string
		mutate  func(*domain.ReservationSettings)
		wantErr bool
	}{
		{"valid", func(*domain.ReservationSettings) {}, false},
		{"overnight", func(rs *domain.ReservationSettings) { rs.StartTime, rs.EndTime = "20:00", "02:00" }, false},
		{"bad start", func(rs *domain.ReservationSettings) { rs.StartTime = "25:00" }, true},
		{"empty window", func(rs *domain.ReservationSettings) { rs.EndTime = rs.StartTime }, true},
		{"zero slot", func(rs *domain.ReservationSettings) { rs.SlotDuration = 0 }, true},
		{"negative guests", func(rs *domain.ReservationSettings) { rs.MaxGuests = -1 }, true},
		{"disabled without hours", func(rs *domain.ReservationSettings) {
			*rs = domain.ReservationSettings{IsEnabled: false}
		}, false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			rs := valid
			testCase.mutate(&rs)
			err := validateReservationSettings(rs)
			if testCase.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidationFailed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrderTotal(t *testing.T) {
	items := []domain.OrderItem{
		{DishID: 1, Quantity: 2, Price: 15},
		{DishID: 2, Quantity: 1, Price: 7.5},
	}
	assert.Equal(t, 37.5, OrderTotal(items))
	assert.Zero(t, OrderTotal(nil))
}

func TestAverageRating(t *testing.T) {
	assert.Zero(t, averageRating(nil))
	assert.Equal(t, 4.3, averageRating([]domain.Rating{{Rating: 5}, {Rating: 4}, {Rating: 4}}))
}
