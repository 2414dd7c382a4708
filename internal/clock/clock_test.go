package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/desk-booking/internal/model"
)

func TestToday_UsesClockLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// 20:00 UTC on the 17th is already the 18th in Tokyo.
	instant := time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, model.NewDate(2026, 10, 17), Today(Fixed(instant)))
	assert.Equal(t, model.NewDate(2026, 10, 18), Today(Fixed(instant.In(tokyo))))
}

func TestSystem_DefaultsToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, System{}.Now().Location())
}
