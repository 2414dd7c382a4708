package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-booking/internal/model"
)

func TestAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	a1 := f.db.addSeat("A1", "Floor 1 - Open Space", true)
	f.db.addSeat("A2", "Floor 1 - Open Space", true)
	f.db.addSeat("B1", "Floor 1 - Quiet Zone", true)
	f.db.addSeat("X1", "Floor 1 - Open Space", false)
	u := f.db.addUser("Alice", model.RoleUser)
	f.db.addReservation(u.ID, a1.ID, today, model.StatusActive, true)
	f.db.addReservation(u.ID, a1.ID, today.AddDays(1), model.StatusCancelled, true)

	all, err := f.seats.Availability(ctx, model.Date{}, model.SeatFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3, "inactive seats are hidden")
	assert.Equal(t, "A1", all[0].SeatNumber)
	assert.False(t, all[0].IsAvailable)
	require.NotNil(t, all[0].ReservedBy)
	assert.Equal(t, "Alice", all[0].ReservedBy.Name)

	tomorrow, err := f.seats.Availability(ctx, today.AddDays(1), model.SeatFilter{})
	require.NoError(t, err)
	for _, s := range tomorrow {
		assert.True(t, s.IsAvailable, "cancelled bookings free the seat: %s", s.SeatNumber)
	}

	open := "Floor 1 - Open Space"
	yes := true
	free, err := f.seats.Availability(ctx, today, model.SeatFilter{Location: &open, Available: &yes})
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, "A2", free[0].SeatNumber)
}

func TestSeatCRUD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	u := f.db.addUser("Alice", model.RoleUser)

	seat, err := f.seats.Create(ctx, model.Seat{SeatNumber: " C1 ", Location: "Floor 2", HasMonitor: true})
	require.NoError(t, err)
	assert.Equal(t, "C1", seat.SeatNumber)
	assert.True(t, seat.IsActive)

	_, err = f.seats.Create(ctx, model.Seat{SeatNumber: "C1", Location: "Floor 2"})
	requireKind(t, KindConflict, err)
	_, err = f.seats.Create(ctx, model.Seat{})
	requireKind(t, KindInvalidInput, err)

	c2, err := f.seats.Create(ctx, model.Seat{SeatNumber: "C2", Location: "Floor 2"})
	require.NoError(t, err)
	_, err = f.seats.Update(ctx, c2.ID, model.SeatPatch{SeatNumber: strPtr("C1")})
	requireKind(t, KindConflict, err)
	_, err = f.seats.Update(ctx, 999, model.SeatPatch{Location: strPtr("x")})
	requireKind(t, KindNotFound, err)

	f.db.addReservation(u.ID, seat.ID, today.AddDays(2), model.StatusActive, true)
	requireKind(t, KindConflict, f.seats.Delete(ctx, seat.ID))

	require.NoError(t, f.seats.Delete(ctx, c2.ID))
	_, err = f.seats.Get(ctx, c2.ID)
	requireKind(t, KindNotFound, err)

	reactivated, err := f.seats.Update(ctx, c2.ID, model.SeatPatch{IsActive: &[]bool{true}[0]})
	require.NoError(t, err)
	assert.True(t, reactivated.IsActive)

	requireKind(t, KindNotFound, f.seats.Delete(ctx, 999))
}

func TestSeatDetailAndAdminList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	seat := f.db.addSeat("A1", "Floor 1", true)
	u := f.db.addUser("Alice", model.RoleUser)
	f.db.addReservation(u.ID, seat.ID, today.AddDays(-4), model.StatusActive, false)
	f.db.addReservation(u.ID, seat.ID, today, model.StatusActive, true)
	f.db.addReservation(u.ID, seat.ID, today.AddDays(3), model.StatusCancelled, true)

	d, err := f.seats.Get(ctx, seat.ID)
	require.NoError(t, err)
	require.Len(t, d.Reservations, 1)
	assert.Equal(t, today, d.Reservations[0].Date)

	inv, err := f.seats.AdminList(ctx)
	require.NoError(t, err)
	require.Len(t, inv, 1)
	require.NotNil(t, inv[0].CurrentReservation)
	assert.Equal(t, 1, inv[0].TotalReservations, "past booking was swept")
}
