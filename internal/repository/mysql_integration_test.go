package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/iliyamo/desk-booking/internal/database"
	"github.com/iliyamo/desk-booking/internal/model"
)

// setupMySQL starts a throwaway MySQL 8 server, applies the embedded
// migrations and returns the connection.
func setupMySQL(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test; skipped with -short")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "root",
			"MYSQL_DATABASE":      "desks",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("3306/tcp"),
			wait.ForLog("port: 3306  MySQL Community Server"),
		).WithDeadline(3 * time.Minute),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "start mysql container")
	t.Cleanup(func() {
		if err := c.Terminate(ctx); err != nil {
			t.Logf("terminate mysql container: %v", err)
		}
	})

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	var db *sql.DB
	for i := 0; i < 10; i++ {
		if db, err = database.Open("root", "root", host, port.Port(), "desks"); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "connect to mysql")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func TestMySQL_ReservationLifecycle(t *testing.T) {
	db := setupMySQL(t)
	ctx := context.Background()

	users := NewUserRepo(db)
	seats := NewSeatRepo(db)
	res := NewReservationRepo(db)
	stats := NewStatsRepo(db)

	alice, err := users.Create(ctx, "Alice", "Alice@Company.com ", "password123", model.RoleUser, 4)
	require.NoError(t, err)
	bob, err := users.Create(ctx, "Bob", "bob@company.com", "password123", model.RoleUser, 4)
	require.NoError(t, err)
	_, err = users.Create(ctx, "Dup", "alice@company.com", "password123", model.RoleUser, 4)
	assert.ErrorIs(t, err, ErrEmailExists)

	a1 := model.Seat{SeatNumber: "A1", Location: "Floor 1 - Open Space", HasMonitor: true, IsActive: true}
	a2 := model.Seat{SeatNumber: "A2", Location: "Floor 1 - Open Space", IsActive: true}
	require.NoError(t, seats.Create(ctx, &a1))
	require.NoError(t, seats.Create(ctx, &a2))
	assert.ErrorIs(t, seats.Create(ctx, &model.Seat{SeatNumber: "A1", Location: "x", IsActive: true}), ErrDuplicateSeatNumber)

	today := model.NewDate(2026, 10, 18)

	first := model.Reservation{UserID: alice, SeatID: a1.ID, Date: today}
	require.NoError(t, res.Create(ctx, &first))
	assert.Equal(t, model.StatusActive, first.Status)
	assert.True(t, first.Date.Equal(today))

	t.Run("unique indexes", func(t *testing.T) {
		err := res.Create(ctx, &model.Reservation{UserID: bob, SeatID: a1.ID, Date: today})
		assert.ErrorIs(t, err, ErrSeatTaken)
		err = res.Create(ctx, &model.Reservation{UserID: alice, SeatID: a2.ID, Date: today})
		assert.ErrorIs(t, err, ErrUserHasReservation)
	})

	t.Run("availability", func(t *testing.T) {
		avail, err := seats.ListAvailability(ctx, today, model.SeatFilter{})
		require.NoError(t, err)
		require.Len(t, avail, 2)
		assert.False(t, avail[0].IsAvailable)
		require.NotNil(t, avail[0].ReservedBy)
		assert.Equal(t, "alice@company.com", avail[0].ReservedBy.Email)
		assert.True(t, avail[1].IsAvailable)
	})

	t.Run("cancel then rebook", func(t *testing.T) {
		changed, err := res.Transition(ctx, first.ID, model.StatusActive, model.StatusCancelled)
		require.NoError(t, err)
		assert.True(t, changed)
		changed, err = res.Transition(ctx, first.ID, model.StatusActive, model.StatusCancelled)
		require.NoError(t, err)
		assert.False(t, changed, "second transition finds nothing ACTIVE")

		again := model.Reservation{UserID: bob, SeatID: a1.ID, Date: today}
		require.NoError(t, res.Create(ctx, &again))
		taken, err := res.SeatTaken(ctx, a1.ID, today, 0)
		require.NoError(t, err)
		assert.True(t, taken)
		taken, err = res.SeatTaken(ctx, a1.ID, today, again.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("sweep", func(t *testing.T) {
		start, end := "09:00", "17:00"
		timed := model.Reservation{UserID: alice, SeatID: a2.ID, Date: today.AddDays(-1), StartTime: &start, EndTime: &end}
		allDay := model.Reservation{UserID: bob, SeatID: a2.ID, Date: today.AddDays(-2)}
		require.NoError(t, res.Create(ctx, &timed))
		require.NoError(t, res.Create(ctx, &allDay))

		n, err := res.CompleteExpired(ctx, today)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		n, err = res.CompleteExpired(ctx, today)
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = res.CompleteExpired(ctx, today.AddDays(1))
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("list and stats", func(t *testing.T) {
		active := model.StatusActive
		list, err := res.List(ctx, model.ReservationFilter{Status: &active})
		require.NoError(t, err)
		require.Len(t, list, 0, "everything before tomorrow was swept")

		all, err := res.List(ctx, model.ReservationFilter{UserID: &bob})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.True(t, !all[0].Date.Before(all[1].Date), "newest date first")
		assert.Equal(t, "Bob", all[0].User.Name)

		total, err := stats.CountReservations(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, total)
	})

	t.Run("refresh tokens are single use", func(t *testing.T) {
		tokens := NewTokenRepo(db)
		require.NoError(t, tokens.Save(ctx, alice, "live", time.Now().Add(time.Hour)))
		require.NoError(t, tokens.Save(ctx, alice, "stale", time.Now().Add(-time.Minute)))
		require.NoError(t, tokens.Save(ctx, alice, "other", time.Now().Add(time.Hour)))

		uid, err := tokens.Consume(ctx, "live")
		require.NoError(t, err)
		assert.Equal(t, alice, uid)
		_, err = tokens.Consume(ctx, "live")
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = tokens.Consume(ctx, "stale")
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = tokens.Consume(ctx, "missing")
		assert.ErrorIs(t, err, ErrInvalidToken)

		require.NoError(t, tokens.RevokeAllForUser(ctx, alice))
		_, err = tokens.Consume(ctx, "other")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
