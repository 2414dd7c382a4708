// Command seed loads demo accounts, the office seat inventory and a few
// upcoming reservations.  Running it twice is harmless: existing rows are
// left untouched.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/desk-booking/internal/clock"
	"github.com/iliyamo/desk-booking/internal/config"
	"github.com/iliyamo/desk-booking/internal/database"
	"github.com/iliyamo/desk-booking/internal/logger"
	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/repository"
)

type seedUser struct {
	name, email, password string
	role                  model.Role
}

var users = []seedUser{
	{"Admin User", "admin@company.com", "admin123", model.RoleAdmin},
	{"John Doe", "john@company.com", "password123", model.RoleUser},
	{"Jane Smith", "jane@company.com", "password123", model.RoleUser},
	{"Mike Johnson", "mike@company.com", "password123", model.RoleUser},
	{"Sarah Wilson", "sarah@company.com", "password123", model.RoleUser},
}

type seedSeat struct {
	number, location string
	monitor          bool
}

var seats = []seedSeat{
	{"A1", "Floor 1 - Open Space", true},
	{"A2", "Floor 1 - Open Space", true},
	{"A3", "Floor 1 - Open Space", false},
	{"A4", "Floor 1 - Open Space", true},
	{"A5", "Floor 1 - Open Space", false},
	{"A6", "Floor 1 - Open Space", true},
	{"B1", "Floor 1 - Quiet Zone", true},
	{"B2", "Floor 1 - Quiet Zone", true},
	{"B3", "Floor 1 - Quiet Zone", false},
	{"B4", "Floor 1 - Quiet Zone", true},
	{"C1", "Floor 2 - Collaboration Area", false},
	{"C2", "Floor 2 - Collaboration Area", true},
	{"C3", "Floor 2 - Collaboration Area", false},
	{"C4", "Floor 2 - Collaboration Area", true},
	{"C5", "Floor 2 - Collaboration Area", false},
	{"D1", "Floor 2 - Window Side", true},
	{"D2", "Floor 2 - Window Side", true},
	{"D3", "Floor 2 - Window Side", true},
	{"D4", "Floor 2 - Window Side", false},
	{"E1", "Floor 3 - Executive Area", true},
	{"E2", "Floor 3 - Executive Area", true},
	{"E3", "Floor 3 - Executive Area", true},
}

type seedReservation struct {
	email, seat string
	offset      int // days from today
	start, end  string
	notes       string
}

var reservations = []seedReservation{
	{"john@company.com", "A1", 0, "09:00", "17:00", "Working on the new project"},
	{"jane@company.com", "A6", 0, "10:00", "16:00", "Client calls scheduled"},
	{"john@company.com", "A2", 1, "08:30", "17:30", "Early start for presentation prep"},
	{"mike@company.com", "C1", 1, "09:00", "17:00", "Team collaboration day"},
	{"sarah@company.com", "D1", 2, "09:00", "17:00", "Need the window view for video calls"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("seed failed", zap.Error(err))
		os.Exit(1)
	}
	log.Info("seed completed")
}

func run(cfg config.Config, log *zap.Logger) error {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	userRepo := repository.NewUserRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	resRepo := repository.NewReservationRepo(db)

	for _, u := range users {
		_, err := userRepo.Create(ctx, u.name, u.email, u.password, u.role, cfg.BcryptCost)
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			log.Info("user exists", zap.String("email", u.email))
		case err != nil:
			return fmt.Errorf("user %s: %w", u.email, err)
		default:
			log.Info("created user", zap.String("email", u.email), zap.String("role", string(u.role)))
		}
	}

	for _, s := range seats {
		desc := fmt.Sprintf("%s - Seat %s", s.location, s.number)
		seat := model.Seat{SeatNumber: s.number, Location: s.location, HasMonitor: s.monitor, Description: &desc, IsActive: true}
		err := seatRepo.Create(ctx, &seat)
		switch {
		case errors.Is(err, repository.ErrDuplicateSeatNumber):
			log.Info("seat exists", zap.String("seat", s.number))
		case err != nil:
			return fmt.Errorf("seat %s: %w", s.number, err)
		default:
			log.Info("created seat", zap.String("seat", s.number))
		}
	}

	today := clock.Today(clock.System{Loc: cfg.Location()})
	for _, r := range reservations {
		u, err := userRepo.GetByEmail(ctx, r.email)
		if err != nil {
			return fmt.Errorf("reservation user %s: %w", r.email, err)
		}
		seat, err := seatRepo.GetByNumber(ctx, r.seat)
		if err != nil {
			return fmt.Errorf("reservation seat %s: %w", r.seat, err)
		}
		start, end, notes := r.start, r.end, r.notes
		res := model.Reservation{
			UserID:    u.ID,
			SeatID:    seat.ID,
			Date:      today.AddDays(r.offset),
			StartTime: &start,
			EndTime:   &end,
			Notes:     &notes,
		}
		err = resRepo.Create(ctx, &res)
		switch {
		case errors.Is(err, repository.ErrSeatTaken), errors.Is(err, repository.ErrUserHasReservation):
			log.Info("reservation skipped", zap.String("seat", r.seat), zap.Stringer("date", res.Date))
		case err != nil:
			return fmt.Errorf("reservation %s: %w", r.seat, err)
		default:
			log.Info("created reservation", zap.Uint64("id", res.ID), zap.String("seat", r.seat))
		}
	}
	return nil
}
