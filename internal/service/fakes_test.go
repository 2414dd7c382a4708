package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/iliyamo/desk-booking/internal/clock"
	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/queue"
	"github.com/iliyamo/desk-booking/internal/repository"
	"github.com/iliyamo/desk-booking/internal/utils"
)

var (
	now   = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	today = model.NewDate(2026, 10, 18)
)

// memDB is an in-memory stand-in for MySQL.  The reservation store
// enforces the same unique indexes as the schema.
type memDB struct {
	mu     sync.Mutex
	nextID uint64
	seats  map[uint64]*model.Seat
	res    map[uint64]*model.Reservation
	users  map[uint64]*model.User
	tokens map[string]uint64
}

func newMemDB() *memDB {
	return &memDB{
		seats:  map[uint64]*model.Seat{},
		res:    map[uint64]*model.Reservation{},
		users:  map[uint64]*model.User{},
		tokens: map[string]uint64{},
	}
}

func (db *memDB) id() uint64 { db.nextID++; return db.nextID }

func (db *memDB) addSeat(number, location string, active bool) model.Seat {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := &model.Seat{ID: db.id(), SeatNumber: number, Location: location, IsActive: active}
	db.seats[s.ID] = s
	return *s
}

func (db *memDB) addUser(name string, role model.Role) model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := &model.User{ID: db.id(), Name: name, Email: strings.ToLower(name) + "@company.com", Role: role}
	db.users[u.ID] = u
	return *u
}

func (db *memDB) addReservation(userID, seatID uint64, date model.Date, status model.ReservationStatus, allDay bool) model.Reservation {
	db.mu.Lock()
	defer db.mu.Unlock()
	r := &model.Reservation{ID: db.id(), UserID: userID, SeatID: seatID, Date: date, Status: status}
	if !allDay {
		start, end := "09:00", "17:00"
		r.StartTime, r.EndTime = &start, &end
	}
	db.res[r.ID] = r
	return *r
}

func (db *memDB) status(id uint64) model.ReservationStatus {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.res[id].Status
}

func (db *memDB) activeCount(pred func(*model.Reservation) bool) int {
	n := 0
	for _, r := range db.res {
		if r.Status == model.StatusActive && pred(r) {
			n++
		}
	}
	return n
}

func (db *memDB) detail(r *model.Reservation) model.ReservationDetail {
	s := db.seats[r.SeatID]
	u := db.users[r.UserID]
	d := model.ReservationDetail{Reservation: *r}
	if s != nil {
		d.Seat = model.SeatRef{ID: s.ID, SeatNumber: s.SeatNumber, Location: s.Location, HasMonitor: s.HasMonitor}
	}
	if u != nil {
		d.User = model.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return d
}

type memSeats struct{ *memDB }

func (m memSeats) Create(_ context.Context, s *model.Seat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.seats {
		if x.SeatNumber == s.SeatNumber {
			return repository.ErrDuplicateSeatNumber
		}
	}
	s.ID = m.id()
	cp := *s
	m.seats[s.ID] = &cp
	return nil
}

func (m memSeats) GetByID(_ context.Context, id uint64) (model.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.seats[id]; ok {
		return *s, nil
	}
	return model.Seat{}, repository.ErrSeatNotFound
}

func (m memSeats) Update(_ context.Context, id uint64, p model.SeatPatch) (model.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seats[id]
	if !ok {
		return model.Seat{}, repository.ErrSeatNotFound
	}
	if p.SeatNumber != nil {
		for _, x := range m.seats {
			if x.ID != id && x.SeatNumber == *p.SeatNumber {
				return model.Seat{}, repository.ErrDuplicateSeatNumber
			}
		}
		s.SeatNumber = *p.SeatNumber
	}
	if p.Location != nil {
		s.Location = *p.Location
	}
	if p.HasMonitor != nil {
		s.HasMonitor = *p.HasMonitor
	}
	if p.Description != nil {
		s.Description = p.Description
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
	return *s, nil
}

func (m memSeats) Deactivate(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seats[id]
	if !ok {
		return repository.ErrSeatNotFound
	}
	s.IsActive = false
	return nil
}

func (m memSeats) CountActive(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.seats {
		if s.IsActive {
			n++
		}
	}
	return n, nil
}

func (m memSeats) ListAvailability(_ context.Context, date model.Date, f model.SeatFilter) ([]model.SeatAvailability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.SeatAvailability{}
	for _, s := range m.seats {
		if !s.IsActive || (f.Location != nil && s.Location != *f.Location) || (f.HasMonitor != nil && s.HasMonitor != *f.HasMonitor) {
			continue
		}
		a := model.SeatAvailability{ID: s.ID, SeatNumber: s.SeatNumber, Location: s.Location, HasMonitor: s.HasMonitor, IsAvailable: true}
		for _, r := range m.res {
			if r.SeatID == s.ID && r.Date == date && r.Status == model.StatusActive {
				u := m.users[r.UserID]
				d := r.Date
				a.IsAvailable = false
				a.ReservedDate = &d
				a.ReservedBy = &model.Occupant{Name: u.Name, Email: u.Email}
			}
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (m memSeats) ListAdmin(_ context.Context, day model.Date) ([]model.AdminSeat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.AdminSeat{}
	for _, s := range m.seats {
		if !s.IsActive {
			continue
		}
		a := model.AdminSeat{Seat: *s}
		for _, r := range m.res {
			if r.SeatID != s.ID || r.Status != model.StatusActive {
				continue
			}
			a.TotalReservations++
			if r.Date == day {
				d := m.detail(r)
				a.CurrentReservation = &d
			}
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

type memReservations struct{ *memDB }

// conflictFor mimics the two unique indexes over ACTIVE rows.
func (m memReservations) conflictFor(r *model.Reservation) error {
	if r.Status != model.StatusActive {
		return nil
	}
	for _, x := range m.res {
		if x.ID == r.ID || x.Status != model.StatusActive || x.Date != r.Date {
			continue
		}
		if x.SeatID == r.SeatID {
			return repository.ErrSeatTaken
		}
		if x.UserID == r.UserID {
			return repository.ErrUserHasReservation
		}
	}
	return nil
}

func (m memReservations) Create(_ context.Context, r *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflictFor(r); err != nil {
		return err
	}
	r.ID = m.id()
	r.CreatedAt, r.UpdatedAt = now, now
	cp := *r
	m.res[r.ID] = &cp
	return nil
}

func (m memReservations) GetByID(_ context.Context, id uint64) (model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.res[id]; ok {
		return *r, nil
	}
	return model.Reservation{}, repository.ErrReservationNotFound
}

func (m memReservations) GetDetail(_ context.Context, id uint64) (model.ReservationDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.res[id]; ok {
		return m.detail(r), nil
	}
	return model.ReservationDetail{}, repository.ErrReservationNotFound
}

func (m memReservations) SeatTaken(_ context.Context, seatID uint64, date model.Date, excludeID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeCount(func(r *model.Reservation) bool {
		return r.SeatID == seatID && r.Date == date && r.ID != excludeID
	}) > 0, nil
}

func (m memReservations) UserBooked(_ context.Context, userID uint64, date model.Date, excludeID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeCount(func(r *model.Reservation) bool {
		return r.UserID == userID && r.Date == date && r.ID != excludeID
	}) > 0, nil
}

func (m memReservations) Update(_ context.Context, r *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflictFor(r); err != nil {
		return err
	}
	cp := *r
	m.res[r.ID] = &cp
	return nil
}

func (m memReservations) Transition(_ context.Context, id uint64, from, to model.ReservationStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.res[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	return true, nil
}

func (m memReservations) List(_ context.Context, f model.ReservationFilter) ([]model.ReservationDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ReservationDetail{}
	for _, r := range m.res {
		if f.UserID != nil && r.UserID != *f.UserID {
			continue
		}
		if f.SeatID != nil && r.SeatID != *f.SeatID {
			continue
		}
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		if f.Date != nil && r.Date != *f.Date {
			continue
		}
		out = append(out, m.detail(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m memReservations) ActiveForSeatFrom(_ context.Context, seatID uint64, from model.Date) ([]model.ReservationDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ReservationDetail{}
	for _, r := range m.res {
		if r.SeatID == seatID && r.Status == model.StatusActive && !r.Date.Before(from) {
			out = append(out, m.detail(r))
		}
	}
	return out, nil
}

func (m memReservations) CompleteExpired(_ context.Context, day model.Date) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	yesterday := day.AddDays(-1)
	for _, r := range m.res {
		if r.Status == model.StatusActive && (r.Date.Before(day) || (r.Date == yesterday && r.AllDay())) {
			r.Status = model.StatusCompleted
			n++
		}
	}
	return n, nil
}

type memUsers struct{ *memDB }

func (m memUsers) Create(_ context.Context, name, email, password string, role model.Role, cost int) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	u := &model.User{ID: m.id(), Name: name, Email: email, PasswordHash: hash, Role: role}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = repository.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (m memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return *u, nil
	}
	return model.User{}, repository.ErrUserNotFound
}

func (m memUsers) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m memUsers) ListSummaries(_ context.Context, role model.Role, search string) ([]model.UserSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.UserSummary{}
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name+" "+u.Email), strings.ToLower(search)) {
			continue
		}
		uid := u.ID
		out = append(out, model.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role,
			ActiveReservations: m.activeCount(func(r *model.Reservation) bool { return r.UserID == uid })})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type memTokens struct{ *memDB }

func (m memTokens) Save(_ context.Context, userID uint64, hash string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[hash] = userID
	return nil
}

func (m memTokens) Consume(_ context.Context, hash string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uid, ok := m.tokens[hash]
	if !ok {
		return 0, repository.ErrInvalidToken
	}
	delete(m.tokens, hash)
	return uid, nil
}

func (m memTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h, uid := range m.tokens {
		if uid == userID {
			delete(m.tokens, h)
		}
	}
	return nil
}

type memStats struct{ *memDB }

func (m memStats) CountReservations(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.res), nil
}

func (m memStats) CountActiveOn(_ context.Context, day model.Date) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeCount(func(r *model.Reservation) bool { return r.Date == day }), nil
}

func (m memStats) DailyActive(_ context.Context, from, to model.Date) ([]model.DailyCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[model.Date]int{}
	for _, r := range m.res {
		if r.Status == model.StatusActive && !r.Date.Before(from) && !r.Date.After(to) {
			counts[r.Date]++
		}
	}
	out := []model.DailyCount{}
	for d, n := range counts {
		out = append(out, model.DailyCount{Date: d, Reservations: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m memStats) TopSeats(_ context.Context, from, to model.Date, limit int) ([]model.SeatPopularity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[uint64]int{}
	for _, r := range m.res {
		if r.Status == model.StatusActive && !r.Date.Before(from) && !r.Date.After(to) {
			counts[r.SeatID]++
		}
	}
	out := []model.SeatPopularity{}
	for id, n := range counts {
		s := m.seats[id]
		out = append(out, model.SeatPopularity{SeatID: id, Location: s.Location, SeatNumber: s.SeatNumber, Reservations: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Reservations != out[j].Reservations {
			return out[i].Reservations > out[j].Reservations
		}
		return out[i].SeatNumber < out[j].SeatNumber
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// failingReservations breaks every call with errDown.
type failingReservations struct{ memReservations }

var errDown = errors.New("connection refused")

func (failingReservations) CompleteExpired(context.Context, model.Date) (int64, error) {
	return 0, errDown
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, ev queue.ReservationEvent) error {
	return m.Called(ctx, ev).Error(0)
}

// fixture wires every service over one memDB.
type fixture struct {
	db           *memDB
	sweeper      *Sweeper
	reservations *ReservationService
	seats        *SeatService
	stats        *StatsService
	auth         *AuthService
}

func newFixture(events EventPublisher) *fixture {
	db := newMemDB()
	clk := clock.Fixed(now)
	log := zap.NewNop()
	sw := NewSweeper(memReservations{db}, clk, events, log)
	return &fixture{
		db:           db,
		sweeper:      sw,
		reservations: NewReservationService(memSeats{db}, memReservations{db}, sw, clk, events, log),
		seats:        NewSeatService(memSeats{db}, memReservations{db}, sw, clk, log),
		stats:        NewStatsService(memSeats{db}, memUsers{db}, memStats{db}, sw, clk, log),
		auth: NewAuthService(AuthConfig{JWTSecret: "test", AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4},
			memUsers{db}, memTokens{db}, log),
	}
}

func principal(u model.User) model.Principal { return model.Principal{UserID: u.ID, Role: u.Role} }

func strPtr(s string) *string { return &s }
