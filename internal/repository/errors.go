// Package repository implements MySQL persistence for users, refresh
// tokens, seats and reservations.  Sentinel errors defined here let the
// service layer distinguish expected failures (missing rows, unique
// violations) from infrastructure problems.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrEmailExists is returned when a user with the same email exists.
	ErrEmailExists = errors.New("email already exists")
	// ErrUserNotFound is returned when a user lookup yields no rows.
	ErrUserNotFound = errors.New("user not found")
	// ErrSeatNotFound is returned when a seat lookup yields no rows.
	ErrSeatNotFound = errors.New("seat not found")
	// ErrDuplicateSeatNumber is returned when another seat already uses
	// the requested seat number.
	ErrDuplicateSeatNumber = errors.New("seat number already exists")
	// ErrReservationNotFound is returned when a reservation lookup yields
	// no rows.
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrSeatTaken is returned when the (seat, date) unique index rejects
	// a second ACTIVE reservation.
	ErrSeatTaken = errors.New("seat already reserved for this date")
	// ErrUserHasReservation is returned when the (user, date) unique index
	// rejects a second ACTIVE reservation for the same person.
	ErrUserHasReservation = errors.New("user already has a reservation for this date")
	// ErrInvalidToken is returned for unknown, expired or revoked refresh
	// tokens.
	ErrInvalidToken = errors.New("invalid refresh token")
)

const mysqlDuplicateEntry = 1062

// duplicateKey reports whether err is a MySQL duplicate-entry error and,
// if so, the name of the violated index as it appears in the message
// ("Duplicate entry '…' for key 'reservations.uq_reservations_seat_date'").
func duplicateKey(err error) (string, bool) {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return "", false
	}
	msg := me.Message
	i := strings.LastIndex(msg, "for key '")
	if i < 0 {
		return "", true
	}
	key := strings.TrimSuffix(msg[i+len("for key '"):], "'")
	if dot := strings.LastIndex(key, "."); dot >= 0 {
		key = key[dot+1:]
	}
	return key, true
}

// reservationConflict maps a unique violation on the reservations table to
// the matching sentinel.  Unknown errors are returned unchanged.
func reservationConflict(err error) error {
	key, ok := duplicateKey(err)
	if !ok {
		return err
	}
	if key == "uq_reservations_user_date" {
		return ErrUserHasReservation
	}
	return ErrSeatTaken
}
