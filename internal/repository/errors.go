// Package repository implements the data access layer on MySQL.  Each
// entity gets its own repo struct holding the *sql.DB; methods with a Tx
// suffix run inside a caller-owned transaction so handlers can compose
// multi-table writes atomically.
package repository

import (
	"errors"
	"strings"
)

// ErrSeatTaken is returned when a requested seat already has an active
// ticket for the slot, either detected by the pre-check or by the unique
// key on (active_slot_id, seat_id) at insert time.
var ErrSeatTaken = errors.New("seat already booked")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (code 1062).  The driver wraps the server message, so a substring match
// on the code is the pragmatic check.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
