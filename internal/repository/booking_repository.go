package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Booking status values.  A booking is created booked and can only move to
// cancelled.
const (
	StatusBooked    = "B"
	StatusCancelled = "C"
)

// Booking mirrors the 'bookings' table.
type Booking struct {
	ID        uint64    `json:"id"`
	Reference string    `json:"reference"`
	UserID    uint64    `json:"-"`
	SlotID    uint64    `json:"slot_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// BookingHistoryItem is one row of a user's booking history with the show
// details and seats joined in.
type BookingHistoryItem struct {
	Booking
	MovieName     string    `json:"movie"`
	LanguageName  string    `json:"language"`
	CinemaName    string    `json:"cinema"`
	CinemaAddress string    `json:"address"`
	CityName      string    `json:"city"`
	StartsAt      time.Time `json:"starts_at"`
	PriceCents    uint32    `json:"price_cents"`
	Seats         []Seat    `json:"seats"`
}

// ErrBookingNotFound indicates the booking does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepo manages persistence for bookings and their tickets.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying sql.DB so the handler can run the booking
// creation and its ticket inserts in one transaction.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// OccupiedSeatIDsTx returns the subset of seatIDs that already carry an
// active ticket for the slot.  Matching ticket rows are locked so two
// concurrent bookings of the same seat serialize; the unique key on
// (active_slot_id, seat_id) backstops the gap for rows that do not exist
// yet.
func (r *BookingRepo) OccupiedSeatIDsTx(ctx context.Context, tx *sql.Tx, slotID uint64, seatIDs []uint64) ([]uint64, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	q := "SELECT seat_id FROM tickets WHERE active_slot_id = ? AND seat_id IN (" +
		inPlaceholders(len(seatIDs)) + ") FOR UPDATE"
	args := append([]interface{}{slotID}, uint64Args(seatIDs)...)
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// CreateTx inserts the booking row inside the caller's transaction, minting
// a fresh reference, and fills in ID and Reference.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, userID, slotID uint64) (*Booking, error) {
	b := &Booking{
		Reference: uuid.NewString(),
		UserID:    userID,
		SlotID:    slotID,
		Status:    StatusBooked,
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO bookings (reference, user_id, slot_id, status) VALUES (?,?,?,?)",
		b.Reference, b.UserID, b.SlotID, b.Status)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	b.ID = uint64(id)
	b.CreatedAt = time.Now().UTC()
	return b, nil
}

// CreateTicketsBulkTx inserts one ticket per seat with active_slot_id set,
// in a single multi-row statement.  A duplicate on the active-seat unique
// key means another booking won the race; that surfaces as ErrSeatTaken.
func (r *BookingRepo) CreateTicketsBulkTx(ctx context.Context, tx *sql.Tx, bookingID, slotID uint64, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := "INSERT INTO tickets (booking_id, slot_id, seat_id, active_slot_id) VALUES "
	args := make([]interface{}, 0, len(seatIDs)*4)
	for i, seatID := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, bookingID, slotID, seatID, slotID)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return ErrSeatTaken
		}
		return err
	}
	return nil
}

// GetForCancelTx loads and locks a booking row together with its slot start
// time so the cancellation checks and the status flip are atomic.
func (r *BookingRepo) GetForCancelTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (*Booking, time.Time, error) {
	const q = `SELECT b.id, b.reference, b.user_id, b.slot_id, b.status, b.created_at, b.updated_at, s.starts_at
	           FROM bookings b JOIN slots s ON s.id = b.slot_id
	           WHERE b.id = ? FOR UPDATE`
	var (
		b        Booking
		startsAt time.Time
	)
	err := tx.QueryRowContext(ctx, q, bookingID).Scan(
		&b.ID, &b.Reference, &b.UserID, &b.SlotID, &b.Status, &b.CreatedAt, &b.UpdatedAt, &startsAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, ErrBookingNotFound
		}
		return nil, time.Time{}, err
	}
	return &b, startsAt, nil
}

// CancelTx flips the booking to cancelled and clears active_slot_id on its
// tickets, which frees the seats while keeping the ticket rows for history.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	if _, err := tx.ExecContext(ctx,
		"UPDATE bookings SET status=? WHERE id=?", StatusCancelled, bookingID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE tickets SET active_slot_id=NULL WHERE booking_id=?", bookingID)
	return err
}

// OccupiedSeatIDs returns the seats with an active ticket for the slot,
// outside any transaction.  Slot detail views use it to mark availability.
func (r *BookingRepo) OccupiedSeatIDs(ctx context.Context, slotID uint64) (map[uint64]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT seat_id FROM tickets WHERE active_slot_id = ?", slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64]bool)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// ListByUser returns the user's bookings newest first, each with show
// details and its seats.  Cancelled bookings are included; their tickets
// remain linked through booking_id even though active_slot_id is NULL.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingHistoryItem, error) {
	const q = `SELECT b.id, b.reference, b.user_id, b.slot_id, b.status, b.created_at, b.updated_at,
	                  m.name, l.name, c.name, c.address, ci.name, s.starts_at, s.price_cents
	           FROM bookings b
	           JOIN slots s ON s.id = b.slot_id
	           JOIN movies m ON m.id = s.movie_id
	           JOIN languages l ON l.id = s.language_id
	           JOIN cinemas c ON c.id = s.cinema_id
	           JOIN cities ci ON ci.id = c.city_id
	           WHERE b.user_id = ?
	           ORDER BY b.created_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]BookingHistoryItem, 0)
	index := make(map[uint64]int)
	ids := make([]uint64, 0)
	for rows.Next() {
		var it BookingHistoryItem
		if err := rows.Scan(&it.ID, &it.Reference, &it.UserID, &it.SlotID, &it.Status, &it.CreatedAt, &it.UpdatedAt,
			&it.MovieName, &it.LanguageName, &it.CinemaName, &it.CinemaAddress, &it.CityName, &it.StartsAt, &it.PriceCents); err != nil {
			return nil, err
		}
		it.Seats = make([]Seat, 0)
		index[it.ID] = len(items)
		ids = append(ids, it.ID)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	tq := `SELECT t.booking_id, se.id, se.cinema_id, se.row_num, se.seat_num
	       FROM tickets t JOIN seats se ON se.id = t.seat_id
	       WHERE t.booking_id IN (` + inPlaceholders(len(ids)) + `)
	       ORDER BY se.row_num, se.seat_num`
	trows, err := r.db.QueryContext(ctx, tq, uint64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var (
			bookingID uint64
			s         Seat
		)
		if err := trows.Scan(&bookingID, &s.ID, &s.CinemaID, &s.RowNum, &s.SeatNum); err != nil {
			return nil, err
		}
		if i, ok := index[bookingID]; ok {
			items[i].Seats = append(items[i].Seats, s)
		}
	}
	return items, trows.Err()
}
