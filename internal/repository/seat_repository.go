package repository

import (
	"context"
	"database/sql"
)

// Seat mirrors the 'seats' table.
type Seat struct {
	ID       uint64 `json:"id"`
	CinemaID uint64 `json:"-"`
	RowNum   uint32 `json:"row"`
	SeatNum  uint32 `json:"number"`
}

// GenerateSeatGrid produces the full rows x seatsPerRow grid for a cinema,
// row-major, all positions distinct.  It is pure so the grid shape can be
// tested without a database.
func GenerateSeatGrid(cinemaID uint64, rows, seatsPerRow uint32) []Seat {
	out := make([]Seat, 0, int(rows)*int(seatsPerRow))
	for r := uint32(1); r <= rows; r++ {
		for s := uint32(1); s <= seatsPerRow; s++ {
			out = append(out, Seat{CinemaID: cinemaID, RowNum: r, SeatNum: s})
		}
	}
	return out
}

// SeatRepo manages persistence for seats.
type SeatRepo struct {
	db *sql.DB
}

func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// CreateBulkTx inserts all seats in one multi-row statement inside the
// caller's transaction.
func (r *SeatRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, seats []Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := "INSERT INTO seats (cinema_id, row_num, seat_num) VALUES "
	args := make([]interface{}, 0, len(seats)*3)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, s.CinemaID, s.RowNum, s.SeatNum)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByCinema returns every seat of a cinema ordered by row then number.
func (r *SeatRepo) GetByCinema(ctx context.Context, cinemaID uint64) ([]Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, cinema_id, row_num, seat_num FROM seats WHERE cinema_id = ? ORDER BY row_num, seat_num",
		cinemaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Seat, 0)
	for rows.Next() {
		var s Seat
		if err := rows.Scan(&s.ID, &s.CinemaID, &s.RowNum, &s.SeatNum); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountInCinemaTx reports how many of the given seat IDs belong to the
// cinema.  The booking flow compares the count against len(seatIDs) to
// reject seats from other halls.
func (r *SeatRepo) CountInCinemaTx(ctx context.Context, tx *sql.Tx, cinemaID uint64, seatIDs []uint64) (int, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}
	q := "SELECT COUNT(*) FROM seats WHERE cinema_id = ? AND id IN (" + inPlaceholders(len(seatIDs)) + ")"
	args := append([]interface{}{cinemaID}, uint64Args(seatIDs)...)
	var n int
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
