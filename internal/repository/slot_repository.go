package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Slot mirrors the 'slots' table.  The name fields are joined in by the
// read queries; they stay empty on writes.
type Slot struct {
	ID           uint64    `json:"id"`
	MovieID      uint64    `json:"movie_id"`
	MovieName    string    `json:"movie,omitempty"`
	CinemaID     uint64    `json:"cinema_id"`
	CinemaName   string    `json:"cinema,omitempty"`
	LanguageID   uint64    `json:"language_id"`
	LanguageName string    `json:"language,omitempty"`
	PriceCents   uint32    `json:"price_cents"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// ErrSlotNotFound indicates the slot does not exist.
var ErrSlotNotFound = errors.New("slot not found")

// SlotRepo manages persistence for show slots.
type SlotRepo struct {
	db *sql.DB
}

func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// Create inserts a slot and fills in the generated ID.
func (r *SlotRepo) Create(ctx context.Context, s *Slot) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO slots (movie_id, cinema_id, language_id, price_cents, starts_at, ends_at) VALUES (?,?,?,?,?,?)",
		s.MovieID, s.CinemaID, s.LanguageID, s.PriceCents, s.StartsAt.UTC(), s.EndsAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// Update rewrites every mutable field of an existing slot.
func (r *SlotRepo) Update(ctx context.Context, s *Slot) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE slots SET movie_id=?, cinema_id=?, language_id=?, price_cents=?, starts_at=?, ends_at=? WHERE id=?",
		s.MovieID, s.CinemaID, s.LanguageID, s.PriceCents, s.StartsAt.UTC(), s.EndsAt.UTC(), s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows is ambiguous between missing and unchanged; check.
		var one int
		err := r.db.QueryRowContext(ctx, "SELECT 1 FROM slots WHERE id=?", s.ID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSlotNotFound
		}
		return err
	}
	return nil
}

// FindOverlapping returns slots in the cinema whose [starts_at, ends_at)
// window intersects the given one.  excludeID skips the slot being updated
// so it never conflicts with itself; pass 0 on create.
func (r *SlotRepo) FindOverlapping(ctx context.Context, cinemaID uint64, startsAt, endsAt time.Time, excludeID uint64) ([]Slot, error) {
	const q = `SELECT id, movie_id, cinema_id, language_id, price_cents, starts_at, ends_at, created_at, updated_at
	           FROM slots
	           WHERE cinema_id = ? AND id <> ? AND starts_at < ? AND ends_at > ?`
	rows, err := r.db.QueryContext(ctx, q, cinemaID, excludeID, endsAt.UTC(), startsAt.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Slot, 0)
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.MovieID, &s.CinemaID, &s.LanguageID, &s.PriceCents, &s.StartsAt, &s.EndsAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

const slotJoinedColumns = `s.id, s.movie_id, m.name, s.cinema_id, c.name, s.language_id, l.name,
	s.price_cents, s.starts_at, s.ends_at, s.created_at, s.updated_at`

const slotJoins = ` FROM slots s
	JOIN movies m ON m.id = s.movie_id
	JOIN cinemas c ON c.id = s.cinema_id
	JOIN languages l ON l.id = s.language_id`

// GetByID retrieves one slot with movie, cinema and language names joined
// in, returning ErrSlotNotFound when absent.
func (r *SlotRepo) GetByID(ctx context.Context, id uint64) (*Slot, error) {
	q := "SELECT " + slotJoinedColumns + slotJoins + " WHERE s.id = ?"
	var s Slot
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.MovieID, &s.MovieName, &s.CinemaID, &s.CinemaName, &s.LanguageID, &s.LanguageName,
		&s.PriceCents, &s.StartsAt, &s.EndsAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByCinema returns the cinema's slots with names joined in, optionally
// restricted to one calendar day ("2006-01-02"), ordered by start time.
func (r *SlotRepo) ListByCinema(ctx context.Context, cinemaID uint64, date string) ([]Slot, error) {
	q := "SELECT " + slotJoinedColumns + slotJoins + " WHERE s.cinema_id = ?"
	args := []interface{}{cinemaID}
	if date != "" {
		q += " AND DATE(s.starts_at) = ?"
		args = append(args, date)
	}
	q += " ORDER BY s.starts_at, s.id"
	return r.listJoined(ctx, q, args...)
}

// ListByMovie returns the movie's slots with names joined in, optionally
// restricted to one city and/or one calendar day, ordered by cinema then
// start time.
func (r *SlotRepo) ListByMovie(ctx context.Context, movieID uint64, cityID uint64, date string) ([]Slot, error) {
	q := "SELECT " + slotJoinedColumns + slotJoins + " WHERE s.movie_id = ?"
	args := []interface{}{movieID}
	if cityID > 0 {
		q += " AND c.city_id = ?"
		args = append(args, cityID)
	}
	if date != "" {
		q += " AND DATE(s.starts_at) = ?"
		args = append(args, date)
	}
	q += " ORDER BY c.name, s.starts_at, s.id"
	return r.listJoined(ctx, q, args...)
}

func (r *SlotRepo) listJoined(ctx context.Context, q string, args ...interface{}) ([]Slot, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Slot, 0)
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.MovieID, &s.MovieName, &s.CinemaID, &s.CinemaName, &s.LanguageID, &s.LanguageName,
			&s.PriceCents, &s.StartsAt, &s.EndsAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
