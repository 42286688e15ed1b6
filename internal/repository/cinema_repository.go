package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Cinema mirrors the 'cinemas' table with the city name joined in.
type Cinema struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	CityID      uint64    `json:"city_id"`
	CityName    string    `json:"city"`
	Address     string    `json:"address"`
	SeatRows    uint32    `json:"rows"`
	SeatsPerRow uint32    `json:"seats_per_row"`
	ImageURL    string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// ErrCinemaNotFound indicates the cinema does not exist.
var ErrCinemaNotFound = errors.New("cinema not found")

// ErrCinemaExists indicates a cinema with the same (name, city, address)
// already exists.
var ErrCinemaExists = errors.New("cinema already exists")

// CinemaRepo manages persistence for cinemas.
type CinemaRepo struct {
	db *sql.DB
}

func NewCinemaRepo(db *sql.DB) *CinemaRepo { return &CinemaRepo{db: db} }

// DB exposes the underlying sql.DB so the handler can open a transaction
// that also covers the seat-grid insert.
func (r *CinemaRepo) DB() *sql.DB { return r.db }

// CreateTx inserts the cinema inside an existing transaction and fills in
// the generated ID.  Seat rows are inserted separately in the same tx.
func (r *CinemaRepo) CreateTx(ctx context.Context, tx *sql.Tx, c *Cinema) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO cinemas (name, city_id, address, seat_rows, seats_per_row, image_url) VALUES (?,?,?,?,?,?)",
		c.Name, c.CityID, c.Address, c.SeatRows, c.SeatsPerRow, c.ImageURL)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrCinemaExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// UpdateInfo rewrites the mutable cinema fields.  Grid dimensions and the
// city are frozen after creation; the seat rows were minted from them.
func (r *CinemaRepo) UpdateInfo(ctx context.Context, id uint64, name, address, imageURL string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE cinemas SET name=?, address=?, image_url=? WHERE id=?",
		name, address, imageURL, id)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrCinemaExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		err := r.db.QueryRowContext(ctx, "SELECT 1 FROM cinemas WHERE id=?", id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCinemaNotFound
		}
		return err
	}
	return nil
}

// CinemaFilter narrows List results.  Zero values mean "no filter".
type CinemaFilter struct {
	CityIDs []uint64
	Search  string
	Limit   int
	Offset  int
}

const cinemaColumns = "c.id, c.name, c.city_id, ci.name, c.address, c.seat_rows, c.seats_per_row, c.image_url, c.created_at, c.updated_at"

// List returns cinemas matching the filter, joined with their city name,
// ordered by name.
func (r *CinemaRepo) List(ctx context.Context, f CinemaFilter) ([]Cinema, error) {
	var (
		conds []string
		args  []interface{}
	)
	if len(f.CityIDs) > 0 {
		conds = append(conds, "c.city_id IN ("+inPlaceholders(len(f.CityIDs))+")")
		args = append(args, uint64Args(f.CityIDs)...)
	}
	if f.Search != "" {
		conds = append(conds, "c.name LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}

	q := "SELECT " + cinemaColumns + " FROM cinemas c JOIN cities ci ON ci.id = c.city_id"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY c.name, c.id"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Cinema, 0)
	for rows.Next() {
		var c Cinema
		if err := scanCinema(rows.Scan, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID retrieves one cinema with its city name, returning
// ErrCinemaNotFound when absent.
func (r *CinemaRepo) GetByID(ctx context.Context, id uint64) (*Cinema, error) {
	q := "SELECT " + cinemaColumns + " FROM cinemas c JOIN cities ci ON ci.id = c.city_id WHERE c.id = ?"
	var c Cinema
	err := scanCinema(r.db.QueryRowContext(ctx, q, id).Scan, &c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCinemaNotFound
		}
		return nil, err
	}
	return &c, nil
}

func scanCinema(scan func(dest ...interface{}) error, c *Cinema) error {
	return scan(&c.ID, &c.Name, &c.CityID, &c.CityName, &c.Address,
		&c.SeatRows, &c.SeatsPerRow, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
}
