package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Lookup is a uniquely-named reference entity: a city, genre or language.
// All three share the same shape and queries, so one repo serves them with
// the table name fixed at construction.
type Lookup struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// ErrNameExists is returned when inserting a lookup entity whose normalized
// name already exists.
var ErrNameExists = errors.New("name already exists")

// ErrLookupNotFound is returned when a lookup row is missing.
var ErrLookupNotFound = errors.New("not found")

// LookupRepo provides access to one of the lookup tables.  The table name
// comes from a fixed construction-time set, never from user input.
type LookupRepo struct {
	db    *sql.DB
	table string
}

func NewCityRepo(db *sql.DB) *LookupRepo     { return &LookupRepo{db: db, table: "cities"} }
func NewGenreRepo(db *sql.DB) *LookupRepo    { return &LookupRepo{db: db, table: "genres"} }
func NewLanguageRepo(db *sql.DB) *LookupRepo { return &LookupRepo{db: db, table: "languages"} }

// Create inserts a lookup row.  The caller must have normalized the name
// already (see utils.NormalizeName).
func (r *LookupRepo) Create(ctx context.Context, name string) (Lookup, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO "+r.table+" (name) VALUES (?)", name)
	if err != nil {
		if isDuplicateKey(err) {
			return Lookup{}, ErrNameExists
		}
		return Lookup{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Lookup{}, err
	}
	return Lookup{ID: uint64(id), Name: name}, nil
}

// List returns all rows ordered by name.
func (r *LookupRepo) List(ctx context.Context) ([]Lookup, error) {
	return r.query(ctx, "SELECT id, name, created_at, updated_at FROM "+r.table+" ORDER BY name")
}

// Search returns rows whose name contains the given substring, ordered by
// name.  An empty needle behaves like List.
func (r *LookupRepo) Search(ctx context.Context, needle string) ([]Lookup, error) {
	if needle == "" {
		return r.List(ctx)
	}
	return r.query(ctx,
		"SELECT id, name, created_at, updated_at FROM "+r.table+" WHERE name LIKE ? ORDER BY name",
		"%"+needle+"%")
}

// GetByID fetches one row, returning ErrLookupNotFound when absent.
func (r *LookupRepo) GetByID(ctx context.Context, id uint64) (Lookup, error) {
	var l Lookup
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM "+r.table+" WHERE id=?",
		id).Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Lookup{}, ErrLookupNotFound
	}
	return l, err
}

func (r *LookupRepo) query(ctx context.Context, q string, args ...interface{}) ([]Lookup, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Lookup, 0)
	for rows.Next() {
		var l Lookup
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
