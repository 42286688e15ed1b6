package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Movie mirrors the 'movies' table.  Genres and Languages are loaded from
// the join tables on demand.
type Movie struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DurationMin uint32    `json:"duration_min"`
	ReleaseDate time.Time `json:"release_date"`
	PosterURL   string    `json:"poster,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// ErrMovieNotFound indicates the movie does not exist.
var ErrMovieNotFound = errors.New("movie not found")

// ErrMovieExists indicates a movie with the same name already exists.
var ErrMovieExists = errors.New("movie already exists")

// MovieRepo manages persistence for movies and their genre/language links.
type MovieRepo struct {
	db *sql.DB
}

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *MovieRepo) DB() *sql.DB { return r.db }

// Create inserts the movie and its genre/language join rows in a single
// transaction.  On success the generated ID is populated.
func (r *MovieRepo) Create(ctx context.Context, m *Movie, genreIDs, languageIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO movies (name, description, duration_min, release_date, poster_url) VALUES (?,?,?,?,?)",
		m.Name, m.Description, m.DurationMin, m.ReleaseDate.Format("2006-01-02"), m.PosterURL)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrMovieExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)

	if err := insertJoinRows(ctx, tx, "movie_genres", "genre_id", m.ID, genreIDs); err != nil {
		return err
	}
	if err := insertJoinRows(ctx, tx, "movie_languages", "language_id", m.ID, languageIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// insertJoinRows bulk-inserts (movie_id, ref_id) pairs into a join table.
func insertJoinRows(ctx context.Context, tx *sql.Tx, table, column string, movieID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	query := "INSERT INTO " + table + " (movie_id, " + column + ") VALUES "
	args := make([]interface{}, 0, len(ids)*2)
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, movieID, id)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByID retrieves one movie, returning ErrMovieNotFound when absent.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*Movie, error) {
	const q = `SELECT id, name, description, duration_min, release_date, poster_url, created_at, updated_at
	           FROM movies WHERE id = ?`
	var m Movie
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.Name, &m.Description, &m.DurationMin, &m.ReleaseDate, &m.PosterURL, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Genres loads the genres linked to a movie, ordered by name.
func (r *MovieRepo) Genres(ctx context.Context, movieID uint64) ([]Lookup, error) {
	const q = `SELECT g.id, g.name FROM genres g
	           JOIN movie_genres mg ON mg.genre_id = g.id
	           WHERE mg.movie_id = ? ORDER BY g.name`
	return r.lookupQuery(ctx, q, movieID)
}

// Languages loads the languages linked to a movie, ordered by name.
func (r *MovieRepo) Languages(ctx context.Context, movieID uint64) ([]Lookup, error) {
	const q = `SELECT l.id, l.name FROM languages l
	           JOIN movie_languages ml ON ml.language_id = l.id
	           WHERE ml.movie_id = ? ORDER BY l.name`
	return r.lookupQuery(ctx, q, movieID)
}

// SupportsLanguage reports whether the movie is linked to the language.
func (r *MovieRepo) SupportsLanguage(ctx context.Context, movieID, languageID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM movie_languages WHERE movie_id=? AND language_id=? LIMIT 1",
		movieID, languageID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MovieFilter narrows List results.  Zero values mean "no filter".
// Date restricts to movies that have at least one slot on that calendar
// day; LatestDays restricts to movies released within the last N days.
type MovieFilter struct {
	GenreIDs    []uint64
	LanguageIDs []uint64
	CinemaIDs   []uint64
	LatestDays  int
	Date        string // "2006-01-02"
	Limit       int
	Offset      int
}

// List returns movies matching every provided filter, newest release first.
func (r *MovieRepo) List(ctx context.Context, f MovieFilter) ([]Movie, error) {
	var (
		conds []string
		args  []interface{}
	)
	if len(f.GenreIDs) > 0 {
		conds = append(conds,
			"EXISTS (SELECT 1 FROM movie_genres mg WHERE mg.movie_id = m.id AND mg.genre_id IN ("+inPlaceholders(len(f.GenreIDs))+"))")
		args = append(args, uint64Args(f.GenreIDs)...)
	}
	if len(f.LanguageIDs) > 0 {
		conds = append(conds,
			"EXISTS (SELECT 1 FROM movie_languages ml WHERE ml.movie_id = m.id AND ml.language_id IN ("+inPlaceholders(len(f.LanguageIDs))+"))")
		args = append(args, uint64Args(f.LanguageIDs)...)
	}
	if len(f.CinemaIDs) > 0 {
		conds = append(conds,
			"EXISTS (SELECT 1 FROM slots s WHERE s.movie_id = m.id AND s.cinema_id IN ("+inPlaceholders(len(f.CinemaIDs))+"))")
		args = append(args, uint64Args(f.CinemaIDs)...)
	}
	if f.LatestDays > 0 {
		conds = append(conds, "m.release_date >= DATE_SUB(CURDATE(), INTERVAL ? DAY)")
		args = append(args, f.LatestDays)
	}
	if f.Date != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM slots s WHERE s.movie_id = m.id AND DATE(s.starts_at) = ?)")
		args = append(args, f.Date)
	}

	q := `SELECT m.id, m.name, m.description, m.duration_min, m.release_date, m.poster_url, m.created_at, m.updated_at
	      FROM movies m`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY m.release_date DESC, m.id DESC"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Movie, 0)
	for rows.Next() {
		var m Movie
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.DurationMin, &m.ReleaseDate, &m.PosterURL, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MovieRepo) lookupQuery(ctx context.Context, q string, args ...interface{}) ([]Lookup, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Lookup, 0)
	for rows.Next() {
		var l Lookup
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// inPlaceholders returns "?,?,..." with n markers for an IN clause.
func inPlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// uint64Args widens a uint64 slice for ExecContext/QueryContext varargs.
func uint64Args(ids []uint64) []interface{} {
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
