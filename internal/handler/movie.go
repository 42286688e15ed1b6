package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/cinebook/internal/repository"
)

// MovieHandler serves movie listing, detail and admin creation.
type MovieHandler struct {
	Movies    *repository.MovieRepo
	Slots     *repository.SlotRepo
	Genres    *repository.LookupRepo
	Languages *repository.LookupRepo
}

func NewMovieHandler(movies *repository.MovieRepo, slots *repository.SlotRepo, genres, languages *repository.LookupRepo) *MovieHandler {
	return &MovieHandler{Movies: movies, Slots: slots, Genres: genres, Languages: languages}
}

type movieCreateReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	DurationMin uint32   `json:"duration_min"`
	ReleaseDate string   `json:"release_date"` // YYYY-MM-DD
	PosterURL   string   `json:"poster,omitempty"`
	GenreIDs    []uint64 `json:"genre_ids"`
	LanguageIDs []uint64 `json:"language_ids"`
}

// Create inserts a movie with its genre and language links.  At least one
// language is required: a movie nobody can schedule a slot for is useless.
func (h *MovieHandler) Create(c echo.Context) error {
	var req movieCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if req.DurationMin == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration_min must be positive"})
	}
	release, err := time.Parse("2006-01-02", req.ReleaseDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid release_date, want YYYY-MM-DD"})
	}
	if len(req.LanguageIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one language required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	for _, id := range req.GenreIDs {
		if _, err := h.Genres.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrLookupNotFound) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "genre does not exist: " + strconv.FormatUint(id, 10)})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}
	for _, id := range req.LanguageIDs {
		if _, err := h.Languages.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrLookupNotFound) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "language does not exist: " + strconv.FormatUint(id, 10)})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}

	m := &repository.Movie{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		DurationMin: req.DurationMin,
		ReleaseDate: release,
		PosterURL:   strings.TrimSpace(req.PosterURL),
	}
	if err := h.Movies.Create(ctx, m, req.GenreIDs, req.LanguageIDs); err != nil {
		if errors.Is(err, repository.ErrMovieExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "movie already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create movie failed"})
	}
	return c.JSON(http.StatusCreated, m)
}

// List returns movies filtered by ?genres=, ?languages=, ?cinemas=,
// ?latest_days= and ?date=, paginated, newest release first.
func (h *MovieHandler) List(c echo.Context) error {
	genreIDs, ok := parseCSVIDs(c.QueryParam("genres"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid genres filter"})
	}
	languageIDs, ok := parseCSVIDs(c.QueryParam("languages"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid languages filter"})
	}
	cinemaIDs, ok := parseCSVIDs(c.QueryParam("cinemas"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinemas filter"})
	}
	date, ok := parseDateParam(c.QueryParam("date"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	latestDays := 0
	if raw := strings.TrimSpace(c.QueryParam("latest_days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid latest_days"})
		}
		latestDays = n
	}
	limit, offset := parsePagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Movies.List(ctx, repository.MovieFilter{
		GenreIDs:    genreIDs,
		LanguageIDs: languageIDs,
		CinemaIDs:   cinemaIDs,
		LatestDays:  latestDays,
		Date:        date,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"movies": items})
}

type cinemaShowings struct {
	CinemaID  uint64          `json:"cinema_id"`
	Cinema    string          `json:"cinema"`
	Languages []languageSlots `json:"languages"`
}

// Get returns one movie with genres, languages and its showings grouped
// cinema -> language -> slots, filtered by ?city= and ?date=.
func (h *MovieHandler) Get(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	date, ok := parseDateParam(c.QueryParam("date"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	var cityID uint64
	if raw := strings.TrimSpace(c.QueryParam("city")); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid city filter"})
		}
		cityID = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	genres, err := h.Movies.Genres(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	languages, err := h.Movies.Languages(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	slots, err := h.Slots.ListByMovie(ctx, id, cityID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"movie":     m,
		"genres":    genres,
		"languages": languages,
		"showing":   groupByCinemaLanguage(slots),
	})
}

// groupByCinemaLanguage folds a flat slot list into the cinema -> language
// -> slots shape.
func groupByCinemaLanguage(slots []repository.Slot) []cinemaShowings {
	out := make([]cinemaShowings, 0)
	cinemaIdx := make(map[uint64]int)
	langIdx := make(map[uint64]map[uint64]int)
	for _, s := range slots {
		ci, ok := cinemaIdx[s.CinemaID]
		if !ok {
			ci = len(out)
			cinemaIdx[s.CinemaID] = ci
			langIdx[s.CinemaID] = make(map[uint64]int)
			out = append(out, cinemaShowings{CinemaID: s.CinemaID, Cinema: s.CinemaName, Languages: []languageSlots{}})
		}
		li, ok := langIdx[s.CinemaID][s.LanguageID]
		if !ok {
			li = len(out[ci].Languages)
			langIdx[s.CinemaID][s.LanguageID] = li
			out[ci].Languages = append(out[ci].Languages, languageSlots{
				LanguageID: s.LanguageID, Language: s.LanguageName, Slots: []slotBrief{},
			})
		}
		out[ci].Languages[li].Slots = append(out[ci].Languages[li].Slots, slotBrief{
			ID: s.ID, StartsAt: s.StartsAt, EndsAt: s.EndsAt, PriceCents: s.PriceCents,
		})
	}
	return out
}
