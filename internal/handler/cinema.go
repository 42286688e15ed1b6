package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/cinebook/internal/repository"
)

// Seat-grid bounds.  A cinema hall outside these dimensions is almost
// certainly a typo in the request.
const (
	maxSeatRows    = 100
	maxSeatsPerRow = 100
)

// CinemaHandler serves cinema listing, detail and admin creation.
type CinemaHandler struct {
	Cinemas *repository.CinemaRepo
	Seats   *repository.SeatRepo
	Cities  *repository.LookupRepo
	Slots   *repository.SlotRepo
}

func NewCinemaHandler(cinemas *repository.CinemaRepo, seats *repository.SeatRepo, cities *repository.LookupRepo, slots *repository.SlotRepo) *CinemaHandler {
	return &CinemaHandler{Cinemas: cinemas, Seats: seats, Cities: cities, Slots: slots}
}

type cinemaCreateReq struct {
	Name        string `json:"name"`
	CityID      uint64 `json:"city_id"`
	Address     string `json:"address"`
	Rows        uint32 `json:"rows"`
	SeatsPerRow uint32 `json:"seats_per_row"`
	ImageURL    string `json:"image,omitempty"`
}

// Create inserts a cinema and its full seat grid in one transaction, so a
// half-built hall can never be observed.
func (h *CinemaHandler) Create(c echo.Context) error {
	var req cinemaCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	if req.Name == "" || req.Address == "" || req.CityID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, city_id and address required"})
	}
	if req.Rows < 1 || req.Rows > maxSeatRows || req.SeatsPerRow < 1 || req.SeatsPerRow > maxSeatsPerRow {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rows and seats_per_row must be between 1 and 100"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Cities.GetByID(ctx, req.CityID); err != nil {
		if errors.Is(err, repository.ErrLookupNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "city does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	cin := &repository.Cinema{
		Name:        req.Name,
		CityID:      req.CityID,
		Address:     req.Address,
		SeatRows:    req.Rows,
		SeatsPerRow: req.SeatsPerRow,
		ImageURL:    strings.TrimSpace(req.ImageURL),
	}

	tx, err := h.Cinemas.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Cinemas.CreateTx(ctx, tx, cin); err != nil {
		if errors.Is(err, repository.ErrCinemaExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "cinema already exists at this address"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create cinema failed"})
	}
	grid := repository.GenerateSeatGrid(cin.ID, cin.SeatRows, cin.SeatsPerRow)
	if err := h.Seats.CreateBulkTx(ctx, tx, grid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create seats failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	return c.JSON(http.StatusCreated, echo.Map{
		"cinema":     cin,
		"seat_count": len(grid),
	})
}

// cinemaWritable is the allow-list of PATCHable cinema fields.  The grid
// and the city are immutable; resizing a hall with seats already sold has
// no sane meaning.
var cinemaWritable = map[string]bool{
	"name":    true,
	"address": true,
	"image":   true,
}

// Patch updates a cinema's name, address or image.  A request naming any
// other field, grid dimensions included, is rejected.
func (h *CinemaHandler) Patch(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinema id"})
	}
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(fields) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}
	for k := range fields {
		if !cinemaWritable[k] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "this field is not allowed", "field": k})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cin, err := h.Cinemas.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCinemaNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cinema not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	apply := func(key string, dst *string) error {
		raw, ok := fields[key]
		if !ok {
			return nil
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return errors.New(key + " must be a string")
		}
		*dst = strings.TrimSpace(v)
		return nil
	}
	if err := apply("name", &cin.Name); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := apply("address", &cin.Address); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := apply("image", &cin.ImageURL); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if cin.Name == "" || cin.Address == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and address must not be empty"})
	}

	if err := h.Cinemas.UpdateInfo(ctx, id, cin.Name, cin.Address, cin.ImageURL); err != nil {
		switch {
		case errors.Is(err, repository.ErrCinemaNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cinema not found"})
		case errors.Is(err, repository.ErrCinemaExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "cinema already exists at this address"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"cinema": cin})
}

// List returns cinemas filtered by ?cities=1,2 and ?search=, paginated.
func (h *CinemaHandler) List(c echo.Context) error {
	cityIDs, ok := parseCSVIDs(c.QueryParam("cities"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cities filter"})
	}
	limit, offset := parsePagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Cinemas.List(ctx, repository.CinemaFilter{
		CityIDs: cityIDs,
		Search:  strings.TrimSpace(c.QueryParam("search")),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"cinemas": items})
}

type slotBrief struct {
	ID         uint64    `json:"id"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	PriceCents uint32    `json:"price_cents"`
}

type languageSlots struct {
	LanguageID uint64      `json:"language_id"`
	Language   string      `json:"language"`
	Slots      []slotBrief `json:"slots"`
}

type movieShowings struct {
	MovieID   uint64          `json:"movie_id"`
	Movie     string          `json:"movie"`
	Languages []languageSlots `json:"languages"`
}

// Get returns one cinema with its showings grouped movie -> language ->
// slots, optionally restricted to ?date=2006-01-02.
func (h *CinemaHandler) Get(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinema id"})
	}
	date, ok := parseDateParam(c.QueryParam("date"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cin, err := h.Cinemas.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCinemaNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cinema not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	slots, err := h.Slots.ListByCinema(ctx, id, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"cinema":  cin,
		"showing": groupByMovieLanguage(slots),
	})
}

// groupByMovieLanguage folds a flat slot list into the movie -> language ->
// slots shape, preserving the query's ordering inside each group.
func groupByMovieLanguage(slots []repository.Slot) []movieShowings {
	out := make([]movieShowings, 0)
	movieIdx := make(map[uint64]int)
	langIdx := make(map[uint64]map[uint64]int)
	for _, s := range slots {
		mi, ok := movieIdx[s.MovieID]
		if !ok {
			mi = len(out)
			movieIdx[s.MovieID] = mi
			langIdx[s.MovieID] = make(map[uint64]int)
			out = append(out, movieShowings{MovieID: s.MovieID, Movie: s.MovieName, Languages: []languageSlots{}})
		}
		li, ok := langIdx[s.MovieID][s.LanguageID]
		if !ok {
			li = len(out[mi].Languages)
			langIdx[s.MovieID][s.LanguageID] = li
			out[mi].Languages = append(out[mi].Languages, languageSlots{
				LanguageID: s.LanguageID, Language: s.LanguageName, Slots: []slotBrief{},
			})
		}
		out[mi].Languages[li].Slots = append(out[mi].Languages[li].Slots, slotBrief{
			ID: s.ID, StartsAt: s.StartsAt, EndsAt: s.EndsAt, PriceCents: s.PriceCents,
		})
	}
	return out
}
