package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/cinebook/internal/repository"
)

// SlotHandler serves show-slot detail and admin scheduling.
type SlotHandler struct {
	Slots    *repository.SlotRepo
	Movies   *repository.MovieRepo
	Cinemas  *repository.CinemaRepo
	Seats    *repository.SeatRepo
	Bookings *repository.BookingRepo
}

func NewSlotHandler(slots *repository.SlotRepo, movies *repository.MovieRepo, cinemas *repository.CinemaRepo, seats *repository.SeatRepo, bookings *repository.BookingRepo) *SlotHandler {
	return &SlotHandler{Slots: slots, Movies: movies, Cinemas: cinemas, Seats: seats, Bookings: bookings}
}

type slotWriteReq struct {
	MovieID    uint64    `json:"movie_id"`
	CinemaID   uint64    `json:"cinema_id"`
	LanguageID uint64    `json:"language_id"`
	PriceCents uint32    `json:"price_cents"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

// slotRuleInput collects everything the scheduling rules need, already
// loaded, so the rules themselves stay pure and testable.
type slotRuleInput struct {
	Now               time.Time
	StartsAt          time.Time
	EndsAt            time.Time
	MovieDurationMin  uint32
	ReleaseDate       time.Time
	LanguageSupported bool
	Overlaps          int
}

// validateSlotRules runs the scheduling gate in a fixed order and returns
// the first violation as a client-facing message, or "" when the slot is
// acceptable.
func validateSlotRules(in slotRuleInput) string {
	if !in.LanguageSupported {
		return "movie is not available in this language"
	}
	if in.Overlaps > 0 {
		return "slot overlaps an existing slot in this cinema"
	}
	if in.EndsAt.Sub(in.StartsAt) < time.Duration(in.MovieDurationMin)*time.Minute {
		return "slot is shorter than the movie duration"
	}
	startDay := in.StartsAt.UTC().Truncate(24 * time.Hour)
	releaseDay := in.ReleaseDate.UTC().Truncate(24 * time.Hour)
	if startDay.Before(releaseDay) {
		return "slot starts before the movie release date"
	}
	if !in.StartsAt.After(in.Now) {
		return "slot must start in the future"
	}
	return ""
}

// Create schedules a slot after the full validation gate passes.
func (h *SlotHandler) Create(c echo.Context) error {
	return h.upsert(c, 0)
}

// Update reschedules an existing slot under the same gate, excluding the
// slot itself from the overlap check.
func (h *SlotHandler) Update(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	return h.upsert(c, id)
}

func (h *SlotHandler) upsert(c echo.Context, slotID uint64) error {
	var req slotWriteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MovieID == 0 || req.CinemaID == 0 || req.LanguageID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id, cinema_id and language_id required"})
	}
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() || !req.EndsAt.After(req.StartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be after starts_at"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if slotID != 0 {
		if _, err := h.Slots.GetByID(ctx, slotID); err != nil {
			if errors.Is(err, repository.ErrSlotNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}

	m, err := h.Movies.GetByID(ctx, req.MovieID)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if _, err := h.Cinemas.GetByID(ctx, req.CinemaID); err != nil {
		if errors.Is(err, repository.ErrCinemaNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cinema does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	supported, err := h.Movies.SupportsLanguage(ctx, req.MovieID, req.LanguageID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	overlaps, err := h.Slots.FindOverlapping(ctx, req.CinemaID, req.StartsAt, req.EndsAt, slotID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if msg := validateSlotRules(slotRuleInput{
		Now:               time.Now().UTC(),
		StartsAt:          req.StartsAt,
		EndsAt:            req.EndsAt,
		MovieDurationMin:  m.DurationMin,
		ReleaseDate:       m.ReleaseDate,
		LanguageSupported: supported,
		Overlaps:          len(overlaps),
	}); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	s := &repository.Slot{
		ID:         slotID,
		MovieID:    req.MovieID,
		CinemaID:   req.CinemaID,
		LanguageID: req.LanguageID,
		PriceCents: req.PriceCents,
		StartsAt:   req.StartsAt.UTC(),
		EndsAt:     req.EndsAt.UTC(),
	}
	if slotID == 0 {
		if err := h.Slots.Create(ctx, s); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create slot failed"})
		}
		return c.JSON(http.StatusCreated, s)
	}
	if err := h.Slots.Update(ctx, s); err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update slot failed"})
	}
	return c.JSON(http.StatusOK, s)
}

type seatAvailability struct {
	ID        uint64 `json:"id"`
	RowNum    uint32 `json:"row"`
	SeatNum   uint32 `json:"number"`
	Available bool   `json:"available"`
}

// Get returns the slot with the full seat map of its cinema, each seat
// flagged available unless an active ticket holds it.
func (h *SlotHandler) Get(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Slots.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	seats, err := h.Seats.GetByCinema(ctx, s.CinemaID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	occupied, err := h.Bookings.OccupiedSeatIDs(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]seatAvailability, 0, len(seats))
	for _, seat := range seats {
		out = append(out, seatAvailability{
			ID:        seat.ID,
			RowNum:    seat.RowNum,
			SeatNum:   seat.SeatNum,
			Available: !occupied[seat.ID],
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"slot": s, "seats": out})
}
