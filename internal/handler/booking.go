package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/cinebook/internal/queue"
	"github.com/cinebook/cinebook/internal/repository"
	"github.com/cinebook/cinebook/internal/service"
)

// BookingHandler serves booking creation, cancellation and history.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Slots    *repository.SlotRepo
	Seats    *repository.SeatRepo
}

func NewBookingHandler(bookings *repository.BookingRepo, slots *repository.SlotRepo, seats *repository.SeatRepo) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Slots: slots, Seats: seats}
}

type bookingCreateReq struct {
	SlotID  uint64   `json:"slot_id"`
	SeatIDs []uint64 `json:"seat_ids"`
}

// validateSeatSelection checks the request-shape rules on the seat list
// and returns the first violation as a client-facing message, or "".
func validateSeatSelection(seatIDs []uint64) string {
	if len(seatIDs) == 0 {
		return "at least one seat required"
	}
	seen := make(map[uint64]bool, len(seatIDs))
	for _, id := range seatIDs {
		if id == 0 {
			return "invalid seat id"
		}
		if seen[id] {
			return "duplicate seat in request"
		}
		seen[id] = true
	}
	return ""
}

// Create books seats for a slot.  Validation fails fast in a fixed order;
// the ticket inserts and the booking row commit atomically, and the unique
// key on (active_slot_id, seat_id) turns a lost race into a clean
// seat-taken error instead of a double booking.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookingCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.SlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_id required"})
	}
	if msg := validateSeatSelection(req.SeatIDs); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	slot, err := h.Slots.GetByID(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !time.Now().UTC().Before(slot.StartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot has already started"})
	}

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	n, err := h.Seats.CountInCinemaTx(ctx, tx, slot.CinemaID, req.SeatIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if n != len(req.SeatIDs) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat does not belong to this cinema"})
	}
	occupied, err := h.Bookings.OccupiedSeatIDsTx(ctx, tx, slot.ID, req.SeatIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if len(occupied) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat already booked", "seats": occupied})
	}

	b, err := h.Bookings.CreateTx(ctx, tx, uid, slot.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}
	if err := h.Bookings.CreateTicketsBulkTx(ctx, tx, b.ID, slot.ID, req.SeatIDs); err != nil {
		if errors.Is(err, repository.ErrSeatTaken) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat already booked"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create tickets failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	total := slot.PriceCents * uint32(len(req.SeatIDs))
	go h.publishEvent(queue.EventBookingCreated, b, slot, req.SeatIDs, total)

	return c.JSON(http.StatusCreated, echo.Map{
		"booking":     b,
		"seat_ids":    req.SeatIDs,
		"total_cents": total,
	})
}

type bookingPatchReq struct {
	Status string `json:"status"`
}

// Cancel flips the caller's booking to cancelled and frees its seats.
// Cancellation is only allowed before the slot starts; after that the
// booking is frozen as history.
func (h *BookingHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req bookingPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Status != "" && req.Status != repository.StatusCancelled {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only cancellation is supported"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, startsAt, err := h.Bookings.GetForCancelTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if b.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	}
	if b.Status == repository.StatusCancelled {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking already cancelled"})
	}
	if !time.Now().UTC().Before(startsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot cancel after slot start"})
	}

	if err := h.Bookings.CancelTx(ctx, tx, b.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	b.Status = repository.StatusCancelled

	if slot, serr := h.Slots.GetByID(ctx, b.SlotID); serr == nil {
		go h.publishEvent(queue.EventBookingCancelled, b, slot, nil, 0)
	}

	return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// List returns the caller's booking history, newest first, cancelled
// bookings included.
func (h *BookingHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Bookings.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// publishEvent builds and fires a booking event.  Runs detached from the
// request; errors are logged inside the publisher and ignored here.
func (h *BookingHandler) publishEvent(eventType string, b *repository.Booking, slot *repository.Slot, seatIDs []uint64, total uint32) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	labels := make([]string, 0, len(seatIDs))
	if len(seatIDs) > 0 {
		if seats, err := h.Seats.GetByCinema(ctx, slot.CinemaID); err == nil {
			byID := make(map[uint64]repository.Seat, len(seats))
			for _, s := range seats {
				byID[s.ID] = s
			}
			for _, id := range seatIDs {
				if s, ok := byID[id]; ok {
					labels = append(labels, seatLabel(s.RowNum, s.SeatNum))
				}
			}
		}
	}

	_ = service.PublishBookingEvent(ctx, queue.BookingEvent{
		Event:      eventType,
		BookingID:  b.ID,
		Reference:  b.Reference,
		UserID:     b.UserID,
		SlotID:     slot.ID,
		MovieName:  slot.MovieName,
		CinemaName: slot.CinemaName,
		StartsAt:   slot.StartsAt.UTC().Format(time.RFC3339),
		Seats:      labels,
		TotalCents: total,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// seatLabel renders a seat position as "R<row>S<number>".
func seatLabel(row, num uint32) string {
	return fmt.Sprintf("R%dS%d", row, num)
}
