package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/cinebook/internal/repository"
)

// ProfileHandler serves the authenticated user's own profile.
type ProfileHandler struct {
	Users *repository.UserRepo
}

func NewProfileHandler(u *repository.UserRepo) *ProfileHandler {
	return &ProfileHandler{Users: u}
}

type profileResp struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, profileResp{
		ID: u.ID, Name: u.Name, Email: u.Email, PhoneNumber: u.PhoneNumber, Role: u.Role,
	})
}

// profileWritable is the allow-list of PATCHable profile fields.  Email,
// role and everything else are immutable here; a request naming any other
// field is rejected outright rather than silently ignored.
var profileWritable = map[string]bool{
	"name":         true,
	"phone_number": true,
}

// Patch applies a partial update to the caller's profile.
func (h *ProfileHandler) Patch(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var fields map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(fields) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}
	for k := range fields {
		if !profileWritable[k] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "this field is not allowed", "field": k})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	name, phone := u.Name, u.PhoneNumber
	if raw, ok := fields["name"]; ok {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must be a string"})
		}
		name = strings.TrimSpace(v)
	}
	if raw, ok := fields["phone_number"]; ok {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone_number must be a string"})
		}
		phone = strings.TrimSpace(v)
	}

	if err := h.Users.UpdateProfile(ctx, uid, name, phone); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, profileResp{
		ID: u.ID, Name: name, Email: u.Email, PhoneNumber: phone, Role: u.Role,
	})
}
