package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/cinebook/internal/repository"
	"github.com/cinebook/cinebook/internal/utils"
)

// CatalogHandler serves the lookup entities (cities, genres, languages).
// One handler instance per entity; the repo fixes the backing table.
type CatalogHandler struct {
	Repo   *repository.LookupRepo
	Entity string // singular noun for error messages, e.g. "city"
}

func NewCatalogHandler(repo *repository.LookupRepo, entity string) *CatalogHandler {
	return &CatalogHandler{Repo: repo, Entity: entity}
}

type lookupCreateReq struct {
	Name string `json:"name"`
}

// List returns all entries, or a substring match when ?search= is given.
func (h *CatalogHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	needle := utils.NormalizeName(c.QueryParam("search"))
	items, err := h.Repo.Search(ctx, needle)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, items)
}

// Create inserts a new entry.  Names are normalized to lowercase so the
// unique index treats "Delhi" and " delhi " as the same city.
func (h *CatalogHandler) Create(c echo.Context) error {
	var req lookupCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := utils.NormalizeName(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	item, err := h.Repo.Create(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNameExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": h.Entity + " already exists", "field": "name"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create " + h.Entity + " failed"})
	}
	return c.JSON(http.StatusCreated, item)
}
