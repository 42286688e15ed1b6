package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinebook/cinebook/internal/repository"
)

func sampleSlots() []repository.Slot {
	t0 := time.Date(2026, 3, 12, 18, 0, 0, 0, time.UTC)
	return []repository.Slot{
		{ID: 1, MovieID: 10, MovieName: "dune", CinemaID: 100, CinemaName: "galaxy", LanguageID: 1, LanguageName: "english", StartsAt: t0, EndsAt: t0.Add(3 * time.Hour)},
		{ID: 2, MovieID: 10, MovieName: "dune", CinemaID: 100, CinemaName: "galaxy", LanguageID: 1, LanguageName: "english", StartsAt: t0.Add(4 * time.Hour), EndsAt: t0.Add(7 * time.Hour)},
		{ID: 3, MovieID: 10, MovieName: "dune", CinemaID: 100, CinemaName: "galaxy", LanguageID: 2, LanguageName: "hindi", StartsAt: t0, EndsAt: t0.Add(3 * time.Hour)},
		{ID: 4, MovieID: 20, MovieName: "heat", CinemaID: 200, CinemaName: "plaza", LanguageID: 1, LanguageName: "english", StartsAt: t0, EndsAt: t0.Add(2 * time.Hour)},
	}
}

func TestGroupByMovieLanguage(t *testing.T) {
	groups := groupByMovieLanguage(sampleSlots())
	require.Len(t, groups, 2)

	dune := groups[0]
	assert.Equal(t, "dune", dune.Movie)
	require.Len(t, dune.Languages, 2)
	assert.Equal(t, "english", dune.Languages[0].Language)
	assert.Len(t, dune.Languages[0].Slots, 2)
	assert.Equal(t, uint64(1), dune.Languages[0].Slots[0].ID)
	assert.Equal(t, "hindi", dune.Languages[1].Language)
	assert.Len(t, dune.Languages[1].Slots, 1)

	heat := groups[1]
	assert.Equal(t, "heat", heat.Movie)
	require.Len(t, heat.Languages, 1)
}

func TestGroupByCinemaLanguage(t *testing.T) {
	groups := groupByCinemaLanguage(sampleSlots())
	require.Len(t, groups, 2)

	assert.Equal(t, "galaxy", groups[0].Cinema)
	require.Len(t, groups[0].Languages, 2)
	assert.Len(t, groups[0].Languages[0].Slots, 2)

	assert.Equal(t, "plaza", groups[1].Cinema)
	require.Len(t, groups[1].Languages, 1)
	assert.Equal(t, uint64(4), groups[1].Languages[0].Slots[0].ID)
}

func TestGroupingEmptyInput(t *testing.T) {
	assert.Empty(t, groupByMovieLanguage(nil))
	assert.Empty(t, groupByCinemaLanguage(nil))
}
