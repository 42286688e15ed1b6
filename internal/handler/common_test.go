package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestGetUserID(t *testing.T) {
	c := newTestContext("/")
	_, err := getUserID(c)
	assert.Error(t, err)

	// MapClaims decode numbers as float64.
	c.Set("user_id", float64(42))
	id, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	c.Set("user_id", "17")
	id, err = getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(17), id)
}

func TestParseCSVIDs(t *testing.T) {
	ids, ok := parseCSVIDs("1,2,3")
	require.True(t, ok)
	assert.Equal(t, []uint64{1, 2, 3}, ids)

	ids, ok = parseCSVIDs(" 4 , 5 ")
	require.True(t, ok)
	assert.Equal(t, []uint64{4, 5}, ids)

	ids, ok = parseCSVIDs("")
	require.True(t, ok)
	assert.Nil(t, ids)

	_, ok = parseCSVIDs("1,x")
	assert.False(t, ok)
	_, ok = parseCSVIDs("0")
	assert.False(t, ok)
}

func TestParseDateParam(t *testing.T) {
	d, ok := parseDateParam("2026-03-10")
	require.True(t, ok)
	assert.Equal(t, "2026-03-10", d)

	d, ok = parseDateParam("")
	require.True(t, ok)
	assert.Equal(t, "", d)

	_, ok = parseDateParam("10-03-2026")
	assert.False(t, ok)
	_, ok = parseDateParam("2026-13-40")
	assert.False(t, ok)
}

func TestParsePagination(t *testing.T) {
	limit, offset := parsePagination(newTestContext("/v1/movies"))
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	limit, offset = parsePagination(newTestContext("/v1/movies?page=3&page_size=10"))
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	limit, _ = parsePagination(newTestContext("/v1/movies?page_size=9999"))
	assert.Equal(t, 100, limit)

	limit, offset = parsePagination(newTestContext("/v1/movies?page=-1&page_size=0"))
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)
}
