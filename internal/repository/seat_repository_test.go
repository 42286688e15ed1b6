package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSeatGrid(t *testing.T) {
	grid := GenerateSeatGrid(7, 3, 4)
	require.Len(t, grid, 12)

	// Row-major: first row fills before the second starts.
	assert.Equal(t, Seat{CinemaID: 7, RowNum: 1, SeatNum: 1}, grid[0])
	assert.Equal(t, Seat{CinemaID: 7, RowNum: 1, SeatNum: 4}, grid[3])
	assert.Equal(t, Seat{CinemaID: 7, RowNum: 2, SeatNum: 1}, grid[4])
	assert.Equal(t, Seat{CinemaID: 7, RowNum: 3, SeatNum: 4}, grid[11])

	seen := make(map[[2]uint32]bool)
	for _, s := range grid {
		pos := [2]uint32{s.RowNum, s.SeatNum}
		assert.False(t, seen[pos], "duplicate position %v", pos)
		seen[pos] = true
		assert.Equal(t, uint64(7), s.CinemaID)
		assert.GreaterOrEqual(t, s.RowNum, uint32(1))
		assert.LessOrEqual(t, s.RowNum, uint32(3))
		assert.GreaterOrEqual(t, s.SeatNum, uint32(1))
		assert.LessOrEqual(t, s.SeatNum, uint32(4))
	}
}

func TestGenerateSeatGridSingleSeat(t *testing.T) {
	grid := GenerateSeatGrid(1, 1, 1)
	require.Len(t, grid, 1)
	assert.Equal(t, Seat{CinemaID: 1, RowNum: 1, SeatNum: 1}, grid[0])
}

func TestInPlaceholders(t *testing.T) {
	assert.Equal(t, "", inPlaceholders(0))
	assert.Equal(t, "?", inPlaceholders(1))
	assert.Equal(t, "?,?,?", inPlaceholders(3))
}

func TestUint64Args(t *testing.T) {
	args := uint64Args([]uint64{1, 2, 3})
	require.Len(t, args, 3)
	assert.Equal(t, uint64(2), args[1])
}
