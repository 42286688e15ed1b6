package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSeatSelection(t *testing.T) {
	tests := []struct {
		name    string
		seatIDs []uint64
		want    string
	}{
		{"single seat", []uint64{5}, ""},
		{"several seats", []uint64{1, 2, 3}, ""},
		{"empty", nil, "at least one seat required"},
		{"duplicate", []uint64{1, 2, 1}, "duplicate seat in request"},
		{"zero id", []uint64{1, 0}, "invalid seat id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validateSeatSelection(tt.seatIDs))
		})
	}
}

func TestSeatLabel(t *testing.T) {
	assert.Equal(t, "R1S1", seatLabel(1, 1))
	assert.Equal(t, "R12S7", seatLabel(12, 7))
}
