package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateSlotRules(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	release := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	base := slotRuleInput{
		Now:               now,
		StartsAt:          now.Add(24 * time.Hour),
		EndsAt:            now.Add(24*time.Hour + 150*time.Minute),
		MovieDurationMin:  120,
		ReleaseDate:       release,
		LanguageSupported: true,
		Overlaps:          0,
	}

	tests := []struct {
		name   string
		mutate func(*slotRuleInput)
		want   string
	}{
		{"valid", func(in *slotRuleInput) {}, ""},
		{"unsupported language", func(in *slotRuleInput) {
			in.LanguageSupported = false
		}, "movie is not available in this language"},
		{"overlapping slot", func(in *slotRuleInput) {
			in.Overlaps = 1
		}, "slot overlaps an existing slot in this cinema"},
		{"too short for movie", func(in *slotRuleInput) {
			in.EndsAt = in.StartsAt.Add(90 * time.Minute)
		}, "slot is shorter than the movie duration"},
		{"exactly movie duration is fine", func(in *slotRuleInput) {
			in.EndsAt = in.StartsAt.Add(120 * time.Minute)
		}, ""},
		{"before release date", func(in *slotRuleInput) {
			in.ReleaseDate = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		}, "slot starts before the movie release date"},
		{"release day itself is fine", func(in *slotRuleInput) {
			in.ReleaseDate = in.StartsAt.Truncate(24 * time.Hour)
		}, ""},
		{"in the past", func(in *slotRuleInput) {
			in.StartsAt = in.Now.Add(-time.Hour)
			in.EndsAt = in.StartsAt.Add(150 * time.Minute)
		}, "slot must start in the future"},
		{"starting exactly now is rejected", func(in *slotRuleInput) {
			in.StartsAt = in.Now
			in.EndsAt = in.Now.Add(150 * time.Minute)
		}, "slot must start in the future"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			assert.Equal(t, tt.want, validateSlotRules(in))
		})
	}
}

// Language check has to win over every later rule so the client always
// sees the most fundamental violation first.
func TestValidateSlotRulesOrder(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	in := slotRuleInput{
		Now:               now,
		StartsAt:          now.Add(-time.Hour),
		EndsAt:            now,
		MovieDurationMin:  240,
		ReleaseDate:       now.Add(48 * time.Hour),
		LanguageSupported: false,
		Overlaps:          3,
	}
	assert.Equal(t, "movie is not available in this language", validateSlotRules(in))

	in.LanguageSupported = true
	assert.Equal(t, "slot overlaps an existing slot in this cinema", validateSlotRules(in))
}
