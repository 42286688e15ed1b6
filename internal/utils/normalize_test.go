package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "delhi", NormalizeName("  Delhi "))
	assert.Equal(t, "sci-fi", NormalizeName("SCI-FI"))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail(" User@Example.COM "))
	assert.Equal(t, NormalizeEmail("a@b.c"), NormalizeEmail("A@B.C"))
}
