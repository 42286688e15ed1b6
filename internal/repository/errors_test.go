package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(errors.New("Error 1062 (23000): Duplicate entry 'x' for key 'uq'")))
	assert.False(t, isDuplicateKey(errors.New("Error 1452 (23000): foreign key constraint fails")))
	assert.False(t, isDuplicateKey(nil))
}
