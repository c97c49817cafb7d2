package db_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Vishwas132/university-admin-panel/internal/db"

	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, db.IsUniqueViolation(nil))
	assert.False(t, db.IsUniqueViolation(errors.New("duplicate key value")))
	assert.False(t, db.IsUniqueViolation(fmt.Errorf("wrapped: %w", errors.New("23505"))))
}
