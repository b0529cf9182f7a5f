package database_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amberlane-studio/amberlane-backend-go/database"
)

func TestNextCustomOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^CO-\d{6}-[0-9a-zA-Z]{6}$`)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		number, err := database.NextCustomOrderNumber()
		require.NoError(t, err)
		assert.Regexp(t, pattern, number)
		assert.False(t, seen[number], "numbers should not repeat: %s", number)
		seen[number] = true
	}
}
