package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

func TestBuiltinProfiles(t *testing.T) {
	tests := []struct {
		name        string
		profile     *Profile
		placeholder core.PlaceholderStyle
		arrays      bool
		isolation   bool
	}{
		{"postgres", Postgres, core.PlaceholderDollar, true, true},
		{"mysql", MySQL, core.PlaceholderQuestion, false, true},
		{"sqlite", SQLite, core.PlaceholderQuestion, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.profile.Name)
			assert.Equal(t, tt.placeholder, tt.profile.Placeholder)
			assert.Equal(t, tt.arrays, tt.profile.ArrayLiterals)
			assert.Equal(t, tt.isolation, tt.profile.SupportsIsolation)
			assert.Positive(t, tt.profile.DefaultMaxConns)
		})
	}

	// Only MySQL orders the isolation statement ahead of BEGIN.
	assert.True(t, MySQL.IsolationBeforeBegin)
	assert.False(t, Postgres.IsolationBeforeBegin)
	assert.False(t, SQLite.IsolationBeforeBegin)
}
