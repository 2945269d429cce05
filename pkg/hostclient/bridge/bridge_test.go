package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlbridge/pkg/hostclient"
)

func TestNew_NilHostCall(t *testing.T) {
	_, err := New(nil, nil)

	assert.ErrorIs(t, err, hostclient.ErrHostUnavailable)
}

func TestEncodeStatement(t *testing.T) {
	ts := time.Date(2026, 8, 23, 10, 11, 12, 345678000, time.UTC)
	stmt := &hostclient.Statement{
		Fragments: []string{"INSERT INTO t VALUES (", ", ", ", ", ")"},
		Values:    []any{[]byte{0xDE, 0xAD}, ts, "plain"},
	}

	ws := EncodeStatement(stmt)

	assert.Equal(t, stmt.Fragments, ws.Fragments)
	require.Len(t, ws.Values, 3)
	assert.Equal(t, "3q0=", ws.Values[0])
	assert.Equal(t, "2026-08-23T10:11:12.345678Z", ws.Values[1])
	assert.Equal(t, "plain", ws.Values[2])
}
