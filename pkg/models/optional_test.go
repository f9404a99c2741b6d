package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalID_Unmarshal(t *testing.T) {
	var body struct {
		Technician OptionalID `json:"technician"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{}`), &body))
	assert.False(t, body.Technician.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"technician":null}`), &body))
	assert.True(t, body.Technician.Set)
	assert.Nil(t, body.Technician.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"technician":12}`), &body))
	assert.True(t, body.Technician.Set)
	require.NotNil(t, body.Technician.Value)
	assert.Equal(t, uint(12), *body.Technician.Value)

	assert.Error(t, json.Unmarshal([]byte(`{"technician":"abc"}`), &body))
}

func TestOptionalID_Marshal(t *testing.T) {
	out, err := json.Marshal(SomeID(4))
	require.NoError(t, err)
	assert.Equal(t, "4", string(out))

	out, err = json.Marshal(NullID())
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseDate("2024-03-01T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	d, err = ParseDate("  ")
	assert.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseDate("01/03/2024")
	assert.Error(t, err)
}
