package stac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatetimeIntervalOpen(t *testing.T) {
	start, end, err := ParseDatetimeInterval("..")
	require.NoError(t, err)
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestParseDatetimeIntervalStartOnly(t *testing.T) {
	start, end, err := ParseDatetimeInterval("2023-01-01T00:00:00Z/..")
	require.NoError(t, err)
	require.NotNil(t, start)
	assert.Nil(t, end)
}

func TestParseDatetimeIntervalStartAfterEnd(t *testing.T) {
	_, _, err := ParseDatetimeInterval("2023-12-31T00:00:00Z/2023-01-01T00:00:00Z")
	assert.ErrorIs(t, err, ErrStartIsAfterEnd)
}

func TestParseDatetimeIntervalMalformed(t *testing.T) {
	_, _, err := ParseDatetimeInterval("not-a-datetime")
	assert.Error(t, err)
}

func TestValidateDatetimeEmptyInterval(t *testing.T) {
	i := Items{Datetime: "../.."}
	err := i.Valid()
	assert.ErrorIs(t, err, ErrEmptyDatetimeInterval)
}
