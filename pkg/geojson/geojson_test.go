package geojson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWKTRoundTrip(t *testing.T) {
	g, err := ParseWKT("POINT (30 10)")
	require.NoError(t, err)

	out, err := ToWKT(g)
	require.NoError(t, err)
	assert.Equal(t, "POINT(30 10)", out)
}

func TestWKBRoundTrip(t *testing.T) {
	g, err := ParseWKT("POINT (30 10)")
	require.NoError(t, err)

	raw, err := ToWKB(g)
	require.NoError(t, err)

	back, err := ParseWKB(raw)
	require.NoError(t, err)
	assert.Equal(t, g.Geometry, back.Geometry)
}

func TestToWKTRejectsNilGeometry(t *testing.T) {
	_, err := ToWKT(nil)
	assert.Error(t, err)
}
