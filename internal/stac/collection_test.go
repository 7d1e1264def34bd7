package stac

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(id string, bbox Bbox, start, end time.Time) *Item {
	it := NewItem(id)
	it.Bbox = bbox
	it.Properties.StartDatetime = &start
	it.Properties.EndDatetime = &end
	return it
}

func TestFromItemsWidensExtent(t *testing.T) {
	t0 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	items := []*Item{
		newTestItem("a", Bbox{0, 0, 10, 10}, t0, t0.Add(time.Hour)),
		newTestItem("b", Bbox{-5, -5, 5, 5}, t1, t1.Add(time.Hour)),
	}
	c := FromItems("coll", "a description", items)

	require.Len(t, c.Extent.Spatial.Bbox, 1)
	bbox := c.Extent.Spatial.Bbox[0]
	assert.Equal(t, Bbox{-5, -5, 10, 10}, bbox)

	require.Len(t, c.Extent.Temporal.Interval, 1)
	interval := c.Extent.Temporal.Interval[0]
	require.NotNil(t, interval[0])
	require.NotNil(t, interval[1])
	assert.Equal(t, t0.Format(rfc3339), *interval[0])
}

func TestCollectionDefaultsToProprietaryLicense(t *testing.T) {
	c := NewCollection("coll", "a description")
	assert.Equal(t, DefaultLicense, c.License)
}

func TestBboxUpdateWidens(t *testing.T) {
	a := Bbox{0, 0, 10, 10}
	b := Bbox{-5, 5, 5, 20}
	widened := a.Update(b)
	assert.Equal(t, Bbox{-5, 0, 10, 20}, widened)
}

func TestBboxValidateAntimeridianAllowed(t *testing.T) {
	b := Bbox{170, -10, -170, 10}
	assert.NoError(t, b.Validate())
	assert.True(t, b.CrossesAntimeridian())
}
