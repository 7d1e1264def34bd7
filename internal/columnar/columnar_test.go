package columnar

import (
	"bytes"
	"testing"
	"time"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stac-utils/stac-go/internal/stac"
)

func sampleItem(id string) *stac.Item {
	item := stac.NewItem(id)
	item.Collection = "test-collection"
	item.Bbox = stac.Bbox{-1, -1, 1, 1}
	item.Geometry = geojson.NewGeometry(orb.Point{0, 0})
	dt := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	item.Properties.Datetime = &dt
	item.Properties.AdditionalFields = map[string]any{"eo:cloud_cover": 12.5}
	return item
}

// TestToTableFromTableRoundTrip exercises spec.md §8's round-trip invariant:
// from_table(to_table([item])) reproduces the item's observable fields.
func TestToTableFromTableRoundTrip(t *testing.T) {
	ic := stac.NewItemCollection([]*stac.Item{sampleItem("a"), sampleItem("b")})

	rec, err := ToTable(ic, true)
	require.NoError(t, err)
	defer rec.Release()

	roundTripped, err := FromTable(rec)
	require.NoError(t, err)
	require.Len(t, roundTripped.Features, 2)

	got := roundTripped.Features[0]
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, "test-collection", got.Collection)
	assert.Equal(t, stac.Bbox{-1, -1, 1, 1}, got.Bbox)
	require.NotNil(t, got.Properties.Datetime)
	assert.True(t, got.Properties.Datetime.Equal(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 12.5, got.Properties.AdditionalFields["eo:cloud_cover"])
	require.NotNil(t, got.Geometry)
	assert.Equal(t, orb.Point{0, 0}, got.Geometry.Geometry)
}

// TestWriteParquetReadParquetRoundTrip exercises the on-disk geoparquet
// path's own round trip (WriteParquet/ReadParquet), in particular that the
// datetime column survives its coercion to the schema's millisecond int64
// physical type and back to an RFC3339 Properties.Datetime.
func TestWriteParquetReadParquetRoundTrip(t *testing.T) {
	ic := stac.NewItemCollection([]*stac.Item{sampleItem("a"), sampleItem("b")})

	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, ic, true))

	roundTripped, err := ReadParquet(&buf)
	require.NoError(t, err)
	require.Len(t, roundTripped.Features, 2)

	got := roundTripped.Features[0]
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, "test-collection", got.Collection)
	assert.Equal(t, stac.Bbox{-1, -1, 1, 1}, got.Bbox)
	require.NotNil(t, got.Properties.Datetime)
	assert.True(t, got.Properties.Datetime.Equal(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 12.5, got.Properties.AdditionalFields["eo:cloud_cover"])
	require.NotNil(t, got.Geometry)
	assert.Equal(t, orb.Point{0, 0}, got.Geometry.Geometry)
}

func TestFromTableRequiresGeometryColumn(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{{Name: "id", Type: arrow.BinaryTypes.String}}, nil)
	b := array.NewStringBuilder(mem)
	b.Append("a")
	defer b.Release()
	arr := b.NewArray()
	defer arr.Release()
	rec := array.NewRecord(schema, []arrow.Array{arr}, 1)
	defer rec.Release()

	_, err := FromTable(rec)
	assert.ErrorIs(t, err, ErrMissingGeometry)
}

func TestFlattenRejectsReservedPropertyCollision(t *testing.T) {
	item := sampleItem("a")
	item.Properties.AdditionalFields["id"] = "collides"

	_, err := Flatten(item, false)
	require.Error(t, err)

	row, err := Flatten(item, true)
	require.NoError(t, err)
	assert.Equal(t, "a", row["id"])
}
