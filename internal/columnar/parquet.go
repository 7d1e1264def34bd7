package columnar

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/stac-utils/stac-go/internal/stac"
)

// WriteParquet encodes ic as the geoparquet format variant named in spec.md
// §6: one flat row per Item (geometry carried as a WKB binary column,
// mirroring ToTable's column layout), written with
// github.com/parquet-go/parquet-go against a schema built dynamically from
// the observed columns — ToTable/FromTable instead use
// github.com/apache/arrow/go/v14 for the in-memory Table abstraction; this
// function targets the on-disk container, reusing the same flattening
// rules.
func WriteParquet(w io.Writer, ic *stac.ItemCollection, dropInvalid bool) error {
	rows := make([]FlatRow, len(ic.Features))
	for i, item := range ic.Features {
		row, err := Flatten(item, dropInvalid)
		if err != nil {
			return err
		}
		if item.Geometry != nil {
			raw, err := wkbBytes(item)
			if err != nil {
				return err
			}
			row[geometryColumn] = raw
		}
		rows[i] = row
	}

	columns := inferColumns(rows)
	group := parquet.Group{}
	group[geometryColumn] = parquet.Optional(parquet.Leaf(parquet.ByteArrayType))
	for _, col := range columns {
		group[col.name] = parquet.Optional(leafNodeFor(col))
	}
	schema := parquet.NewSchema("stac_item", group)

	pw := parquet.NewGenericWriter[map[string]any](w, schema)
	plain := make([]map[string]any, len(rows))
	for i, row := range rows {
		plain[i] = coerceRowDatetimes(row, columns)
	}
	if _, err := pw.Write(plain); err != nil {
		return fmt.Errorf("columnar: writing parquet rows: %w", err)
	}
	return pw.Close()
}

// ReadParquet decodes a geoparquet file written by WriteParquet back into
// an ItemCollection.
func ReadParquet(r io.Reader) (*stac.ItemCollection, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	reader := parquet.NewGenericReader[map[string]any](bytes.NewReader(buf))
	defer reader.Close()

	rows := make([]map[string]any, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("columnar: reading parquet rows: %w", err)
	}
	rows = rows[:n]

	items := make([]*stac.Item, 0, len(rows))
	for _, raw := range rows {
		row := FlatRow(raw)
		if wkbRaw, ok := row[geometryColumn].([]byte); ok && wkbRaw != nil {
			g, geomErr := geometryFromWKB(wkbRaw)
			if geomErr != nil {
				return nil, geomErr
			}
			row["geometry"] = g
			delete(row, geometryColumn)
		}
		uncoerceRowDatetimes(row)
		item, err := Unflatten(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return stac.NewItemCollection(items), nil
}

// coerceRowDatetimes converts the RFC3339 strings Flatten produces for
// datetime columns into the millisecond int64 values the parquet schema's
// parquet.Timestamp(parquet.Millisecond) leaf expects, mirroring
// appendValue's conversion on the ToTable/Arrow path. Values that are
// missing or fail to parse are dropped so the Optional column reads back
// null instead of a mistyped value.
func coerceRowDatetimes(row FlatRow, columns []column) map[string]any {
	plain := make(map[string]any, len(row))
	for k, v := range row {
		plain[k] = v
	}
	for _, col := range columns {
		if !col.datetime {
			continue
		}
		s, ok := plain[col.name].(string)
		if !ok {
			delete(plain, col.name)
			continue
		}
		t, err := parseDatetimeColumn(s)
		if err != nil {
			delete(plain, col.name)
			continue
		}
		plain[col.name] = t.UnixMilli()
	}
	return plain
}

// uncoerceRowDatetimes reverses coerceRowDatetimes after reading parquet
// rows back, restoring the RFC3339 string shape Unflatten expects.
func uncoerceRowDatetimes(row FlatRow) {
	for name := range datetimeColumns {
		switch v := row[name].(type) {
		case int64:
			row[name] = coerceDatetimeColumn(time.UnixMilli(v).UTC())
		case time.Time:
			row[name] = coerceDatetimeColumn(v.UTC())
		}
	}
}

func leafNodeFor(col column) parquet.Node {
	switch {
	case col.datetime:
		return parquet.Timestamp(parquet.Millisecond)
	case col.kind == kindFloat:
		return parquet.Leaf(parquet.DoubleType)
	case col.kind == kindBool:
		return parquet.Leaf(parquet.BooleanType)
	default:
		return parquet.String()
	}
}
