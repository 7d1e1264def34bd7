package stac

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FormatKind enumerates the wire encodings named in spec.md §4.3/§6.
type FormatKind int

const (
	FormatJSON FormatKind = iota
	FormatNdJSON
	FormatGeoparquet
)

// Format is a concrete encoding, with a pretty-print flag for JSON and an
// optional compression codec name for geoparquet.
type Format struct {
	Kind        FormatKind
	Pretty      bool
	Compression string
}

// InferFromHref inspects the extension after the last "." in s.
func InferFromHref(s string) (Format, bool) {
	idx := strings.LastIndex(s, ".")
	if idx < 0 {
		return Format{}, false
	}
	ext := strings.ToLower(s[idx+1:])
	switch ext {
	case "json", "geojson":
		return Format{Kind: FormatJSON}, true
	case "ndjson", "jsonl":
		return Format{Kind: FormatNdJSON}, true
	case "parquet":
		return Format{Kind: FormatGeoparquet}, true
	default:
		return Format{}, false
	}
}

// ParseFormat parses a format string such as "json", "json-pretty",
// "ndjson", "parquet" or "geoparquet[compression]". Unknown strings fail
// with ErrUnsupportedFormat.
func ParseFormat(s string) (Format, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "json" || s == "geojson":
		return Format{Kind: FormatJSON}, nil
	case s == "json-pretty":
		return Format{Kind: FormatJSON, Pretty: true}, nil
	case s == "ndjson":
		return Format{Kind: FormatNdJSON}, nil
	case s == "parquet" || s == "geoparquet":
		return Format{Kind: FormatGeoparquet}, nil
	case strings.HasPrefix(s, "parquet[") || strings.HasPrefix(s, "geoparquet["):
		open := strings.Index(s, "[")
		if !strings.HasSuffix(s, "]") || open < 0 {
			return Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
		}
		compression := s[open+1 : len(s)-1]
		return Format{Kind: FormatGeoparquet, Compression: compression}, nil
	default:
		return Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// DecodeItem decodes a single Item from a JSON-encoded body, regardless of
// format (NDJSON callers decode line-by-line via DecodeNDJSON).
func DecodeItem(data []byte) (*Item, error) {
	var it Item
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// DecodeNDJSON splits on "\n", skips empty lines, decodes each as an Item,
// and collects the result into an ItemCollection.
func DecodeNDJSON(data []byte) (*ItemCollection, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var items []*Item
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		it, err := DecodeItem([]byte(line))
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewItemCollection(items), nil
}

// EncodeNDJSON writes one Item (compact JSON) per line, "\n"-separated,
// symmetric with DecodeNDJSON.
func EncodeNDJSON(items []*Item) ([]byte, error) {
	var buf bytes.Buffer
	for _, it := range items {
		raw, err := json.Marshal(it)
		if err != nil {
			return nil, err
		}
		buf.Write(raw)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// EncodeJSON marshals v as compact or pretty JSON per the format flag.
func EncodeJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
