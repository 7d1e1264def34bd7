package stac

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// SortBy is a single sort criterion.
type SortBy struct {
	Field     string `json:"field"`
	Direction string `json:"direction"` // "asc" or "desc"
}

// Fields selects which item properties a search response should include or
// exclude (the fields extension).
type Fields struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// Items is the STAC API Items/Search request body shared by both
// endpoints: limit/bbox/datetime/fields/sortby/filter/query plus
// additional (extension) fields.
type Items struct {
	Limit      *int            `json:"limit,omitempty"`
	Bbox       Bbox            `json:"bbox,omitempty"`
	Datetime   string          `json:"datetime,omitempty"`
	Fields     *Fields         `json:"fields,omitempty"`
	Sortby     []SortBy        `json:"sortby,omitempty"`
	FilterCRS  string          `json:"filter-crs,omitempty"`
	Filter     *Cql2Expr       `json:"-"`
	FilterLang FilterLang      `json:"filter-lang,omitempty"`
	Query      map[string]any  `json:"query,omitempty"`

	AdditionalFields map[string]any `json:"-"`
}

// Search extends Items with the /search-only fields: intersects, ids, and
// collections.
type Search struct {
	Items
	Intersects  *geojson.Geometry `json:"intersects,omitempty"`
	IDs         []string          `json:"ids,omitempty"`
	Collections []string          `json:"collections,omitempty"`
}

// MarshalJSON flattens AdditionalFields alongside the named fields, the
// same treatment every other entity with an additional_fields map gets
// (marshalWithAdditional in asset.go). Without this, a merged cursor
// value (e.g. {"skip":1}) stashed in AdditionalFields for a POST
// pagination link body would silently vanish on marshal.
func (i Items) MarshalJSON() ([]byte, error) {
	type alias Items
	return marshalWithAdditional(alias(i), i.AdditionalFields)
}

// MarshalJSON merges the embedded Items' flattened JSON (which already
// carries its own AdditionalFields) with Search's own intersects/ids/
// collections fields. It cannot take the marshalWithAdditional(alias(s), ...)
// shortcut the other entities use: an alias of Search still embeds Items
// anonymously, so it would inherit Items.MarshalJSON by promotion and
// silently drop the ids/intersects/collections fields.
func (s Search) MarshalJSON() ([]byte, error) {
	itemsJSON, err := s.Items.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(itemsJSON, &merged); err != nil {
		return nil, err
	}

	type searchOnly struct {
		Intersects  *geojson.Geometry `json:"intersects,omitempty"`
		IDs         []string          `json:"ids,omitempty"`
		Collections []string          `json:"collections,omitempty"`
	}
	onlyJSON, err := json.Marshal(searchOnly{s.Intersects, s.IDs, s.Collections})
	if err != nil {
		return nil, err
	}
	var only map[string]json.RawMessage
	if err := json.Unmarshal(onlyJSON, &only); err != nil {
		return nil, err
	}
	for k, v := range only {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// itemsKnownJSONKeys lists every top-level JSON key Items/Search already
// interpret by name. "filter" is listed (even though Filter is json:"-")
// so an incoming cql2-json filter object is not swept into
// AdditionalFields as if it were an opaque extension field; "collections"/
// "ids"/"intersects" are listed so Search's own fields, unmarshaled
// separately below, are not duplicated into the embedded Items'
// AdditionalFields.
var itemsKnownJSONKeys = map[string]bool{
	"limit": true, "bbox": true, "datetime": true, "fields": true,
	"sortby": true, "filter-crs": true, "filter": true, "filter-lang": true,
	"query": true, "collections": true, "ids": true, "intersects": true,
}

// UnmarshalJSON is the reverse of MarshalJSON: named fields decode
// normally, and anything left over (e.g. a re-POSTed pagination cursor
// like {"skip":1}) is captured into AdditionalFields instead of being
// silently discarded.
func (i *Items) UnmarshalJSON(data []byte) error {
	type alias Items
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*i = Items(a)
	fields, err := unmarshalAdditional(data, itemsKnownJSONKeys)
	if err != nil {
		return err
	}
	i.AdditionalFields = fields
	return nil
}

// UnmarshalJSON decodes the embedded Items fields (via Items.UnmarshalJSON,
// preserving AdditionalFields) and Search's own intersects/ids/collections
// fields separately, for the same reason Search.MarshalJSON can't use a
// single embedding alias: a *Search alias would promote Items'
// UnmarshalJSON and never see the Search-only fields.
func (s *Search) UnmarshalJSON(data []byte) error {
	var items Items
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	s.Items = items

	type searchOnly struct {
		Intersects  *geojson.Geometry `json:"intersects,omitempty"`
		IDs         []string          `json:"ids,omitempty"`
		Collections []string          `json:"collections,omitempty"`
	}
	var only searchOnly
	if err := json.Unmarshal(data, &only); err != nil {
		return err
	}
	s.Intersects = only.Intersects
	s.IDs = only.IDs
	s.Collections = only.Collections
	return nil
}

// Valid checks bbox validity and datetime syntax, matching spec.md §4.7:
// interval "a/b" must have a parseable endpoint on at least one side;
// start > end fails with ErrStartIsAfterEnd; "../.." fails with
// ErrEmptyDatetimeInterval.
func (i Items) Valid() error {
	if len(i.Bbox) > 0 {
		if err := i.Bbox.Validate(); err != nil {
			return err
		}
	}
	if i.Datetime == "" {
		return nil
	}
	if i.Datetime == "../.." {
		return ErrEmptyDatetimeInterval
	}
	return ValidateDatetime(i.Datetime)
}

// Matches reports whether item satisfies this Items request: the
// conjunction of bbox_matches, datetime_matches, query_matches and
// filter_matches. The latter two fail with ErrUnimplemented if the
// corresponding field is set, matching spec.md's parse-only support.
func (i Items) Matches(item *Item) (bool, error) {
	if len(i.Bbox) > 0 {
		ok, err := bboxMatches(i.Bbox, item)
		if err != nil || !ok {
			return false, err
		}
	}
	if i.Datetime != "" {
		ok, err := datetimeMatches(i.Datetime, item)
		if err != nil || !ok {
			return false, err
		}
	}
	if i.Query != nil {
		return false, fmt.Errorf("query: %w", ErrUnimplemented)
	}
	if i.Filter != nil {
		return false, fmt.Errorf("filter: %w", ErrUnimplemented)
	}
	return true, nil
}

// bboxMatches reports whether item's bbox intersects b. A 2D bbox with
// xmin > xmax is treated as two half-world bboxes unioned, per the
// antimeridian open question resolved in DESIGN.md.
func bboxMatches(b Bbox, item *Item) (bool, error) {
	if len(item.Bbox) == 0 {
		return false, nil
	}
	ib := item.Bbox
	if len(b) == 4 && b.CrossesAntimeridian() {
		west := Bbox{-180, b[1], b[2], b[3]}
		east := Bbox{b[0], b[1], 180, b[3]}
		return bboxIntersects(west, ib) || bboxIntersects(east, ib), nil
	}
	return bboxIntersects(b, ib), nil
}

func bboxIntersects(a, b Bbox) bool {
	if len(a) < 4 || len(b) < 4 {
		return false
	}
	return a[0] <= b[2] && b[0] <= a[2] && a[1] <= b[3] && b[1] <= a[3]
}

func datetimeMatches(dt string, item *Item) (bool, error) {
	start, end, err := ParseDatetimeInterval(dt)
	if err != nil {
		return false, err
	}
	itemStart := item.Properties.StartDatetime
	if itemStart == nil {
		itemStart = item.Properties.Datetime
	}
	itemEnd := item.Properties.EndDatetime
	if itemEnd == nil {
		itemEnd = item.Properties.Datetime
	}
	if itemStart == nil || itemEnd == nil {
		return false, nil
	}
	if start != nil && itemEnd.Before(*start) {
		return false, nil
	}
	if end != nil && itemStart.After(*end) {
		return false, nil
	}
	return true, nil
}

// GetItems is the GET-request-shaped form of Items: every field coerced to
// a query-string-safe string/comma-joined-list representation.
type GetItems struct {
	Limit      string
	Bbox       string
	Datetime   string
	Fields     string
	Sortby     string
	FilterCRS  string
	Filter     string
	FilterLang string
	Collections string
	IDs        string
	Intersects string
}

// ToGetItems stringifies numeric/list fields for the GET form. It rejects
// a cql2-json filter (must already be text) and rejects a `query` field
// (cannot be urlencoded as a single string), matching spec.md §4.7.
func (i Items) ToGetItems() (GetItems, error) {
	g := GetItems{}
	if i.Limit != nil {
		g.Limit = strconv.Itoa(*i.Limit)
	}
	if len(i.Bbox) > 0 {
		parts := make([]string, len(i.Bbox))
		for idx, v := range i.Bbox {
			parts[idx] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		g.Bbox = strings.Join(parts, ",")
	}
	g.Datetime = i.Datetime
	if i.Fields != nil {
		raw, _ := json.Marshal(i.Fields)
		g.Fields = string(raw)
	}
	if len(i.Sortby) > 0 {
		parts := make([]string, len(i.Sortby))
		for idx, s := range i.Sortby {
			prefix := "+"
			if s.Direction == "desc" {
				prefix = "-"
			}
			parts[idx] = prefix + s.Field
		}
		g.Sortby = strings.Join(parts, ",")
	}
	g.FilterCRS = i.FilterCRS
	if i.Filter != nil {
		if i.Filter.IsJSON() {
			return GetItems{}, ErrCannotConvertFilter
		}
		text, err := i.Filter.Text()
		if err != nil {
			return GetItems{}, err
		}
		g.Filter = text
		g.FilterLang = string(FilterLangCQL2Text)
	}
	if i.Query != nil {
		return GetItems{}, ErrCannotConvertQuery
	}
	return g, nil
}

// ToValues renders a GetItems as URL query parameters.
func (g GetItems) ToValues() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("limit", g.Limit)
	set("bbox", g.Bbox)
	set("datetime", g.Datetime)
	set("fields", g.Fields)
	set("sortby", g.Sortby)
	set("filter-crs", g.FilterCRS)
	set("filter", g.Filter)
	set("filter-lang", g.FilterLang)
	set("collections", g.Collections)
	set("ids", g.IDs)
	set("intersects", g.Intersects)
	return v
}

// ItemsFromValues parses a GET form back into an Items value, defaulting
// filter-lang to cql2-text, the reverse of ToGetItems.
func ItemsFromValues(v url.Values) (Items, error) {
	i := Items{}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Items{}, fmt.Errorf("invalid limit: %w", err)
		}
		i.Limit = &n
	}
	if s := v.Get("bbox"); s != "" {
		parts := strings.Split(s, ",")
		bbox := make(Bbox, len(parts))
		for idx, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return Items{}, fmt.Errorf("invalid bbox coordinate: %w", err)
			}
			bbox[idx] = f
		}
		i.Bbox = bbox
	}
	i.Datetime = v.Get("datetime")
	if s := v.Get("fields"); s != "" {
		var f Fields
		if err := json.Unmarshal([]byte(s), &f); err != nil {
			return Items{}, fmt.Errorf("invalid fields: %w", err)
		}
		i.Fields = &f
	}
	if s := v.Get("sortby"); s != "" {
		for _, field := range strings.Split(s, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			direction := "asc"
			if strings.HasPrefix(field, "+") {
				field = field[1:]
			} else if strings.HasPrefix(field, "-") {
				direction = "desc"
				field = field[1:]
			}
			i.Sortby = append(i.Sortby, SortBy{Field: field, Direction: direction})
		}
	}
	i.FilterCRS = v.Get("filter-crs")
	if f := v.Get("filter"); f != "" {
		lang := v.Get("filter-lang")
		if lang == "" {
			lang = string(FilterLangCQL2Text)
		}
		i.FilterLang = FilterLang(lang)
		var expr Cql2Expr
		if lang == string(FilterLangCQL2JSON) {
			expr = NewCql2JSON(json.RawMessage(f))
		} else {
			expr = NewCql2Text(f)
		}
		i.Filter = &expr
	}

	for k, vals := range v {
		if itemsKnownQueryKeys[k] || len(vals) == 0 {
			continue
		}
		if i.AdditionalFields == nil {
			i.AdditionalFields = map[string]any{}
		}
		i.AdditionalFields[k] = vals[0]
	}

	return i, nil
}

// itemsKnownQueryKeys lists every query parameter ItemsFromValues/
// SearchFromValues already interpret by name. Anything else (e.g. the
// in-memory backend's "skip" pagination cursor) is opaque to this package
// and is carried through unparsed in AdditionalFields instead of being
// silently dropped.
var itemsKnownQueryKeys = map[string]bool{
	"limit": true, "bbox": true, "datetime": true, "fields": true,
	"sortby": true, "filter-crs": true, "filter": true, "filter-lang": true,
	"collections": true, "ids": true, "intersects": true,
}

// SearchFromValues parses a GET /search query string into a Search,
// extending ItemsFromValues with the /search-only collections/ids/
// intersects fields.
func SearchFromValues(v url.Values) (Search, error) {
	items, err := ItemsFromValues(v)
	if err != nil {
		return Search{}, err
	}
	s := Search{Items: items}
	if c := v.Get("collections"); c != "" {
		s.Collections = splitCSV(c)
	}
	if ids := v.Get("ids"); ids != "" {
		s.IDs = splitCSV(ids)
	}
	if g := v.Get("intersects"); g != "" {
		geom, err := geojson.UnmarshalGeometry([]byte(g))
		if err != nil {
			return Search{}, fmt.Errorf("invalid intersects geometry: %w", err)
		}
		s.Intersects = geom
	}
	return s, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
