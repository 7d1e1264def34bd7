package stacclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stac-utils/stac-go/internal/stac"
)

func TestCollectionMapsNotFoundToNilNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	col, err := c.Collection(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, col)
}

func TestCollectionPropagatesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Collection(context.Background(), "x")
	assert.Error(t, err)
}

// TestItemsFollowsNextUntilEmptyPage drives a two-page fixture across the
// stream_items termination rules from spec.md §4.6: page one carries a
// `next` link, page two is empty and terminates the stream even though it
// could in principle carry another `next`.
func TestItemsFollowsNextUntilEmptyPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/collections/test/items", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type": "FeatureCollection",
			"features": []map[string]any{
				featureFixture("a"), featureFixture("b"),
			},
			"links": []map[string]any{
				{"rel": "next", "href": "http://" + r.Host + "/page2", "type": "application/geo+json"},
			},
		})
	})
	mux.HandleFunc("/page2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":     "FeatureCollection",
			"features": []map[string]any{},
			"links": []map[string]any{
				{"rel": "next", "href": "http://" + r.Host + "/page3", "type": "application/geo+json"},
			},
		})
	})
	mux.HandleFunc("/page3", func(w http.ResponseWriter, r *http.Request) {
		t.Error("page3 should never be fetched: an empty page terminates the stream")
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	ch, err := c.Items(context.Background(), "test", stac.Items{})
	require.NoError(t, err)

	var ids []string
	for res := range ch {
		require.NoError(t, res.Err)
		ids = append(ids, res.Item.ID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}

// TestItemsTerminatesCleanlyOnMissingNext exercises the other termination
// rule: no `next` link at all ends the stream without error.
func TestItemsTerminatesCleanlyOnMissingNext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/collections/test/items", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":     "FeatureCollection",
			"features": []map[string]any{featureFixture("only")},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	ch, err := c.Items(context.Background(), "test", stac.Items{})
	require.NoError(t, err)

	var ids []string
	for res := range ch {
		require.NoError(t, res.Err)
		ids = append(ids, res.Item.ID)
	}
	assert.Equal(t, []string{"only"}, ids)
}

func featureFixture(id string) map[string]any {
	return map[string]any{
		"type":        "Feature",
		"stac_version": "1.0.0",
		"id":          id,
		"geometry":    nil,
		"properties":  map[string]any{"datetime": "2023-01-01T00:00:00Z"},
		"links":       []any{},
		"assets":      map[string]any{},
	}
}
