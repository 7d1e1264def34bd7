package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stac-utils/stac-go/internal/backend"
	"github.com/stac-utils/stac-go/internal/config"
	"github.com/stac-utils/stac-go/internal/stac"
)

func testItem(id, collectionID string) *stac.Item {
	it := stac.NewItem(id)
	it.Collection = collectionID
	now := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	it.Properties.Datetime = &now
	return it
}

func testServer(t *testing.T, seed func(*backend.Memory)) *httptest.Server {
	t.Helper()
	store := backend.NewMemory()
	if seed != nil {
		seed(store)
	}

	srv := httptest.NewUnstartedServer(http.NotFoundHandler())
	root := "http://" + srv.Listener.Addr().String()

	cfg := &config.Config{
		STAC: config.STACConfig{Version: "1.0.0", Title: "Test STAC API", Description: "a test catalog", BaseURL: root},
		Features: config.FeatureConfig{
			EnableSearch:     true,
			EnableQueryables: true,
			DefaultLimit:     10,
			MaxLimit:         250,
		},
	}

	stacAPI, err := New(store, root, "an-id", "a description")
	require.NoError(t, err)

	h := NewHandlers(cfg, stacAPI, slog.Default())
	srv.Config.Handler = NewRouter(h, slog.Default())
	srv.Start()
	return srv
}

func TestLandingPageListsCollectionsAndConformance(t *testing.T) {
	srv := testServer(t, func(m *backend.Memory) {
		_ = m.AddCollection(context.Background(), stac.NewCollection("a-collection", "A description"))
	})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "an-id", body["id"])
	assert.Contains(t, body, "conformsTo")

	conforms, _ := body["conformsTo"].([]any)
	var found bool
	for _, c := range conforms {
		if c == stac.ConformsItemSearch {
			found = true
		}
	}
	assert.True(t, found, "memory backend advertises item-search")
}

func TestCollectionNotFound(t *testing.T) {
	srv := testServer(t, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/collections/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestItemsPaginationLinksFollowSkip(t *testing.T) {
	srv := testServer(t, func(m *backend.Memory) {
		ctx := context.Background()
		_ = m.AddCollection(ctx, stac.NewCollection("c", "d"))
		for i := 0; i < 3; i++ {
			_ = m.AddItem(ctx, testItem(fmt.Sprintf("item-%d", i), "c"))
		}
	})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/collections/c/items?limit=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ic stac.ItemCollection
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ic))
	require.Len(t, ic.Features, 1)

	next, ok := stac.LinkOf(&ic, stac.RelNext)
	require.True(t, ok)
	u, err := url.Parse(next.Href)
	require.NoError(t, err)
	assert.Equal(t, "1", u.Query().Get("skip"))

	resp2, err := http.Get(next.Href)
	require.NoError(t, err)
	defer resp2.Body.Close()
	var ic2 stac.ItemCollection
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&ic2))
	require.Len(t, ic2.Features, 1)
	assert.Equal(t, "item-1", ic2.Features[0].ID)

	prev, ok := stac.LinkOf(&ic2, stac.RelPrev)
	require.True(t, ok)
	pu, err := url.Parse(prev.Href)
	require.NoError(t, err)
	assert.Equal(t, "0", pu.Query().Get("skip"))
}

func TestSearchPOSTFindsItemByID(t *testing.T) {
	srv := testServer(t, func(m *backend.Memory) {
		ctx := context.Background()
		_ = m.AddCollection(ctx, stac.NewCollection("c", "d"))
		_ = m.AddItem(ctx, testItem("wanted", "c"))
		_ = m.AddItem(ctx, testItem("other", "c"))
	})
	defer srv.Close()

	body, _ := json.Marshal(map[string]any{"ids": []string{"wanted"}})
	resp, err := http.Post(srv.URL+"/search", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ic stac.ItemCollection
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ic))
	require.Len(t, ic.Features, 1)
	assert.Equal(t, "wanted", ic.Features[0].ID)
}

func TestQueryablesIsAPurePunt(t *testing.T) {
	srv := testServer(t, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/queryables")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["additionalProperties"])
	assert.Empty(t, body["properties"])
}
