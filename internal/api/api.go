package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/stac-utils/stac-go/internal/backend"
	"github.com/stac-utils/stac-go/internal/stac"
)

// Api composes a backend.Backend into the STAC API surface named in
// spec.md §4.9: link synthesis (root/self/parent/collection/pagination)
// layered on top of the backend's bare data. Grounded on
// original_source/crates/server/src/api.rs's Api<B>, translated from a
// generic-over-Backend Rust struct into a Go struct holding a
// backend.Backend interface value.
type Api struct {
	Backend     backend.Backend
	ID          string
	Description string
	Root        *url.URL
}

// New constructs an Api rooted at root (e.g. "https://stac.example.com").
func New(b backend.Backend, root, id, description string) (*Api, error) {
	u, err := url.Parse(root)
	if err != nil {
		return nil, fmt.Errorf("api: invalid root url: %w", err)
	}
	return &Api{Backend: b, ID: id, Description: description, Root: u}, nil
}

func (a *Api) url(path string) (string, error) {
	rel, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	return a.Root.ResolveReference(rel).String(), nil
}

func (a *Api) mustURL(path string) string {
	u, err := a.url(path)
	if err != nil {
		return a.Root.String() + path
	}
	return u
}

// RootDocument builds the landing page: a Catalog with the service-desc/
// service-doc/conformance/data/search links plus one child link per
// collection, wrapped with the conformance classes.
func (a *Api) RootDocument(ctx context.Context) (*stac.Root, error) {
	catalog := stac.NewCatalog(a.ID, a.Description)
	stac.SetLink(catalog, stac.Root(a.Root.String()))
	stac.SetLink(catalog, stac.SelfLink(a.Root.String()))
	stac.AddLink(catalog, stac.New(a.mustURL("/api"), stac.RelServiceDesc).WithType("application/vnd.oai.openapi+json;version=3.0"))
	stac.AddLink(catalog, stac.New(a.mustURL("/api.html"), stac.RelServiceDoc).WithType("text/html"))
	stac.AddLink(catalog, stac.New(a.mustURL("/conformance"), stac.RelConformance).JSON())
	stac.AddLink(catalog, stac.New(a.mustURL("/collections"), stac.RelData).JSON())

	collections, err := a.Backend.Collections(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range collections {
		stac.AddLink(catalog, stac.Child(a.mustURL("/collections/"+url.PathEscape(c.ID))))
	}

	searchURL := a.mustURL("/search")
	stac.AddLink(catalog, stac.New(searchURL, stac.RelSearch).GeoJSON().WithMethod(http.MethodGet))
	stac.AddLink(catalog, stac.New(searchURL, stac.RelSearch).GeoJSON().WithMethod(http.MethodPost))
	if a.Backend.HasFilter() {
		stac.AddLink(catalog, stac.New(a.mustURL("/queryables"), stac.RelQueryables).WithType("application/schema+json"))
	}

	return &stac.Root{Catalog: catalog, Conformance: a.Conformance()}, nil
}

// Conformance reports the conformance classes this Api's backend satisfies.
func (a *Api) Conformance() stac.Conformance {
	c := stac.NewConformance()
	if a.Backend.HasItemSearch() {
		c = c.WithItemSearch()
	}
	if a.Backend.HasFilter() {
		c = c.WithFilter()
	}
	return c
}

// Queryables is a pure punt per the filter extension spec, matching
// original_source/crates/server/src/api.rs::queryables exactly: no backend
// actually advertises per-field constraints, so the document only
// declares additionalProperties are allowed.
func (a *Api) Queryables(collectionID string) map[string]any {
	id := a.mustURL("/queryables")
	title := "Queryables for " + a.ID
	if collectionID != "" {
		id = a.mustURL("/collections/" + url.PathEscape(collectionID) + "/queryables")
		title = "Queryables for " + collectionID
	}
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2019-09/schema",
		"$id":                  id,
		"type":                 "object",
		"title":                title,
		"description":          "Queryable names for the " + a.ID + " Item Search filter.",
		"properties":           map[string]any{},
		"additionalProperties": true,
	}
}

// Collections returns every collection, each with its own link set.
func (a *Api) Collections(ctx context.Context) (*stac.Collections, error) {
	raw, err := a.Backend.Collections(ctx)
	if err != nil {
		return nil, err
	}
	out := stac.NewCollections(raw)
	stac.SetLink(out, stac.Root(a.Root.String()))
	stac.SetLink(out, stac.SelfLink(a.mustURL("/collections")))
	for _, c := range out.Collections {
		a.setCollectionLinks(c)
	}
	return out, nil
}

// Collection returns a single collection, or (nil, nil) if it does not
// exist.
func (a *Api) Collection(ctx context.Context, id string) (*stac.Collection, error) {
	c, err := a.Backend.Collection(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	a.setCollectionLinks(c)
	return c, nil
}

func (a *Api) setCollectionLinks(c *stac.Collection) {
	stac.SetLink(c, stac.Root(a.Root.String()))
	stac.SetLink(c, stac.SelfLink(a.mustURL("/collections/"+url.PathEscape(c.ID))))
	stac.SetLink(c, stac.Parent(a.Root.String()))
	stac.SetLink(c, stac.New(a.mustURL("/collections/"+url.PathEscape(c.ID)+"/items"), stac.RelItems).GeoJSON())
}

// Items returns a collection's items, or (nil, nil) if the collection
// itself does not exist. Pagination links are synthesized from the
// backend's opaque Next/Prev field maps merged into req, following GET
// query-string conventions (the server only ever serves items via GET).
func (a *Api) Items(ctx context.Context, collectionID string, req stac.Items) (*stac.ItemCollection, error) {
	ic, err := a.Backend.Items(ctx, collectionID, req)
	if err != nil || ic == nil {
		return nil, err
	}

	collectionURL := a.mustURL("/collections/" + url.PathEscape(collectionID))
	itemsURL := a.mustURL("/collections/" + url.PathEscape(collectionID) + "/items")
	stac.SetLink(ic, stac.Root(a.Root.String()))
	stac.SetLink(ic, stac.New(itemsURL, stac.RelSelf).GeoJSON())
	stac.SetLink(ic, stac.CollectionLink(collectionURL))

	if err := a.addPaginationLinks(ic, itemsURL, req, http.MethodGet); err != nil {
		return nil, err
	}
	for _, item := range ic.Features {
		a.setItemLinks(item)
	}
	return ic, nil
}

// Item returns a single item, or (nil, nil) if it does not exist.
func (a *Api) Item(ctx context.Context, collectionID, itemID string) (*stac.Item, error) {
	item, err := a.Backend.Item(ctx, collectionID, itemID)
	if err != nil || item == nil {
		return nil, err
	}
	a.setItemLinks(item)
	return item, nil
}

func (a *Api) setItemLinks(item *stac.Item) {
	stac.SetLink(item, stac.Root(a.Root.String()))
	stac.SetLink(item, stac.New(a.mustURL("/collections/"+url.PathEscape(item.Collection)+"/items/"+url.PathEscape(item.ID)), stac.RelSelf).GeoJSON())
	if item.Collection != "" {
		collectionURL := a.mustURL("/collections/" + url.PathEscape(item.Collection))
		stac.SetLink(item, stac.CollectionLink(collectionURL))
		stac.SetLink(item, stac.Parent(collectionURL))
	}
}

// Search runs req and synthesizes pagination links against the /search
// endpoint's own method (GET parameters vs POST body), per
// original_source/crates/server/src/api.rs::search.
func (a *Api) Search(ctx context.Context, req stac.Search, method string) (*stac.ItemCollection, error) {
	ic, err := a.Backend.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	stac.SetLink(ic, stac.Root(a.Root.String()))
	searchURL := a.mustURL("/search")
	if err := a.addSearchPaginationLinks(ic, searchURL, req, method); err != nil {
		return nil, err
	}
	for _, item := range ic.Features {
		a.setItemLinks(item)
	}
	return ic, nil
}

// addPaginationLinks merges the backend's opaque Next/Prev field maps into
// req and turns the result into a `next`/`prev` link, the Open Question
// resolution recorded in DESIGN.md: an opaque additional_fields map merged
// into the next request, not a server-specific query parameter scheme.
func (a *Api) addPaginationLinks(ic *stac.ItemCollection, baseURL string, req stac.Items, method string) error {
	if ic.Next != nil {
		link, err := paginationLink(baseURL, mergeItems(req, ic.Next), "next", method)
		if err != nil {
			return err
		}
		stac.SetLink(ic, link)
		ic.Next = nil
	}
	if ic.Prev != nil {
		link, err := paginationLink(baseURL, mergeItems(req, ic.Prev), "prev", method)
		if err != nil {
			return err
		}
		stac.SetLink(ic, link)
		ic.Prev = nil
	}
	return nil
}

func (a *Api) addSearchPaginationLinks(ic *stac.ItemCollection, baseURL string, req stac.Search, method string) error {
	if ic.Next != nil {
		link, err := paginationLinkSearch(baseURL, mergeSearch(req, ic.Next), "next", method)
		if err != nil {
			return err
		}
		stac.SetLink(ic, link)
		ic.Next = nil
	}
	if ic.Prev != nil {
		link, err := paginationLinkSearch(baseURL, mergeSearch(req, ic.Prev), "prev", method)
		if err != nil {
			return err
		}
		stac.SetLink(ic, link)
		ic.Prev = nil
	}
	return nil
}

func mergeItems(req stac.Items, extra map[string]any) stac.Items {
	merged := map[string]any{}
	for k, v := range req.AdditionalFields {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	req.AdditionalFields = merged
	return req
}

func mergeSearch(req stac.Search, extra map[string]any) stac.Search {
	req.Items = mergeItems(req.Items, extra)
	return req
}

func paginationLink(baseURL string, data stac.Items, rel, method string) (stac.Link, error) {
	switch method {
	case http.MethodGet:
		get, err := data.ToGetItems()
		if err != nil {
			return stac.Link{}, err
		}
		values := get.ToValues()
		for k, v := range data.AdditionalFields {
			values.Set(k, fmt.Sprintf("%v", v))
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return stac.Link{}, err
		}
		u.RawQuery = values.Encode()
		return stac.New(u.String(), rel).GeoJSON().WithMethod(http.MethodGet), nil
	case http.MethodPost:
		return stac.New(baseURL, rel).GeoJSON().WithMethod(http.MethodPost).WithBody(data)
	default:
		return stac.Link{}, fmt.Errorf("api: unsupported pagination method %q", method)
	}
}

func paginationLinkSearch(baseURL string, data stac.Search, rel, method string) (stac.Link, error) {
	switch method {
	case http.MethodGet:
		get, err := data.ToGetItems()
		if err != nil {
			return stac.Link{}, err
		}
		values := get.ToValues()
		if len(data.Collections) > 0 {
			values.Set("collections", joinCSV(data.Collections))
		}
		if len(data.IDs) > 0 {
			values.Set("ids", joinCSV(data.IDs))
		}
		for k, v := range data.AdditionalFields {
			values.Set(k, fmt.Sprintf("%v", v))
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return stac.Link{}, err
		}
		u.RawQuery = values.Encode()
		return stac.New(u.String(), rel).GeoJSON().WithMethod(http.MethodGet), nil
	case http.MethodPost:
		return stac.New(baseURL, rel).GeoJSON().WithMethod(http.MethodPost).WithBody(data)
	default:
		return stac.Link{}, fmt.Errorf("api: unsupported pagination method %q", method)
	}
}

func joinCSV(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ","
		}
		out += v
	}
	return out
}
