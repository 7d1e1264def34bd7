// Package stacclient implements the paging STAC API search client named in
// spec.md §4.6: collection lookup, items/search paging, and a channel-backed
// lazy item stream that follows `next` links. Translated from the async
// producer/consumer design of
// _examples/original_source/crates/api/src/client.rs (stream_pages/
// stream_items/not_found_to_none) into Go idiom: a goroutine producer
// feeding a buffered channel in place of tokio::spawn + mpsc.
package stacclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/stac-utils/stac-go/internal/stac"
)

const defaultChannelBuffer = 4

const userAgent = "stac-go/0.1"

// Client is a STAC API client rooted at a base URL (spec.md §4.6's URL
// builder: /collections, /collections/{id}, /collections/{id}/items,
// /search).
type Client struct {
	httpClient    *http.Client
	baseURL       string
	channelBuffer int
	userAgent     string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client (the default is
// http.DefaultClient).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithChannelBuffer overrides the producer/consumer channel's buffer size.
func WithChannelBuffer(n int) Option {
	return func(cl *Client) { cl.channelBuffer = n }
}

// New constructs a Client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient:    http.DefaultClient,
		baseURL:       strings.TrimRight(baseURL, "/"),
		channelBuffer: defaultChannelBuffer,
		userAgent:     userAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ItemResult is one element of an item stream: either an Item or a
// terminal error (spec.md §4.6's "any other fetch error is forwarded as a
// single Err item and terminates").
type ItemResult struct {
	Item *stac.Item
	Err  error
}

// Collection fetches a single collection by id, mapping a 404 to (nil, nil)
// per spec.md §4.6; any other HTTP-level error is returned.
func (c *Client) Collection(ctx context.Context, id string) (*stac.Collection, error) {
	u := c.baseURL + "/collections/" + url.PathEscape(id)
	var col stac.Collection
	err := c.getJSON(ctx, u, &col)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	col.SetSelfHref(u)
	return &col, nil
}

// Items streams the items of collectionID, converting req to GET query
// parameters (spec.md §4.6) and following pagination via stream_items.
func (c *Client) Items(ctx context.Context, collectionID string, req stac.Items) (<-chan ItemResult, error) {
	get, err := req.ToGetItems()
	if err != nil {
		return nil, err
	}
	u := c.baseURL + "/collections/" + url.PathEscape(collectionID) + "/items"
	values := get.ToValues()
	if len(values) > 0 {
		u += "?" + values.Encode()
	}
	var page stac.ItemCollection
	if err := c.getJSON(ctx, u, &page); err != nil {
		return nil, err
	}
	return c.streamItems(ctx, &page), nil
}

// Search POSTs req to /search and streams the resulting items, following
// pagination via stream_items.
func (c *Client) Search(ctx context.Context, req stac.Search) (<-chan ItemResult, error) {
	u := c.baseURL + "/search"
	var page stac.ItemCollection
	if err := c.postJSON(ctx, u, req, &page); err != nil {
		return nil, err
	}
	return c.streamItems(ctx, &page), nil
}

// streamItems spawns the producer goroutine named in spec.md §4.6 and
// returns the consumer-facing item channel.
func (c *Client) streamItems(ctx context.Context, first *stac.ItemCollection) <-chan ItemResult {
	out := make(chan ItemResult, c.channelBuffer)
	go func() {
		defer close(out)
		page := first
		for {
			if len(page.Features) == 0 {
				return
			}
			for _, item := range page.Features {
				select {
				case out <- ItemResult{Item: item}:
				case <-ctx.Done():
					return
				}
			}

			next, ok := stac.LinkOf(page, stac.RelNext)
			if !ok {
				return
			}
			nextPage, err := c.followLink(ctx, next)
			if err == ErrNotFound {
				return
			}
			if err != nil {
				select {
				case out <- ItemResult{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			page = nextPage
		}
	}()
	return out
}

// followLink issues the HTTP request a `next`/`prev` link describes: method
// defaults to GET, headers and body are carried through verbatim, per
// spec.md §4.6's "authoritative pagination contract" note.
func (c *Client) followLink(ctx context.Context, link stac.Link) (*stac.ItemCollection, error) {
	method := link.Method
	if method == "" {
		method = http.MethodGet
	}
	var body []byte
	if len(link.Body) > 0 {
		raw, err := json.Marshal(link.Body)
		if err != nil {
			return nil, err
		}
		body = raw
	}

	var reqBody *bytes.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	} else {
		reqBody = bytes.NewReader(nil)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, link.Href, reqBody)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range link.Headers {
		httpReq.Header.Set(k, fmt.Sprintf("%v", v))
	}

	var page stac.ItemCollection
	if err := c.do(httpReq, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ErrNotFound is returned (and unwrapped to a clean termination or a nil
// result, per call site) when the server responds 404.
var ErrNotFound = fmt.Errorf("stacclient: resource not found")

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, u string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("stacclient: %s %s: unexpected status %d", req.Method, req.URL, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
