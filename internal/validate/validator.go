// Package validate implements an async, cached, extension-aware JSON Schema
// validator for STAC entities, translating the fixpoint-converging design
// of the Rust original (_examples/original_source/validate/src/validator.rs)
// into Go idiom: goroutines + errgroup in place of tokio::spawn, and a
// custom jsonschema.Loader playing the role of the Rust SchemaResolver.
package validate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/sync/errgroup"

	"github.com/stac-utils/stac-go/internal/stac"
)

const schemaBase = "https://schemas.stacspec.org"

// schemaSpecPath maps (type, version) to the schema path suffix used to
// build the core schema URL, mirroring Type::spec_path in the Rust
// original.
func schemaSpecPath(typ, version string) (string, error) {
	switch typ {
	case "Feature":
		return fmt.Sprintf("v%s/item-spec/json-schema/item.json", version), nil
	case "Catalog":
		return fmt.Sprintf("v%s/catalog-spec/json-schema/catalog.json", version), nil
	case "Collection":
		return fmt.Sprintf("v%s/collection-spec/json-schema/collection.json", version), nil
	default:
		return "", fmt.Errorf("validate: unknown stac type %q", typ)
	}
}

// ValidationError aggregates every schema violation found for a single
// validated value (spec.md's Validation(errors) case; never short-circuits
// on the first failure).
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate: %d validation error(s): %v", len(e.Errors), e.Errors[0])
}

// HTTPGetter fetches schema bytes by URL; satisfied by *http.Client.
type HTTPGetter interface {
	Get(url string) (*http.Response, error)
}

// Validator holds the shared, concurrently-mutated caches described in
// spec.md §4.5/§5: a uri->schema-json cache, a uri->compiled-validator
// cache, and an HTTP client used to resolve cache misses.
type Validator struct {
	client HTTPGetter

	mu           sync.RWMutex
	rawCache     map[string]json.RawMessage
	compiled     map[string]*jsonschema.Schema

	pendingMu sync.Mutex
	pending   map[string]bool
}

// New constructs a Validator with an empty cache and the given HTTP
// client (pass http.DefaultClient for a normal deployment, or any stub
// satisfying HTTPGetter in tests).
func New(client HTTPGetter) *Validator {
	if client == nil {
		client = http.DefaultClient
	}
	return &Validator{
		client:   client,
		rawCache: map[string]json.RawMessage{},
		compiled: map[string]*jsonschema.Schema{},
		pending:  map[string]bool{},
	}
}

// SeedSchema preloads the cache with the given URL's raw schema bytes,
// used to preseed the GeoJSON/draft-07/STAC core schemas the way the Rust
// Validator::new constructor does.
func (v *Validator) SeedSchema(url string, raw json.RawMessage) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rawCache[url] = raw
}

// Validate dispatches on the JSON shape of value: an object is validated
// via validateObject; an array validates every element, aggregating
// errors; anything else fails with ErrScalarJSON.
func (v *Validator) Validate(ctx context.Context, value json.RawMessage) error {
	var probe any
	if err := json.Unmarshal(value, &probe); err != nil {
		return err
	}
	switch probe.(type) {
	case map[string]any:
		return v.validateObject(ctx, value)
	case []any:
		var items []json.RawMessage
		if err := json.Unmarshal(value, &items); err != nil {
			return err
		}
		var errs []error
		for _, item := range items {
			if err := v.validateObject(ctx, item); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			return &ValidationError{Errors: errs}
		}
		return nil
	default:
		return fmt.Errorf("validate: %w", stac.ErrScalarJSON)
	}
}

type coreFields struct {
	Type           string   `json:"type"`
	StacVersion    string   `json:"stac_version"`
	StacExtensions []string `json:"stac_extensions"`
	Features       []json.RawMessage `json:"features"`
}

// validateObject implements spec.md §4.5's validate_object: a
// FeatureCollection recurses into its features; otherwise it derives
// (type, version) and runs the core schema, then every extension schema
// concurrently. On a schema-compile failure caused by unresolved $refs, it
// fetches the pending URLs concurrently and retries — the fixpoint loop.
func (v *Validator) validateObject(ctx context.Context, value json.RawMessage) error {
	var fields coreFields
	if err := json.Unmarshal(value, &fields); err != nil {
		return err
	}
	if fields.Type == "FeatureCollection" {
		var errs []error
		for _, f := range fields.Features {
			if err := v.validateObject(ctx, f); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			return &ValidationError{Errors: errs}
		}
		return nil
	}

	path, err := schemaSpecPath(fields.Type, fields.StacVersion)
	if err != nil {
		return err
	}
	coreURL := schemaBase + "/" + path

	var errs []error
	if err := v.runSchema(ctx, coreURL, value); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		errs = append(errs, verr.Errors...)
	}

	g, gctx := errgroup.WithContext(ctx)
	errCh := make(chan error, len(fields.StacExtensions))
	for _, ext := range fields.StacExtensions {
		ext := ext
		g.Go(func() error {
			if err := v.runSchema(gctx, ext, value); err != nil {
				errCh <- err
			}
			return nil
		})
	}
	_ = g.Wait()
	close(errCh)
	for err := range errCh {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// runSchema compiles (or reuses a compiled) schema at url and validates
// value against it, driving the fixpoint loop on compile failure.
func (v *Validator) runSchema(ctx context.Context, url string, value json.RawMessage) error {
	schema, err := v.schema(ctx, url)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(value, &doc); err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return &ValidationError{Errors: []error{err}}
	}
	return nil
}

// schema returns a compiled schema for url, resolving any pending $ref
// URLs concurrently and retrying compilation until it succeeds (the
// fixpoint: try-compile -> collect missing refs -> fetch in parallel ->
// retry).
func (v *Validator) schema(ctx context.Context, url string) (*jsonschema.Schema, error) {
	v.mu.RLock()
	if s, ok := v.compiled[url]; ok {
		v.mu.RUnlock()
		return s, nil
	}
	v.mu.RUnlock()

	for {
		schema, missing, err := v.tryCompile(url)
		if err == nil {
			v.mu.Lock()
			v.compiled[url] = schema
			v.mu.Unlock()
			return schema, nil
		}
		if len(missing) == 0 {
			return nil, err
		}
		if resolveErr := v.resolveAll(ctx, missing); resolveErr != nil {
			return nil, resolveErr
		}
	}
}

// tryCompile attempts to compile url's schema using the current cache. On
// failure, it returns the set of URLs the retrieve hook recorded as
// unresolved (the Go analogue of the Rust Resolver's pending-set side
// channel).
func (v *Validator) tryCompile(url string) (schema *jsonschema.Schema, missing []string, err error) {
	v.pendingMu.Lock()
	v.pending = map[string]bool{}
	v.pendingMu.Unlock()

	compiler := jsonschema.NewCompiler()
	compiler.UseLoader(v)

	schema, err = compiler.Compile(url)
	if err != nil {
		v.pendingMu.Lock()
		for u := range v.pending {
			missing = append(missing, u)
		}
		v.pendingMu.Unlock()
		return nil, missing, err
	}
	return schema, nil, nil
}

// Load implements jsonschema.Loader: cache hit returns the cached bytes; a
// miss records the URL as pending and returns an error, the retrieve-hook
// behavior spec.md §4.5 describes.
func (v *Validator) Load(url string) (any, error) {
	v.mu.RLock()
	raw, ok := v.rawCache[url]
	v.mu.RUnlock()
	if ok {
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	v.pendingMu.Lock()
	v.pending[url] = true
	v.pendingMu.Unlock()
	return nil, fmt.Errorf("validate: schema %q not yet cached, scheduling resolution", url)
}

// resolveAll fetches every URL in urls concurrently and seeds the cache,
// mirroring the Rust get_urls background task's per-URL fan-out (minus its
// in-flight request de-duplication, which Go's errgroup fan-out makes
// unnecessary here since each call to resolveAll owns a fresh URL set).
func (v *Validator) resolveAll(ctx context.Context, urls []string) error {
	g, _ := errgroup.WithContext(ctx)
	for _, u := range urls {
		u := u
		g.Go(func() error {
			return v.resolve(u)
		})
	}
	return g.Wait()
}

func (v *Validator) resolve(url string) error {
	v.mu.RLock()
	_, ok := v.rawCache[url]
	v.mu.RUnlock()
	if ok {
		return nil
	}
	resp, err := v.client.Get(url)
	if err != nil {
		return fmt.Errorf("validate: fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("validate: reading %s: %w", url, err)
	}
	v.SeedSchema(url, body)
	return nil
}
