// Package server provides a public API for embedding the STAC API server.
package server

import (
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/stac-utils/stac-go/internal/api"
	"github.com/stac-utils/stac-go/internal/backend"
	"github.com/stac-utils/stac-go/internal/config"
)

// Options configures the STAC API server.
type Options struct {
	// BaseURL is the public-facing URL for self-referential links (required).
	// Example: "https://stac.example.com" or "http://localhost:8080"
	BaseURL string

	// Backend is the data source the API serves. Default: an empty
	// in-memory backend.Memory.
	Backend backend.Backend

	// ID is the landing page catalog id.
	// Default: "stac-api"
	ID string

	// Title is the STAC API title.
	// Default: "STAC API"
	Title string

	// Description is the STAC API description.
	// Default: "A STAC API"
	Description string

	// DefaultLimit is the default number of items per page.
	// Default: 10
	DefaultLimit int

	// MaxLimit is the maximum number of items per page.
	// Default: 250
	MaxLimit int

	// EnableSearch enables the /search endpoint. New does not default it:
	// the zero value (false) leaves /search answering 501.
	EnableSearch bool

	// EnableQueryables enables the /queryables endpoints. New does not
	// default it: the zero value (false) leaves them unregistered.
	EnableQueryables bool

	// Logger is the slog logger to use.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Server is a STAC API server that can be embedded in another application.
type Server struct {
	router chi.Router
}

// New creates a new STAC API server with the given options.
func New(opts Options) (*Server, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("server: BaseURL is required")
	}
	if opts.Backend == nil {
		opts.Backend = backend.NewMemory()
	}
	if opts.ID == "" {
		opts.ID = "stac-api"
	}
	if opts.Title == "" {
		opts.Title = "STAC API"
	}
	if opts.Description == "" {
		opts.Description = "A STAC API"
	}
	if opts.DefaultLimit == 0 {
		opts.DefaultLimit = 10
	}
	if opts.MaxLimit == 0 {
		opts.MaxLimit = 250
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cfg := &config.Config{
		STAC: config.STACConfig{
			Version:     "1.0.0",
			BaseURL:     opts.BaseURL,
			Title:       opts.Title,
			Description: opts.Description,
		},
		Features: config.FeatureConfig{
			EnableSearch:     opts.EnableSearch,
			EnableQueryables: opts.EnableQueryables,
			DefaultLimit:     opts.DefaultLimit,
			MaxLimit:         opts.MaxLimit,
		},
	}

	stacAPI, err := api.New(opts.Backend, opts.BaseURL, opts.ID, opts.Description)
	if err != nil {
		return nil, err
	}

	handlers := api.NewHandlers(cfg, stacAPI, opts.Logger)
	router := api.NewRouter(handlers, opts.Logger)

	return &Server{router: router}, nil
}

// Router returns the chi.Router for mounting in another application.
func (s *Server) Router() chi.Router {
	return s.router
}
