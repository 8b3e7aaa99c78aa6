package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sagarc03/notes"
)

// Service is the set of note operations the handler exposes.
type Service interface {
	Create(ctx context.Context, ownerID string, in notes.CreateNoteRequest) (notes.Note, error)
	Get(ctx context.Context, ownerID, itemID string) (notes.Note, error)
	List(ctx context.Context, ownerID string) ([]notes.Note, error)
	Update(ctx context.Context, ownerID, itemID string, in notes.UpdateNoteRequest) (notes.StatusResult, error)
	Delete(ctx context.Context, ownerID, itemID string) (notes.StatusResult, error)
}

type HandlerConfig struct {
	ErrorStatus  ErrorStatus
	MaxBodyBytes int64
	Resolver     IdentityResolver
	Logger       *slog.Logger
}

// Handler provides the HTTP surface of the note service.
type Handler struct {
	config  HandlerConfig
	service Service
	adapter *Adapter
	logger  *slog.Logger
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		config:  *config,
		service: service,
		adapter: NewAdapter(config.ErrorStatus, config.MaxBodyBytes, logger),
		logger:  logger,
	}
}

// Adapter returns the adapter shaping this handler's responses.
func (h *Handler) Adapter() *Adapter {
	return h.adapter
}

// Router returns an http.Handler with the note routes mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsAllowOrigin},
		AllowedMethods:   strings.Split(corsAllowMethods, ","),
		AllowedHeaders:   strings.Split(corsAllowHeaders, ","),
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(IdentityMiddleware(h.config.Resolver, h.adapter))

		r.Get("/notes", h.adapter.Wrap(h.List))
		r.Post("/notes", h.adapter.Wrap(h.Create))
		r.Get("/notes/{id}", h.adapter.Wrap(h.Get))
		r.Put("/notes/{id}", h.adapter.Wrap(h.Update))
		r.Delete("/notes/{id}", h.adapter.Wrap(h.Delete))
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		_ = WriteJSON(w, http.StatusNotFound, ErrorBody{Error: "Route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		_ = WriteJSON(w, http.StatusMethodNotAllowed, ErrorBody{Error: "Method not allowed"})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, notes.StatusResult{Status: true})
}

// Create is the business function behind POST /notes.
func (h *Handler) Create(ctx context.Context, req *Request) (any, error) {
	var in notes.CreateNoteRequest
	if err := decodeBody(req.Body, &in); err != nil {
		return nil, notes.Invalid("Invalid request body")
	}
	return h.service.Create(ctx, req.OwnerID, in)
}

// Get is the business function behind GET /notes/{id}.
func (h *Handler) Get(ctx context.Context, req *Request) (any, error) {
	return h.service.Get(ctx, req.OwnerID, req.PathParam("id"))
}

// List is the business function behind GET /notes.
func (h *Handler) List(ctx context.Context, req *Request) (any, error) {
	return h.service.List(ctx, req.OwnerID)
}

// Update is the business function behind PUT /notes/{id}.
func (h *Handler) Update(ctx context.Context, req *Request) (any, error) {
	var in notes.UpdateNoteRequest
	if err := decodeBody(req.Body, &in); err != nil {
		return nil, notes.Invalid("Invalid request body")
	}
	return h.service.Update(ctx, req.OwnerID, req.PathParam("id"), in)
}

// Delete is the business function behind DELETE /notes/{id}.
func (h *Handler) Delete(ctx context.Context, req *Request) (any, error) {
	return h.service.Delete(ctx, req.OwnerID, req.PathParam("id"))
}
