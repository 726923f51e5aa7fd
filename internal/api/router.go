package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/nnote/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Route("/notes/{id}", func(r chi.Router) {
		r.Get("/", h.GetNote)
		r.Delete("/", h.DeleteNote)
		r.Get("/html", h.RenderNote)
		r.Post("/files", h.AttachFile)
		r.Get("/files/{ext}", h.GetFile)
		r.Put("/files/{ext}", h.PutFile)
		r.Post("/attributes", h.TagNote)
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
