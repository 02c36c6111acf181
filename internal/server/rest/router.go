package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/staticstore/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every route. Routes under /api/v1 need a bearer token
// signed with secretKey.
func NewRouter(h *Handler, logger logging.Logger, secretKey []byte) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Get("/static-file/{folder}/{name}", h.StaticFile)

	router.Route("/api/v1", func(api chi.Router) {
		api.Use(bearerAuth(secretKey))

		api.Route("/folders", func(folders chi.Router) {
			folders.Post("/", h.CreateFolder)
			folders.Get("/", h.ListFolders)
			folders.Get("/{id}", h.GetFolder)
			folders.Patch("/{id}", h.UpdateFolder)
			folders.Get("/{id}/files", h.ListFolderFiles)
		})

		api.Route("/files", func(files chi.Router) {
			files.Post("/", h.CreateFile)
			files.Get("/{id}", h.GetFile)
			files.Get("/{id}/binary", h.GetFileBinary)
			files.Put("/{id}/binary", h.SetFileBinary)
			files.Post("/{id}/large-upload", h.StartLargeUpload)
		})
	})

	return router
}
