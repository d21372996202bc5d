// Package httpapi exposes the current surface over HTTP so a browser can
// download the clipped image while an MCP client drives the gestures.
//
// Routes:
//
//	GET  /surface.png  current surface as PNG (attachment, snapclip.png)
//	GET  /state        engine status as JSON
//	POST /reset        restore the frozen frame, returns the new status
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ironsheep/snapclip-mcp/internal/engine"
)

// DownloadName is the attachment file name of /surface.png.
const DownloadName = "snapclip.png"

// Controller is the part of the server the side door needs.
type Controller interface {
	Status() engine.Status
	ExportPNG() ([]byte, error)
	Reset() engine.Status
}

// NewRouter builds the HTTP routes over c. Request logs go to logger, which
// must not write to stdout while MCP runs there; nil uses log.Default().
func NewRouter(c Controller, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}))
	r.Use(middleware.Recoverer)

	h := &handler{c: c}
	r.Get("/surface.png", h.surface)
	r.Get("/state", h.state)
	r.Post("/reset", h.reset)
	return r
}

type handler struct {
	c Controller
}

func (h *handler) surface(w http.ResponseWriter, r *http.Request) {
	data, err := h.c.ExportPNG()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrNoSurface) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	if r.URL.Query().Get("inline") == "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", DownloadName))
	}
	w.Write(data)
}

func (h *handler) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.c.Status())
}

func (h *handler) reset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.c.Reset())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
