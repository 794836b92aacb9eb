package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"formkeeper/internal/app"
	"formkeeper/pkg/domain"
)

// POST /storage/objects?name=imagen-123.png with the raw bytes as body.
func (s *Server) handleUploadObject(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, s.app.MaxUploadBytes()+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload body")
		return
	}
	ref, err := s.app.UploadImage(r.Context(), data, r.URL.Query().Get("name"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrEmptyUpload):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, app.ErrUploadTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, ref)
}

// GET redirects to a pre-signed object URL; DELETE removes the object.
func (s *Server) handleObjectByKey(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/storage/objects/")
	if key == "" || strings.Contains(key, "..") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		url, err := s.app.ObjectURL(r.Context(), key)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to resolve object URL")
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
	case http.MethodDelete:
		if _, ok := s.authorize(r); !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err := s.app.DeleteObject(r.Context(), key); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to delete object")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}
