package server

import (
	"errors"
	"net/http"
	"strings"

	"formkeeper/internal/app"
	"formkeeper/pkg/domain"
)

type insertRecordRequest struct {
	Text      string            `json:"text"`
	ImageURL  string            `json:"imageUrl"`
	ImagePath string            `json:"imagePath"`
	ImageMeta *domain.ImageMeta `json:"imageMeta"`
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		s.handleListRecords(w, user)
	case http.MethodPost:
		s.handleInsertRecord(w, r, user)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListRecords(w http.ResponseWriter, user domain.User) {
	items, err := s.app.ListRecords(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

func (s *Server) handleInsertRecord(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req insertRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	rec, err := s.app.InsertRecord(user, domain.Record{
		Text:      req.Text,
		ImageURL:  req.ImageURL,
		ImagePath: req.ImagePath,
		ImageMeta: req.ImageMeta,
	})
	if err != nil {
		if errors.Is(err, app.ErrTextRequired) || errors.Is(err, app.ErrImagePairMismatch) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// /records/{id}
func (s *Server) handleRecordByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id := strings.TrimPrefix(r.URL.Path, "/records/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		rec, err := s.app.GetRecord(user, id)
		if err != nil {
			writeRecordError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	case http.MethodDelete:
		if err := s.app.DeleteRecord(user, id); err != nil {
			writeRecordError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func writeRecordError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
