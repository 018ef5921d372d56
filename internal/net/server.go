package net

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"SceneBoard/internal/state"
	"SceneBoard/internal/store"
)

// maxDocument bounds request bodies; embedded images make documents large.
const maxDocument = 32 << 20

// NewServer routes the document service:
//
//	POST /api/save      body: document  -> {"success":true,"id":"..."}
//	GET  /api/load/{id}                 -> document
//	GET  /ws                            -> share hub (when hub is not nil)
func NewServer(st store.Store, hub *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/save", saveHandler(st))
	mux.HandleFunc("GET /api/load/{id}", loadHandler(st))
	if hub != nil {
		mux.Handle("GET /ws", hub)
	}
	return mux
}

type saveResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

func saveHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.WithFields(log.Fields{"component": "server", "route": "save", "remote": r.RemoteAddr})
		data, status, err := readBody(w, r)
		if err != nil {
			writeJSON(w, status, saveResponse{Error: err.Error()})
			return
		}
		doc, err := state.Unmarshal(data)
		if err == nil {
			_, _, err = state.Decode(doc)
		}
		if err != nil {
			logger.WithError(err).Warn("rejected document")
			writeJSON(w, http.StatusBadRequest, saveResponse{Error: err.Error()})
			return
		}
		id, err := st.Save(r.Context(), doc)
		if err != nil {
			logger.WithError(err).Error("save failed")
			writeJSON(w, http.StatusInternalServerError, saveResponse{Error: "failed to save document"})
			return
		}
		logger.WithField("id", id).Info("document saved")
		writeJSON(w, http.StatusOK, saveResponse{Success: true, ID: id})
	}
}

func loadHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		logger := log.WithFields(log.Fields{"component": "server", "route": "load", "id": id})
		doc, err := st.Load(r.Context(), id)
		switch {
		case errors.Is(err, store.ErrInvalidID):
			writeJSON(w, http.StatusBadRequest, saveResponse{Error: err.Error()})
		case errors.Is(err, store.ErrNotFound):
			writeJSON(w, http.StatusNotFound, saveResponse{Error: "document not found"})
		case err != nil:
			logger.WithError(err).Error("load failed")
			writeJSON(w, http.StatusInternalServerError, saveResponse{Error: "failed to load document"})
		default:
			writeJSON(w, http.StatusOK, doc)
		}
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocument)
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return nil, http.StatusRequestEntityTooLarge, err
	}
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	return data, http.StatusOK, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).WithField("component", "server").Warn("write response")
	}
}
