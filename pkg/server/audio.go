package server

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lyrebird-studio/lyrebird/pkg/library"
)

func (s *Server) handleAudioLibrary(w http.ResponseWriter, r *http.Request) {
	entries, err := s.library.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     false,
			"audio_files": []library.Entry{},
			"total":       0,
			"message":     err.Error(),
		})
		return
	}
	if entries == nil {
		entries = []library.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"audio_files": entries,
		"total":       len(entries),
	})
}

func (s *Server) handleGetAudio(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	rc, err := s.library.Open(r.Context(), filename)
	if err != nil {
		writeError(w, http.StatusNotFound, "Audio file not found")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "audio/wav")
	// RFC 5987 encoding keeps non-ASCII voice names intact.
	w.Header().Set("Content-Disposition", "attachment; filename*=utf-8''"+url.PathEscape(filename))
	if _, err := io.Copy(w, rc); err != nil {
		// Client likely disconnected mid-download.
		return
	}
}

func (s *Server) handleDeleteAudio(w http.ResponseWriter, r *http.Request) {
	if err := s.library.Delete(r.Context(), r.PathValue("filename")); err != nil {
		if errors.Is(err, library.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Audio file not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete audio: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Audio deleted successfully",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
