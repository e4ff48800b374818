package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lyrebird-studio/lyrebird/pkg/llm"
	"github.com/lyrebird-studio/lyrebird/pkg/script"
)

func (s *Server) handleGenerateScript(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxAudioSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	context := r.FormValue("text")
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Error processing file: "+err.Error())
			return
		}
		text := string(data)
		if s.extractor != nil {
			if extracted, err := s.extractor.Extract(header.Filename, data); err == nil {
				text = extracted
			} else {
				slog.Warn("document extraction failed, using raw text", "filename", header.Filename, "err", err)
			}
		}
		context += "\n\n[Attached File Content]:\n" + text
	}
	if context == "" {
		writeError(w, http.StatusBadRequest, "Either text or file must be provided")
		return
	}

	rounds, _ := strconv.Atoi(r.FormValue("n_rounds"))
	lines, err := s.writer.GenerateScript(r.Context(), &llm.ScriptRequest{
		Context:   context,
		HostName:  r.FormValue("host_name"),
		GuestName: r.FormValue("guest_name"),
		Style:     r.FormValue("style"),
		Language:  r.FormValue("language"),
		Rounds:    rounds,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, llm.ErrNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "Script generation failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"script":  lines,
	})
}

type optimizeRequest struct {
	Script []script.DialogueLine `json:"script"`
}

func (s *Server) handleOptimizeScript(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	lines, err := s.writer.OptimizeEmotions(r.Context(), req.Script)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Script optimization failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"script":  lines,
	})
}
