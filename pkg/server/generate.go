package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/lyrebird-studio/lyrebird/pkg/library"
	"github.com/lyrebird-studio/lyrebird/pkg/synth"
	"github.com/lyrebird-studio/lyrebird/pkg/task"
)

// generationRequest is the JSON body of POST /api/generate.
type generationRequest struct {
	Text           string  `json:"text"`
	VoiceID        string  `json:"voice_id"`
	NumSpeakers    int     `json:"num_speakers"`
	GuestVoiceID   string  `json:"guest_voice_id"`
	CustomFilename string  `json:"custom_filename"`
	Speed          float64 `json:"speed"`
	Pitch          float64 `json:"pitch"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	s.startGeneration(w, r, &req)
}

func (s *Server) handleGenerateFromFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxAudioSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	text, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read file: "+err.Error())
		return
	}
	s.startGeneration(w, r, &generationRequest{
		Text:    string(text),
		VoiceID: r.FormValue("voice_id"),
	})
}

// startGeneration validates the request, queues the synthesis work and
// answers immediately with the new task.
func (s *Server) startGeneration(w http.ResponseWriter, r *http.Request, req *generationRequest) {
	if req.Text == "" || req.VoiceID == "" {
		writeError(w, http.StatusBadRequest, "text and voice_id are required")
		return
	}

	// Resolve the primary voice now so the artifact can carry its name.
	profile, err := s.voices.Get(r.Context(), req.VoiceID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Voice not found: "+req.VoiceID)
		return
	}

	genReq := &synth.GenerateRequest{
		Text:             req.Text,
		VoiceID:          req.VoiceID,
		SecondaryVoiceID: req.GuestVoiceID,
		Speed:            req.Speed,
		Pitch:            req.Pitch,
	}
	voiceName := profile.Name
	custom := req.CustomFilename
	text := req.Text

	t, err := s.runner.Submit(r.Context(), func(ctx context.Context) (*task.Result, error) {
		clip, err := s.generator.Generate(ctx, genReq)
		if err != nil {
			return nil, err
		}
		filename := library.Filename(voiceName, custom, time.Now())
		entry, err := s.library.Save(ctx, filename, voiceName, text, clip)
		if err != nil {
			return nil, err
		}
		return &task.Result{
			AudioURL: "/api/audio/" + entry.Filename,
			Filename: entry.Filename,
			Duration: entry.Duration,
			Message:  "Audio generated successfully",
		}, nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start generation: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	t, err := s.tasks.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, t)
}
