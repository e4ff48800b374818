package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lyrebird-studio/lyrebird/pkg/voice"
)

// MaxAudioSize caps uploaded and recorded voice samples.
const MaxAudioSize = 50 << 20

func (s *Server) handleListVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := s.voices.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if voices == nil {
		voices = []voice.Profile{}
	}
	writeJSON(w, http.StatusOK, voices)
}

func (s *Server) handleDeleteVoice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.voices.Delete(id); err != nil {
		if errors.Is(err, voice.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Voice not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete voice: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Voice deleted successfully",
	})
}

func (s *Server) handleUploadVoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxAudioSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	name := r.FormValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !supportedFormat(ext) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Unsupported format. Use: %s", strings.Join(voice.SupportedExtensions, ", ")))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxAudioSize+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read upload: "+err.Error())
		return
	}
	if len(data) > MaxAudioSize {
		writeError(w, http.StatusBadRequest, "File too large. Max 50MB")
		return
	}

	path, err := s.saveVoiceFile(name, ext, data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Upload failed: "+err.Error())
		return
	}
	p := s.voices.Add(name, path, voice.KindUploaded)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"voice":   p,
		"message": "Voice uploaded successfully",
	})
}

// recordRequest is a browser recording shipped as base64 JSON.
type recordRequest struct {
	Name      string `json:"name"`
	AudioData string `json:"audio_data"`
	Format    string `json:"format"`
}

func (s *Server) handleRecordVoice(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" || req.AudioData == "" {
		writeError(w, http.StatusBadRequest, "name and audio_data are required")
		return
	}

	// Tolerate a data URL prefix from the browser recorder.
	payload := req.AudioData
	if _, after, ok := strings.Cut(payload, "base64,"); ok {
		payload = after
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid base64 audio data")
		return
	}
	if len(data) > MaxAudioSize {
		writeError(w, http.StatusBadRequest, "Recording too large. Max 50MB")
		return
	}

	ext := "." + strings.TrimPrefix(strings.ToLower(req.Format), ".")
	if ext == "." {
		ext = ".webm"
	}
	path, err := s.saveVoiceFile(req.Name, ext, data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Recording failed: "+err.Error())
		return
	}
	p := s.voices.Add(req.Name, path, voice.KindRecorded)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"voice":   p,
		"message": "Recording saved successfully",
	})
}

func (s *Server) handleVoiceSample(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, err := s.voices.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Voice not found")
		return
	}
	if p.RefAudioPath == "" {
		writeError(w, http.StatusNotFound, "No sample available for this voice")
		return
	}
	if _, err := os.Stat(p.RefAudioPath); err != nil {
		writeError(w, http.StatusNotFound, "Audio file missing on disk")
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	http.ServeFile(w, r, p.RefAudioPath)
}

// saveVoiceFile writes sample bytes into the registry directory under a
// collision-free name.
func (s *Server) saveVoiceFile(name, ext string, data []byte) (string, error) {
	dir := s.voices.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	base := strings.ReplaceAll(name, string(os.PathSeparator), "_")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s%s", base, uuid.NewString()[:8], ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func supportedFormat(ext string) bool {
	for _, e := range voice.SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
