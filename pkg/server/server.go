// Package server exposes the HTTP API: voice management, speech
// generation tasks, the audio library, and LLM script tooling.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lyrebird-studio/lyrebird/pkg/audio/pcm"
	"github.com/lyrebird-studio/lyrebird/pkg/library"
	"github.com/lyrebird-studio/lyrebird/pkg/llm"
	"github.com/lyrebird-studio/lyrebird/pkg/script"
	"github.com/lyrebird-studio/lyrebird/pkg/synth"
	"github.com/lyrebird-studio/lyrebird/pkg/task"
	"github.com/lyrebird-studio/lyrebird/pkg/voice"
)

// Generator runs the synthesis pipeline for one request.
type Generator interface {
	Generate(ctx context.Context, req *synth.GenerateRequest) (pcm.Clip, error)
}

// ScriptWriter generates and polishes dialogue scripts. *llm.Writer
// satisfies this interface.
type ScriptWriter interface {
	GenerateScript(ctx context.Context, r *llm.ScriptRequest) ([]script.DialogueLine, error)
	OptimizeEmotions(ctx context.Context, lines []script.DialogueLine) ([]script.DialogueLine, error)
}

// TextExtractor pulls plain text out of an uploaded document. Files it
// cannot handle fall back to a raw UTF-8 read.
type TextExtractor interface {
	Extract(filename string, data []byte) (string, error)
}

type Server struct {
	voices    *voice.Registry
	generator Generator
	library   *library.Library
	tasks     task.Store
	runner    *task.Runner
	writer    ScriptWriter
	extractor TextExtractor
}

type Options struct {
	Voices    *voice.Registry
	Generator Generator
	Library   *library.Library
	Tasks     task.Store
	Runner    *task.Runner
	Writer    ScriptWriter
	// Extractor may be nil; document uploads then decode as plain text.
	Extractor TextExtractor
}

func New(opts Options) *Server {
	return &Server{
		voices:    opts.Voices,
		generator: opts.Generator,
		library:   opts.Library,
		tasks:     opts.Tasks,
		runner:    opts.Runner,
		writer:    opts.Writer,
		extractor: opts.Extractor,
	}
}

// Handler builds the API route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/voices", s.handleListVoices)
	mux.HandleFunc("DELETE /api/voices/{id}", s.handleDeleteVoice)
	mux.HandleFunc("POST /api/voices/upload", s.handleUploadVoice)
	mux.HandleFunc("POST /api/voices/record", s.handleRecordVoice)
	mux.HandleFunc("GET /api/voices/{id}/sample", s.handleVoiceSample)

	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/generate/file", s.handleGenerateFromFile)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleTaskStatus)

	mux.HandleFunc("POST /api/generate/script", s.handleGenerateScript)
	mux.HandleFunc("POST /api/optimize-script", s.handleOptimizeScript)

	mux.HandleFunc("GET /api/audio/library", s.handleAudioLibrary)
	mux.HandleFunc("GET /api/audio/{filename}", s.handleGetAudio)
	mux.HandleFunc("DELETE /api/audio/{filename}", s.handleDeleteAudio)

	mux.HandleFunc("GET /api/health", s.handleHealth)

	return logRequests(mux)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		slog.Debug("http request", "method", r.Method, "path", r.URL.Path)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "err", err)
	}
}

// writeError reports an API error as {"detail": "..."} JSON.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}
