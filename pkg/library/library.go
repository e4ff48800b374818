// Package library stores finished audio artifacts as WAV files with a
// JSON metadata sidecar, on top of a storage.FileStore.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/lyrebird-studio/lyrebird/pkg/audio/codec/wav"
	"github.com/lyrebird-studio/lyrebird/pkg/audio/pcm"
	"github.com/lyrebird-studio/lyrebird/pkg/storage"
)

var ErrNotFound = errors.New("library: artifact not found")

const previewLen = 100

// Entry is the metadata sidecar stored next to each WAV artifact.
type Entry struct {
	Filename    string    `json:"filename"`
	VoiceName   string    `json:"voice_name"`
	Duration    float64   `json:"duration"`
	TextPreview string    `json:"text_preview"`
	CreatedAt   time.Time `json:"created_at"`
	Size        int64     `json:"size"`
}

// Library names, persists and lists generated audio artifacts.
type Library struct {
	store storage.FileStore
}

func New(store storage.FileStore) *Library {
	return &Library{store: store}
}

// Filename produces the artifact name for a generation: the custom name
// if given (with .wav appended as needed), otherwise voice name plus a
// second-resolution timestamp.
func Filename(voiceName, custom string, now time.Time) string {
	if custom != "" {
		if !strings.HasSuffix(custom, ".wav") {
			custom += ".wav"
		}
		return sanitize(custom)
	}
	return sanitize(fmt.Sprintf("%s_%s.wav", voiceName, now.Format("20060102_150405")))
}

// sanitize strips path separators so a name cannot escape the library.
func sanitize(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	return path.Base(name)
}

// Save encodes the clip as WAV under filename and writes its metadata
// sidecar. The text preview is truncated by runes, not bytes.
func (l *Library) Save(ctx context.Context, filename, voiceName, text string, clip pcm.Clip) (*Entry, error) {
	w, err := l.store.Write(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("library: write %s: %w", filename, err)
	}
	if err := wav.Encode(w, clip); err != nil {
		w.Close()
		return nil, fmt.Errorf("library: encode %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("library: write %s: %w", filename, err)
	}

	preview := text
	if r := []rune(preview); len(r) > previewLen {
		preview = string(r[:previewLen]) + "..."
	}
	e := &Entry{
		Filename:    filename,
		VoiceName:   voiceName,
		Duration:    clip.Duration().Seconds(),
		TextPreview: preview,
		CreatedAt:   time.Now().UTC(),
		Size:        wav.Size(clip),
	}
	if err := l.writeMeta(ctx, e); err != nil {
		return nil, err
	}
	slog.Info("saved audio artifact", "filename", filename, "voice", voiceName, "duration", e.Duration)
	return e, nil
}

func metaPath(filename string) string {
	return strings.TrimSuffix(filename, ".wav") + ".json"
}

func (l *Library) writeMeta(ctx context.Context, e *Entry) error {
	w, err := l.store.Write(ctx, metaPath(e.Filename))
	if err != nil {
		return fmt.Errorf("library: write metadata: %w", err)
	}
	if err := json.NewEncoder(w).Encode(e); err != nil {
		w.Close()
		return fmt.Errorf("library: encode metadata: %w", err)
	}
	return w.Close()
}

// Open returns a reader over the named WAV artifact.
func (l *Library) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	filename = sanitize(filename)
	r, err := l.store.Read(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	return r, nil
}

// List returns the metadata of all artifacts, newest first, optionally
// filtered by a case-insensitive substring over filename and preview.
func (l *Library) List(ctx context.Context, search string) ([]Entry, error) {
	paths, err := l.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("library: list: %w", err)
	}
	needle := strings.ToLower(search)

	var out []Entry
	for _, p := range paths {
		if !strings.HasSuffix(p, ".json") {
			continue
		}
		e, err := l.readMeta(ctx, p)
		if err != nil {
			slog.Warn("skipping unreadable artifact metadata", "path", p, "err", err)
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(e.Filename), needle) &&
			!strings.Contains(strings.ToLower(e.TextPreview), needle) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (l *Library) readMeta(ctx context.Context, path string) (Entry, error) {
	r, err := l.store.Read(ctx, path)
	if err != nil {
		return Entry{}, err
	}
	defer r.Close()
	var e Entry
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Delete removes an artifact and its metadata sidecar. Deleting an
// absent artifact is an error so API callers can report 404.
func (l *Library) Delete(ctx context.Context, filename string) error {
	filename = sanitize(filename)
	ok, err := l.store.Exists(ctx, filename)
	if err != nil {
		return fmt.Errorf("library: delete %s: %w", filename, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	if err := l.store.Delete(ctx, filename); err != nil {
		return fmt.Errorf("library: delete %s: %w", filename, err)
	}
	if err := l.store.Delete(ctx, metaPath(filename)); err != nil {
		slog.Warn("delete artifact metadata", "filename", filename, "err", err)
	}
	return nil
}
