package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lyrebird-studio/lyrebird/pkg/engine"
)

// ErrNotFound is returned when a voice id resolves to nothing.
var ErrNotFound = errors.New("voice: not found")

// SupportedExtensions are the audio containers accepted as voice samples.
var SupportedExtensions = []string{".wav", ".mp3", ".m4a", ".flac", ".ogg"}

// PresetSource lists the engine's built-in voices. The engine.Client
// satisfies this interface.
type PresetSource interface {
	ListPresets(ctx context.Context) ([]engine.Preset, error)
}

// Registry owns the local voice profiles and merges in engine presets on
// lookup. Local profiles live in a sync.Map so mutation is atomic per id
// and lookups of different ids never block each other.
type Registry struct {
	dir     string
	presets PresetSource

	local sync.Map // id -> Profile
}

// NewRegistry creates a registry rooted at dir. Presets may be nil when no
// engine is attached (registry then only serves local voices).
func NewRegistry(dir string, presets PresetSource) *Registry {
	return &Registry{dir: dir, presets: presets}
}

// Dir returns the directory holding local voice samples.
func (r *Registry) Dir() string {
	return r.dir
}

// Scan loads local voice profiles from the registry directory. The file
// name stem is the profile id, so selections survive restarts. Called once
// at startup.
func (r *Registry) Scan() error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("voice: create dir: %w", err)
	}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("voice: scan dir: %w", err)
	}
	for _, ent := range entries {
		if ent.IsDir() || !supportedExt(ent.Name()) {
			continue
		}
		stem := strings.TrimSuffix(ent.Name(), filepath.Ext(ent.Name()))
		kind := KindUploaded
		if strings.Contains(ent.Name(), "record") {
			kind = KindRecorded
		}
		created := time.Now()
		if info, err := ent.Info(); err == nil {
			created = info.ModTime()
		}
		r.local.Store(stem, Profile{
			ID:           stem,
			Name:         stem,
			Kind:         kind,
			RefAudioPath: filepath.Join(r.dir, ent.Name()),
			CreatedAt:    created,
		})
		slog.Info("loaded local voice", "id", stem, "kind", kind)
	}
	return nil
}

// Add registers a new local profile for the given audio file and returns
// it. The profile id is freshly generated.
func (r *Registry) Add(name, audioPath string, kind Kind) Profile {
	p := Profile{
		ID:           uuid.NewString(),
		Name:         name,
		Kind:         kind,
		RefAudioPath: audioPath,
		CreatedAt:    time.Now(),
	}
	r.local.Store(p.ID, p)
	slog.Info("added voice profile", "id", p.ID, "name", name, "kind", kind)
	return p
}

// Put stores a profile under its existing id, replacing any previous
// entry.
func (r *Registry) Put(p Profile) {
	r.local.Store(p.ID, p)
}

// Get resolves a voice id against local profiles first, then engine
// presets. Returns ErrNotFound when neither matches.
func (r *Registry) Get(ctx context.Context, id string) (Profile, error) {
	if v, ok := r.local.Load(id); ok {
		return v.(Profile), nil
	}
	if r.presets != nil {
		presets, err := r.presets.ListPresets(ctx)
		if err != nil {
			return Profile{}, fmt.Errorf("voice: list presets: %w", err)
		}
		for _, p := range presets {
			if p.ID == id {
				return presetProfile(p), nil
			}
		}
	}
	return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns all profiles, presets first then local voices, optionally
// filtered by a case-insensitive name substring.
func (r *Registry) List(ctx context.Context, search string) ([]Profile, error) {
	var out []Profile
	if r.presets != nil {
		presets, err := r.presets.ListPresets(ctx)
		if err != nil {
			return nil, fmt.Errorf("voice: list presets: %w", err)
		}
		for _, p := range presets {
			out = append(out, presetProfile(p))
		}
	}

	var local []Profile
	r.local.Range(func(_, v any) bool {
		local = append(local, v.(Profile))
		return true
	})
	sort.Slice(local, func(i, j int) bool { return local[i].ID < local[j].ID })
	out = append(out, local...)

	if search == "" {
		return out, nil
	}
	needle := strings.ToLower(search)
	filtered := out[:0]
	for _, p := range out {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Delete removes a local profile and its sample file. Presets cannot be
// deleted. Returns ErrNotFound for unknown ids.
func (r *Registry) Delete(id string) error {
	v, ok := r.local.LoadAndDelete(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	p := v.(Profile)
	if p.RefAudioPath != "" {
		if err := os.Remove(p.RefAudioPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("delete voice sample file", "path", p.RefAudioPath, "error", err)
		}
	}
	slog.Info("deleted voice profile", "id", id, "name", p.Name)
	return nil
}

func presetProfile(p engine.Preset) Profile {
	name := p.Name
	if name == "" {
		name = p.ID
	}
	return Profile{ID: p.ID, Name: name, Kind: KindPreset}
}

func supportedExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
