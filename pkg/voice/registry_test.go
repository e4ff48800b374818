package voice_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lyrebird-studio/lyrebird/pkg/engine"
	"github.com/lyrebird-studio/lyrebird/pkg/voice"
)

type fakePresets struct {
	presets []engine.Preset
	err     error
}

func (f *fakePresets) ListPresets(context.Context) ([]engine.Preset, error) {
	return f.presets, f.err
}

func writeSample(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func TestScanLoadsLocalVoices(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "alice_record_1a2b.wav")
	writeSample(t, dir, "bob_3c4d.mp3")
	writeSample(t, dir, "notes.txt") // ignored

	r := voice.NewRegistry(dir, nil)
	if err := r.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	p, err := r.Get(context.Background(), "alice_record_1a2b")
	if err != nil {
		t.Fatalf("Get recorded: %v", err)
	}
	if p.Kind != voice.KindRecorded {
		t.Fatalf("kind = %v, want recorded", p.Kind)
	}
	if !p.HasReferenceAudio() {
		t.Fatal("expected reference audio path")
	}

	p, err = r.Get(context.Background(), "bob_3c4d")
	if err != nil {
		t.Fatalf("Get uploaded: %v", err)
	}
	if p.Kind != voice.KindUploaded {
		t.Fatalf("kind = %v, want uploaded", p.Kind)
	}

	if _, err := r.Get(context.Background(), "notes"); !errors.Is(err, voice.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-audio file, got %v", err)
	}
}

func TestGetFallsBackToPresets(t *testing.T) {
	r := voice.NewRegistry(t.TempDir(), &fakePresets{presets: []engine.Preset{
		{ID: "preset-anna", Name: "Anna"},
	}})

	p, err := r.Get(context.Background(), "preset-anna")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Kind != voice.KindPreset || p.Name != "Anna" {
		t.Fatalf("profile = %+v", p)
	}
	if p.HasReferenceAudio() {
		t.Fatal("preset must not have reference audio")
	}
}

func TestListMergesAndFilters(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, "sample.wav")

	r := voice.NewRegistry(dir, &fakePresets{presets: []engine.Preset{
		{ID: "preset-anna", Name: "Anna"},
		{ID: "preset-bob", Name: "Bob"},
	}})
	r.Add("Crispin", path, voice.KindUploaded)

	all, err := r.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d profiles, want 3: %+v", len(all), all)
	}
	// Presets come first.
	if all[0].Kind != voice.KindPreset {
		t.Fatalf("first profile kind = %v, want preset", all[0].Kind)
	}

	hits, err := r.List(context.Background(), "cris")
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if len(hits) != 1 || hits[0].Name != "Crispin" {
		t.Fatalf("search result = %+v", hits)
	}
}

func TestDeleteRemovesProfileAndFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, "gone.wav")

	r := voice.NewRegistry(dir, nil)
	p := r.Add("Gone", path, voice.KindRecorded)

	if err := r.Delete(p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("sample file should be removed")
	}
	if _, err := r.Get(context.Background(), p.ID); !errors.Is(err, voice.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := r.Delete(p.ID); !errors.Is(err, voice.ErrNotFound) {
		t.Fatalf("double delete should be ErrNotFound, got %v", err)
	}
}
