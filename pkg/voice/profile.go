// Package voice maintains the registry of voice profiles a generation
// request can resolve against: user recordings and uploads on the local
// filesystem, plus the preset voices reported live by the engine.
package voice

import "time"

// Kind classifies where a voice profile comes from.
type Kind string

const (
	// KindRecorded is a voice sample recorded in the browser.
	KindRecorded Kind = "recorded"
	// KindUploaded is a user-uploaded audio file.
	KindUploaded Kind = "uploaded"
	// KindPreset is a built-in voice of the engine model.
	KindPreset Kind = "preset"
)

// Profile is a named reference to either a reference-audio sample (for
// cloning) or a preset identity. Profiles are immutable once created,
// except for deletion.
type Profile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Kind         Kind      `json:"type"`
	RefAudioPath string    `json:"file_path"` // empty for presets
	CreatedAt    time.Time `json:"created_at"`
	Description  string    `json:"description,omitempty"`
}

// HasReferenceAudio reports whether the profile carries a reference-audio
// sample usable for cloning.
func (p Profile) HasReferenceAudio() bool {
	return p.RefAudioPath != ""
}
