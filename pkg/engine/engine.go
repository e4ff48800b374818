// Package engine defines the synthesis engine capability consumed by the
// generation pipeline, plus an HTTP client for the lyrebird-engine sidecar
// that hosts the neural TTS model.
//
// The engine's capability surface is negotiated once, when the client is
// dialed; callers branch on the Capabilities descriptor instead of probing
// per call.
package engine

import (
	"context"

	"github.com/lyrebird-studio/lyrebird/pkg/audio/pcm"
)

// Mode selects the synthesis entry point used for one request.
type Mode string

const (
	// ModeInstructClone is instruction-guided cloning from reference audio.
	ModeInstructClone Mode = "instruct_clone"
	// ModeInstructPreset is instruction-guided synthesis with a preset voice.
	ModeInstructPreset Mode = "instruct_preset"
	// ModePreset is plain synthesis with a preset voice.
	ModePreset Mode = "preset"
	// ModeCrossLingual is plain cloning from reference audio.
	ModeCrossLingual Mode = "cross_lingual"
)

// Capabilities describes which synthesis modes an engine supports. The
// plain preset mode is always available.
type Capabilities struct {
	InstructClone  bool `json:"instruct_clone"`
	InstructPreset bool `json:"instruct_preset"`
	CrossLingual   bool `json:"cross_lingual"`
}

// Preset identifies a built-in voice shipped with the engine model.
type Preset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Request carries the parameters for one synthesis call. Exactly one of
// RefAudioPath and SpeakerID is consulted, depending on Mode.
type Request struct {
	Mode         Mode
	Text         string
	Instruction  string  // delivery hint; instruct modes only
	RefAudioPath string  // reference audio file; clone modes only
	SpeakerID    string  // preset voice id; preset modes only
	Speed        float64 // 1.0 is natural pace
}

// Engine is the synthesis capability. Implementations report a fixed
// output format; every clip they return is in that format.
type Engine interface {
	// Capabilities returns the descriptor negotiated at initialization.
	Capabilities() Capabilities

	// OutputFormat returns the fixed PCM format of synthesized audio.
	OutputFormat() pcm.Format

	// ListPresets returns the preset voices available in the loaded model.
	ListPresets(ctx context.Context) ([]Preset, error)

	// Synthesize runs one synthesis call and returns the ordered raw audio
	// clips it produced.
	Synthesize(ctx context.Context, req *Request) ([]pcm.Clip, error)
}
