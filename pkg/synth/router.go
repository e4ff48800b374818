// Package synth turns parsed script segments into finished audio. The
// router picks one synthesis mode per segment from the engine's
// capability descriptor, the assembler joins the resulting clips.
package synth

import (
	"context"
	"fmt"
	"sync"

	"github.com/lyrebird-studio/lyrebird/pkg/audio/pcm"
	"github.com/lyrebird-studio/lyrebird/pkg/engine"
	"github.com/lyrebird-studio/lyrebird/pkg/script"
	"github.com/lyrebird-studio/lyrebird/pkg/voice"
)

// instructionPrompt wraps a delivery instruction in the prompt framing
// the engine expects for instruction-guided modes.
func instructionPrompt(inst string) string {
	return "You are a helpful assistant. " + inst + "<|endofprompt|>"
}

// Router selects the synthesis mode for each segment and invokes the
// engine. The engine is a single shared device, so calls are
// serialized; the router holds no other state across segments.
type Router struct {
	mu     sync.Mutex
	engine engine.Engine
	caps   engine.Capabilities
}

func NewRouter(e engine.Engine) *Router {
	return &Router{engine: e, caps: e.Capabilities()}
}

func (r *Router) OutputFormat() pcm.Format { return r.engine.OutputFormat() }

// Synthesize produces the audio for one segment with the given voice
// profile. Exactly one mode is chosen, in priority order: instruction-
// guided cloning, preset (instruction-guided when supported), plain
// cloning, plain preset.
func (r *Router) Synthesize(ctx context.Context, seg script.Segment, prof voice.Profile, speed float64) ([]pcm.Clip, error) {
	req := &engine.Request{
		Text:  seg.Text,
		Speed: speed,
	}
	inst := script.Instruction(seg.Emotion)

	switch {
	case prof.HasReferenceAudio() && r.caps.InstructClone:
		req.Mode = engine.ModeInstructClone
		req.Instruction = instructionPrompt(inst)
		req.RefAudioPath = prof.RefAudioPath
	case prof.Kind == voice.KindPreset:
		if r.caps.InstructPreset {
			req.Mode = engine.ModeInstructPreset
			req.Instruction = instructionPrompt(inst)
		} else {
			req.Mode = engine.ModePreset
		}
		req.SpeakerID = prof.ID
	case prof.HasReferenceAudio() && r.caps.CrossLingual:
		req.Mode = engine.ModeCrossLingual
		req.RefAudioPath = prof.RefAudioPath
	default:
		req.Mode = engine.ModePreset
		req.SpeakerID = prof.ID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	clips, err := r.engine.Synthesize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s synthesis: %w", req.Mode, err)
	}
	return clips, nil
}
