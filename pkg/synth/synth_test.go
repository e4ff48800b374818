package synth_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lyrebird-studio/lyrebird/pkg/audio/pcm"
	"github.com/lyrebird-studio/lyrebird/pkg/engine"
	"github.com/lyrebird-studio/lyrebird/pkg/script"
	"github.com/lyrebird-studio/lyrebird/pkg/synth"
	"github.com/lyrebird-studio/lyrebird/pkg/voice"
)

// fakeEngine records every request and answers with a clip whose bytes
// encode the request order, so assembly order is observable.
type fakeEngine struct {
	caps    engine.Capabilities
	reqs    []*engine.Request
	fail    func(*engine.Request) error
	presets []engine.Preset
}

func (f *fakeEngine) Capabilities() engine.Capabilities { return f.caps }
func (f *fakeEngine) OutputFormat() pcm.Format          { return pcm.L16Mono24K }

func (f *fakeEngine) ListPresets(context.Context) ([]engine.Preset, error) {
	return f.presets, nil
}

func (f *fakeEngine) Synthesize(_ context.Context, req *engine.Request) ([]pcm.Clip, error) {
	f.reqs = append(f.reqs, req)
	if f.fail != nil {
		if err := f.fail(req); err != nil {
			return nil, err
		}
	}
	n := byte(len(f.reqs))
	return []pcm.Clip{{Data: []byte{n, n}, Format: pcm.L16Mono24K}}, nil
}

func cloneProfile(id string) voice.Profile {
	return voice.Profile{ID: id, Name: id, Kind: voice.KindRecorded, RefAudioPath: "/voices/" + id + ".wav"}
}

func presetProfile(id string) voice.Profile {
	return voice.Profile{ID: id, Name: id, Kind: voice.KindPreset}
}

func TestRouterSelectsInstructClone(t *testing.T) {
	fe := &fakeEngine{caps: engine.Capabilities{InstructClone: true}}
	r := synth.NewRouter(fe)

	seg := script.Segment{Speaker: 0, Emotion: "happy", Text: "hello"}
	if _, err := r.Synthesize(context.Background(), seg, cloneProfile("v1"), 1.2); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	req := fe.reqs[0]
	if req.Mode != engine.ModeInstructClone {
		t.Fatalf("mode = %s", req.Mode)
	}
	if req.RefAudioPath != "/voices/v1.wav" {
		t.Fatalf("ref audio = %q", req.RefAudioPath)
	}
	if !strings.HasSuffix(req.Instruction, "<|endofprompt|>") {
		t.Fatalf("instruction missing prompt framing: %q", req.Instruction)
	}
	if req.Speed != 1.2 {
		t.Fatalf("speed = %v", req.Speed)
	}
}

func TestRouterPresetBranches(t *testing.T) {
	seg := script.Segment{Emotion: script.EmotionNeutral, Text: "hi"}

	fe := &fakeEngine{caps: engine.Capabilities{InstructPreset: true}}
	r := synth.NewRouter(fe)
	if _, err := r.Synthesize(context.Background(), seg, presetProfile("anchor"), 1); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if fe.reqs[0].Mode != engine.ModeInstructPreset || fe.reqs[0].SpeakerID != "anchor" {
		t.Fatalf("req = %+v", fe.reqs[0])
	}

	fe = &fakeEngine{}
	r = synth.NewRouter(fe)
	if _, err := r.Synthesize(context.Background(), seg, presetProfile("anchor"), 1); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if fe.reqs[0].Mode != engine.ModePreset {
		t.Fatalf("mode = %s", fe.reqs[0].Mode)
	}
	if fe.reqs[0].Instruction != "" {
		t.Fatalf("plain preset carried an instruction: %q", fe.reqs[0].Instruction)
	}
}

func TestRouterCrossLingualFallback(t *testing.T) {
	fe := &fakeEngine{caps: engine.Capabilities{CrossLingual: true}}
	r := synth.NewRouter(fe)
	seg := script.Segment{Emotion: "sad", Text: "hi"}
	if _, err := r.Synthesize(context.Background(), seg, cloneProfile("v1"), 1); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if fe.reqs[0].Mode != engine.ModeCrossLingual {
		t.Fatalf("mode = %s", fe.reqs[0].Mode)
	}
}

func TestAssembleEmpty(t *testing.T) {
	_, err := synth.Assemble(pcm.L16Mono24K, nil)
	if !errors.Is(err, synth.ErrEmptySynthesis) {
		t.Fatalf("err = %v", err)
	}
	_, err = synth.Assemble(pcm.L16Mono24K, [][]pcm.Clip{{}, {}})
	if !errors.Is(err, synth.ErrEmptySynthesis) {
		t.Fatalf("err = %v", err)
	}
}

func newRegistry(t *testing.T, profiles ...voice.Profile) *voice.Registry {
	t.Helper()
	r := voice.NewRegistry(t.TempDir(), nil)
	for _, p := range profiles {
		r.Put(p)
	}
	return r
}

func TestPipelineMultiSpeakerOrder(t *testing.T) {
	fe := &fakeEngine{caps: engine.Capabilities{InstructClone: true}}
	reg := newRegistry(t, cloneProfile("v0"), cloneProfile("v1"))
	p := synth.NewPipeline(synth.NewRouter(fe), reg)

	clip, err := p.Generate(context.Background(), &synth.GenerateRequest{
		Text:             "Speaker 0: Hello <happy>great day</happy>\nSpeaker 1: Indeed.",
		VoiceID:          "v0",
		SecondaryVoiceID: "v1",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(fe.reqs) != 3 {
		t.Fatalf("engine invoked %d times, want 3", len(fe.reqs))
	}
	if fe.reqs[0].Text != "Hello" || fe.reqs[1].Text != "great day" || fe.reqs[2].Text != "Indeed." {
		t.Fatalf("texts out of order: %q %q %q", fe.reqs[0].Text, fe.reqs[1].Text, fe.reqs[2].Text)
	}
	if fe.reqs[0].RefAudioPath != "/voices/v0.wav" || fe.reqs[2].RefAudioPath != "/voices/v1.wav" {
		t.Fatal("speaker to voice mapping wrong")
	}
	// Clip order mirrors invocation order.
	want := []byte{1, 1, 2, 2, 3, 3}
	if string(clip.Data) != string(want) {
		t.Fatalf("assembled bytes = %v, want %v", clip.Data, want)
	}
}

func TestPipelineVoiceNotFound(t *testing.T) {
	fe := &fakeEngine{}
	p := synth.NewPipeline(synth.NewRouter(fe), newRegistry(t))

	_, err := p.Generate(context.Background(), &synth.GenerateRequest{Text: "hi", VoiceID: "missing"})
	if !errors.Is(err, synth.ErrVoiceNotFound) {
		t.Fatalf("err = %v", err)
	}
	if len(fe.reqs) != 0 {
		t.Fatal("engine called despite missing voice")
	}
}

func TestPipelineSkipsFailedSegment(t *testing.T) {
	fe := &fakeEngine{
		caps: engine.Capabilities{InstructClone: true},
		fail: func(req *engine.Request) error {
			if strings.Contains(req.Text, "bad") {
				return errors.New("engine rejected input")
			}
			return nil
		},
	}
	reg := newRegistry(t, cloneProfile("v0"))
	p := synth.NewPipeline(synth.NewRouter(fe), reg)

	clip, err := p.Generate(context.Background(), &synth.GenerateRequest{
		Text:    "Speaker 0: fine one\nSpeaker 0: bad one\nSpeaker 0: fine two",
		VoiceID: "v0",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// Attempt 2 failed; clips 1 and 3 survive.
	want := []byte{1, 1, 3, 3}
	if string(clip.Data) != string(want) {
		t.Fatalf("assembled bytes = %v, want %v", clip.Data, want)
	}
}

func TestPipelineAllSegmentsFail(t *testing.T) {
	fe := &fakeEngine{
		caps: engine.Capabilities{InstructClone: true},
		fail: func(*engine.Request) error { return errors.New("down") },
	}
	reg := newRegistry(t, cloneProfile("v0"))
	p := synth.NewPipeline(synth.NewRouter(fe), reg)

	_, err := p.Generate(context.Background(), &synth.GenerateRequest{Text: "hi", VoiceID: "v0"})
	if !errors.Is(err, synth.ErrEmptySynthesis) {
		t.Fatalf("err = %v", err)
	}
}
