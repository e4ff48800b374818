package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/api/iterator"

	"github.com/lyrebird-studio/lyrebird/pkg/audio/pcm"
	"github.com/lyrebird-studio/lyrebird/pkg/script"
	"github.com/lyrebird-studio/lyrebird/pkg/voice"
)

var ErrVoiceNotFound = errors.New("voice not found")

// GenerateRequest describes one end-to-end generation.
type GenerateRequest struct {
	Text             string
	VoiceID          string
	SecondaryVoiceID string
	Speed            float64
	// Pitch is accepted for forward compatibility but not applied.
	Pitch float64
}

// Pipeline runs parse, route, synthesize, assemble for one request.
type Pipeline struct {
	router *Router
	voices *voice.Registry
}

func NewPipeline(router *Router, voices *voice.Registry) *Pipeline {
	return &Pipeline{router: router, voices: voices}
}

// Generate synthesizes req.Text into one clip. Voice profiles are
// resolved once up front; an unresolvable voice fails the request
// before any synthesis. A segment that fails to synthesize is logged
// and skipped, it does not abort the rest.
func (p *Pipeline) Generate(ctx context.Context, req *GenerateRequest) (pcm.Clip, error) {
	primary, err := p.voices.Get(ctx, req.VoiceID)
	if err != nil {
		return pcm.Clip{}, fmt.Errorf("%w: %s", ErrVoiceNotFound, req.VoiceID)
	}
	secondary := primary
	if req.SecondaryVoiceID != "" {
		secondary, err = p.voices.Get(ctx, req.SecondaryVoiceID)
		if err != nil {
			return pcm.Clip{}, fmt.Errorf("%w: %s", ErrVoiceNotFound, req.SecondaryVoiceID)
		}
	}

	speed := req.Speed
	if speed == 0 {
		speed = 1.0
	}

	var results [][]pcm.Clip
	it := script.Segments(req.Text)
	for i := 0; ; i++ {
		seg, err := it.Next()
		if err == iterator.Done {
			break
		}
		prof := primary
		if seg.Speaker != 0 {
			prof = secondary
		}
		clips, err := p.router.Synthesize(ctx, seg, prof, speed)
		if err != nil {
			slog.Warn("segment synthesis failed, skipping",
				"segment", i,
				"speaker", seg.Speaker,
				"emotion", seg.Emotion,
				"err", err)
			continue
		}
		results = append(results, clips)
	}

	return Assemble(p.router.OutputFormat(), results)
}
