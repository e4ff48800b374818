package synth

import (
	"errors"

	"github.com/lyrebird-studio/lyrebird/pkg/audio/pcm"
)

// ErrEmptySynthesis means no segment produced any audio.
var ErrEmptySynthesis = errors.New("empty synthesis result")

// Assemble concatenates per-segment clip sequences into one clip in
// source order. Segments that produced nothing contribute nothing.
func Assemble(format pcm.Format, segments [][]pcm.Clip) (pcm.Clip, error) {
	var flat []pcm.Clip
	for _, clips := range segments {
		flat = append(flat, clips...)
	}
	out, err := pcm.Concat(format, flat...)
	if err != nil {
		return pcm.Clip{}, err
	}
	if out.Empty() {
		return pcm.Clip{}, ErrEmptySynthesis
	}
	return out, nil
}
