// Package pcm models raw linear PCM audio as produced by the synthesis
// engine: 16-bit signed little-endian samples, single channel, at one of a
// small set of fixed sample rates.
//
// A Clip is an immutable run of samples in one Format. Clips are the unit
// the synthesis pipeline passes around; the assembler joins them with
// Concat, which never resamples.
package pcm

import (
	"errors"
	"fmt"
	"time"
)

const (
	// L16Mono16K represents audio/L16; rate=16000; channels=1
	L16Mono16K Format = iota
	// L16Mono22K represents audio/L16; rate=22050; channels=1
	L16Mono22K
	// L16Mono24K represents audio/L16; rate=24000; channels=1
	L16Mono24K
	// L16Mono48K represents audio/L16; rate=48000; channels=1
	L16Mono48K
)

// ErrFormatMismatch is returned by Concat when clips disagree on format.
var ErrFormatMismatch = errors.New("pcm: clip format mismatch")

// Format represents an audio format configuration.
type Format int

// FormatForRate returns the Format with the given sample rate.
func FormatForRate(rate int) (Format, bool) {
	switch rate {
	case 16000:
		return L16Mono16K, true
	case 22050:
		return L16Mono22K, true
	case 24000:
		return L16Mono24K, true
	case 48000:
		return L16Mono48K, true
	}
	return 0, false
}

// SampleRate returns the sample rate in Hz for this format.
func (f Format) SampleRate() int {
	switch f {
	case L16Mono16K:
		return 16000
	case L16Mono22K:
		return 22050
	case L16Mono24K:
		return 24000
	case L16Mono48K:
		return 48000
	}
	panic("pcm: invalid audio format")
}

// Channels returns the number of audio channels for this format.
func (f Format) Channels() int {
	switch f {
	case L16Mono16K, L16Mono22K, L16Mono24K, L16Mono48K:
		return 1
	}
	panic("pcm: invalid audio format")
}

// Depth returns the bit depth for this format.
func (f Format) Depth() int {
	switch f {
	case L16Mono16K, L16Mono22K, L16Mono24K, L16Mono48K:
		return 16
	}
	panic("pcm: invalid audio format")
}

// BytesPerSample returns the size of one sample frame in bytes.
func (f Format) BytesPerSample() int {
	return f.Channels() * f.Depth() / 8
}

// Samples returns the number of samples in the given number of bytes.
func (f Format) Samples(bytes int64) int64 {
	return bytes * 8 / int64(f.Channels()) / int64(f.Depth())
}

// Duration returns the duration of the given number of bytes.
func (f Format) Duration(bytes int64) time.Duration {
	return time.Duration(f.Samples(bytes)) * time.Second / time.Duration(f.SampleRate())
}

// BytesRate returns the byte rate of the audio data.
func (f Format) BytesRate() int {
	return f.SampleRate() * f.Channels() * f.Depth() / 8
}

func (f Format) String() string {
	return fmt.Sprintf("audio/L16; rate=%d; channels=%d", f.SampleRate(), f.Channels())
}

// Clip is a run of raw PCM samples in a single format.
type Clip struct {
	Data   []byte
	Format Format
}

// Empty reports whether the clip contains no samples.
func (c Clip) Empty() bool {
	return len(c.Data) == 0
}

// Samples returns the number of samples in the clip.
func (c Clip) Samples() int64 {
	return c.Format.Samples(int64(len(c.Data)))
}

// Duration returns the play time of the clip.
func (c Clip) Duration() time.Duration {
	return c.Format.Duration(int64(len(c.Data)))
}

// Concat joins clips along the time axis, in order. Empty clips contribute
// nothing. All non-empty clips must share one format; no resampling is
// performed. Concatenating zero or only-empty clips yields an empty clip in
// the given format.
func Concat(format Format, clips ...Clip) (Clip, error) {
	var total int
	for _, c := range clips {
		if c.Empty() {
			continue
		}
		if c.Format != format {
			return Clip{}, fmt.Errorf("%w: have %v, want %v", ErrFormatMismatch, c.Format, format)
		}
		total += len(c.Data)
	}
	out := Clip{Format: format}
	if total == 0 {
		return out, nil
	}
	out.Data = make([]byte, 0, total)
	for _, c := range clips {
		out.Data = append(out.Data, c.Data...)
	}
	return out, nil
}
