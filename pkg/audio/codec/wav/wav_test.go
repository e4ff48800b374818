package wav_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/lyrebird-studio/lyrebird/pkg/audio/codec/wav"
	"github.com/lyrebird-studio/lyrebird/pkg/audio/pcm"
)

func TestEncodeHeader(t *testing.T) {
	clip := pcm.Clip{Data: []byte{0, 1, 2, 3}, Format: pcm.L16Mono24K}

	var buf bytes.Buffer
	if err := wav.Encode(&buf, clip); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	b := buf.Bytes()
	if int64(len(b)) != wav.Size(clip) {
		t.Fatalf("encoded size = %d, want %d", len(b), wav.Size(clip))
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		t.Fatalf("bad container magic: %q %q", b[0:4], b[8:12])
	}
	if got := binary.LittleEndian.Uint32(b[24:28]); got != 24000 {
		t.Fatalf("sample rate = %d, want 24000", got)
	}
	if got := binary.LittleEndian.Uint16(b[22:24]); got != 1 {
		t.Fatalf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint16(b[34:36]); got != 16 {
		t.Fatalf("depth = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint32(b[40:44]); got != 4 {
		t.Fatalf("data length = %d, want 4", got)
	}
	if !bytes.Equal(b[44:], clip.Data) {
		t.Fatalf("payload = %v, want %v", b[44:], clip.Data)
	}
}
