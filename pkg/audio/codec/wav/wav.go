// Package wav encodes raw PCM clips into RIFF/WAVE containers for
// persistence. Only 16-bit linear PCM is produced, matching the formats in
// the pcm package.
package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/lyrebird-studio/lyrebird/pkg/audio/pcm"
)

const headerSize = 44

// Size returns the encoded size in bytes of a clip, header included.
func Size(c pcm.Clip) int64 {
	return headerSize + int64(len(c.Data))
}

// Encode writes the clip to w as a complete WAVE file.
func Encode(w io.Writer, c pcm.Clip) error {
	var hdr [headerSize]byte

	dataLen := uint32(len(c.Data))
	sampleRate := uint32(c.Format.SampleRate())
	channels := uint16(c.Format.Channels())
	depth := uint16(c.Format.Depth())
	blockAlign := channels * depth / 8

	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], 36+dataLen)
	copy(hdr[8:12], "WAVE")

	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(hdr[20:22], 1)  // audio format: linear PCM
	binary.LittleEndian.PutUint16(hdr[22:24], channels)
	binary.LittleEndian.PutUint32(hdr[24:28], sampleRate)
	binary.LittleEndian.PutUint32(hdr[28:32], sampleRate*uint32(blockAlign))
	binary.LittleEndian.PutUint16(hdr[32:34], blockAlign)
	binary.LittleEndian.PutUint16(hdr[34:36], depth)

	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], dataLen)

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("wav: write header: %w", err)
	}
	if _, err := w.Write(c.Data); err != nil {
		return fmt.Errorf("wav: write data: %w", err)
	}
	return nil
}
