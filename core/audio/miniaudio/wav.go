package miniaudio

import (
	"encoding/binary"
	"fmt"
)

// wavData returns the sample payload of a WAV container, or the input
// unchanged when it does not start with a RIFF header (already raw samples).
func wavData(clip []byte) ([]byte, error) {
	if len(clip) < 12 || string(clip[0:4]) != "RIFF" || string(clip[8:12]) != "WAVE" {
		return clip, nil
	}

	offset := 12
	for offset+8 <= len(clip) {
		chunkID := string(clip[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(clip[offset+4 : offset+8]))
		offset += 8

		if chunkID == "data" {
			if offset+chunkSize > len(clip) {
				return nil, fmt.Errorf("wav data chunk is truncated")
			}
			return clip[offset : offset+chunkSize], nil
		}

		// Chunks are word-aligned.
		offset += chunkSize + chunkSize%2
	}

	return nil, fmt.Errorf("wav container has no data chunk")
}
