package audio

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat indicates a malformed PCM byte buffer. The error is
// recoverable: the session that received the chunk remains usable.
var ErrInvalidFormat = errors.New("invalid audio format")

// pcmScale normalizes int16 sample magnitudes into [-1.0, 1.0].
const pcmScale = 32768.0

// DecodePCM16 converts a buffer of 16-bit little-endian signed mono PCM
// into normalized float samples in [-1.0, 1.0]. The buffer length must be
// a multiple of 2 bytes.
func DecodePCM16(data []byte) ([]float64, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: buffer length must be even, got %d bytes", ErrInvalidFormat, len(data))
	}

	samples := make([]float64, len(data)/2)
	for i := range samples {
		s := int16(data[2*i]) | int16(data[2*i+1])<<8
		samples[i] = float64(s) / pcmScale
	}

	return samples, nil
}
