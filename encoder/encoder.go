package encoder

import (
	"fmt"
	"time"
)

const (
	DefaultSampleRate = 16000
	Channels          = 1
	BitsPerSample     = 16
	BlockSize         = 4096
)

type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
	AddEncodeTime(d time.Duration)
	EncodeTime() time.Duration
	MIME() string
}

// New returns an encoder for format ("wav" or "flac") at the given sample rate.
func New(format string, sampleRate int) (Encoder, error) {
	switch format {
	case "wav":
		return NewWav(sampleRate)
	case "flac":
		return NewFlac(sampleRate)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
