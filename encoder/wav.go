package encoder

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

type WavEncoder struct {
	file        memFile
	enc         *wav.Encoder
	format      *audio.Format
	totalFrames uint64
	encodeTime  time.Duration
	closed      bool
	mu          sync.Mutex
}

func NewWav(sampleRate int) (*WavEncoder, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	e := &WavEncoder{
		format: &audio.Format{NumChannels: Channels, SampleRate: sampleRate},
	}
	e.enc = wav.NewEncoder(&e.file, sampleRate, BitsPerSample, Channels, wavFormatPCM)
	return e, nil
}

func (e *WavEncoder) EncodeBlock(block []int16) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("wav encoder closed")
	}
	if err := e.write(block); err != nil {
		return err
	}
	e.totalFrames += uint64(len(block))
	return nil
}

func (e *WavEncoder) write(block []int16) error {
	buf := &audio.IntBuffer{
		Format:         e.format,
		Data:           make([]int, len(block)),
		SourceBitDepth: BitsPerSample,
	}
	for i, s := range block {
		buf.Data[i] = int(s)
	}
	if err := e.enc.Write(buf); err != nil {
		return fmt.Errorf("writing wav samples: %w", err)
	}
	return nil
}

// Close patches the RIFF and data chunk sizes. An encoder that never saw a
// block still produces a valid, empty WAV file.
func (e *WavEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.totalFrames == 0 {
		if err := e.write(nil); err != nil {
			return err
		}
	}
	if err := e.enc.Close(); err != nil {
		return fmt.Errorf("closing wav encoder: %w", err)
	}
	return nil
}

func (e *WavEncoder) Bytes() []byte {
	return e.file.Bytes()
}

func (e *WavEncoder) TotalFrames() uint64 {
	return e.totalFrames
}

func (e *WavEncoder) AddEncodeTime(d time.Duration) {
	e.mu.Lock()
	e.encodeTime += d
	e.mu.Unlock()
}

func (e *WavEncoder) EncodeTime() time.Duration {
	return e.encodeTime
}

func (e *WavEncoder) MIME() string { return "audio/wav" }
