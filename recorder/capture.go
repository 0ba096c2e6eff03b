package recorder

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"voxhook/audio"
	"voxhook/encoder"
)

// captureSession encodes PCM from a capture device on a background goroutine
// while recording is in progress.
type captureSession struct {
	device     audio.CaptureDevice
	encoder    encoder.Encoder
	sampleRate int
	started    time.Time
	level      func(float64)

	blockChan  chan []int16
	encodeDone chan struct{}
	sampleBuf  []int16
	bufMu      sync.Mutex
	closed     bool
	encodeErr  error

	release sync.Once
}

func newCaptureSession(enc encoder.Encoder, sampleRate int, level func(float64)) *captureSession {
	cs := &captureSession{
		encoder:    enc,
		sampleRate: sampleRate,
		level:      level,
		blockChan:  make(chan []int16, 64),
		encodeDone: make(chan struct{}),
	}

	go func() {
		defer close(cs.encodeDone)
		for block := range cs.blockChan {
			start := time.Now()
			if err := cs.encoder.EncodeBlock(block); err != nil && cs.encodeErr == nil {
				cs.encodeErr = err
			}
			cs.encoder.AddEncodeTime(time.Since(start))
		}
	}()

	return cs
}

// attach wires the session to device and starts capture.
func (cs *captureSession) attach(device audio.CaptureDevice) error {
	cs.device = device
	cs.started = time.Now()
	device.SetCallback(func(data []byte, _ uint32) {
		cs.Feed(data)
	})
	return device.Start()
}

func (cs *captureSession) Feed(pcm []byte) {
	if cs.level != nil && len(pcm) >= 2 {
		cs.level(rms(pcm))
	}

	cs.bufMu.Lock()
	defer cs.bufMu.Unlock()
	if cs.closed {
		return
	}
	for i := 0; i+1 < len(pcm); i += 2 {
		cs.sampleBuf = append(cs.sampleBuf, int16(binary.LittleEndian.Uint16(pcm[i:])))
	}
	for len(cs.sampleBuf) >= encoder.BlockSize {
		block := make([]int16, encoder.BlockSize)
		copy(block, cs.sampleBuf[:encoder.BlockSize])
		cs.sampleBuf = cs.sampleBuf[encoder.BlockSize:]
		cs.blockChan <- block
	}
}

// releaseDevice stops and closes the capture device. Safe to call repeatedly.
func (cs *captureSession) releaseDevice() {
	cs.release.Do(func() {
		if cs.device == nil {
			return
		}
		cs.device.ClearCallback()
		cs.device.Stop()
		cs.device.Close()
	})
}

// Close releases the device, flushes buffered samples and returns the
// encoded audio.
func (cs *captureSession) Close() ([]byte, time.Duration, error) {
	cs.releaseDevice()

	cs.bufMu.Lock()
	if !cs.closed {
		if len(cs.sampleBuf) > 0 {
			partial := make([]int16, len(cs.sampleBuf))
			copy(partial, cs.sampleBuf)
			cs.blockChan <- partial
			cs.sampleBuf = nil
		}
		cs.closed = true
		close(cs.blockChan)
	}
	cs.bufMu.Unlock()

	<-cs.encodeDone
	if cs.encodeErr != nil {
		return nil, 0, cs.encodeErr
	}
	if err := cs.encoder.Close(); err != nil {
		return nil, 0, err
	}

	frames := cs.encoder.TotalFrames()
	duration := time.Duration(float64(frames) / float64(cs.sampleRate) * float64(time.Second))
	return cs.encoder.Bytes(), duration, nil
}

// rms returns the normalised root-mean-square level of 16-bit LE PCM.
func rms(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
		sum += s * s
	}
	return math.Sqrt(sum/float64(n)) / 32768.0
}
