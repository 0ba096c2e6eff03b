// Package recorder owns the capture/upload state machine: it records from a
// microphone or accepts an audio file, holds the single pending payload and
// hands it to an uploader.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"voxhook/audio"
	"voxhook/config"
	"voxhook/encoder"
	"voxhook/log"
	"voxhook/webhook"
)

// Uploader delivers a payload and returns the workflow's answer.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (*webhook.Response, error)
}

type Config struct {
	Device       string // capture device name; empty selects the system default
	Format       string // wav or flac
	SampleRate   int
	Gain         int
	AcceptPrefix string
}

func ConfigFrom(cfg config.Config) Config {
	return Config{
		Device:       cfg.Recording.Device,
		Format:       cfg.Recording.Format,
		SampleRate:   cfg.Recording.SampleRate,
		Gain:         cfg.Recording.Gain,
		AcceptPrefix: cfg.Input.AcceptPrefix,
	}
}

func (c Config) withDefaults() Config {
	if c.Format == "" {
		c.Format = "wav"
	}
	if c.SampleRate <= 0 {
		c.SampleRate = encoder.DefaultSampleRate
	}
	if c.Gain < 1 {
		c.Gain = 1
	}
	if c.AcceptPrefix == "" {
		c.AcceptPrefix = "audio/"
	}
	return c
}

type Recorder struct {
	cfg      Config
	audioCtx audio.Context
	uploader Uploader

	mu         sync.Mutex
	state      State
	status     Status
	transcript string
	session    *captureSession
	uploads    int

	onLevel  func(float64)
	onChange func(Snapshot)
}

// New returns a recorder in the Idle state. A nil audio context means the
// system cannot capture audio; file selection and upload still work.
func New(cfg Config, audioCtx audio.Context, uploader Uploader) *Recorder {
	r := &Recorder{
		cfg:        cfg.withDefaults(),
		audioCtx:   audioCtx,
		uploader:   uploader,
		state:      Idle{},
		transcript: PlaceholderTranscript,
	}
	if audioCtx == nil {
		r.status = Status{msgUnavailable}
	}
	return r
}

// OnLevel registers a hook that receives the input level (0..1) of every
// captured chunk. It runs on the audio thread.
func (r *Recorder) OnLevel(fn func(float64)) {
	r.mu.Lock()
	r.onLevel = fn
	r.mu.Unlock()
}

// OnChange registers a hook called with a fresh snapshot after every state,
// status or transcript change.
func (r *Recorder) OnChange(fn func(Snapshot)) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// Uploads returns the number of upload attempts made so far.
func (r *Recorder) Uploads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uploads
}

// setStateLocked moves to next and logs the transition. r.mu must be held.
func (r *Recorder) setStateLocked(next State) {
	prev := r.state.Phase()
	r.state = next
	if prev != next.Phase() {
		log.Transition(prev.String(), next.Phase().String())
	}
}

// unlockAndNotify releases r.mu and publishes the resulting snapshot.
func (r *Recorder) unlockAndNotify() {
	snap := r.snapshotLocked()
	fn := r.onChange
	r.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.unlockAndNotify()

	if r.audioCtx == nil {
		r.status = Status{msgUnavailable}
		return ErrCapabilityUnavailable
	}
	if r.state.Phase() != PhaseIdle {
		return &TransitionError{Op: "start recording", From: r.state.Phase()}
	}

	enc, err := encoder.New(r.cfg.Format, r.cfg.SampleRate)
	if err != nil {
		return fmt.Errorf("creating encoder: %w", err)
	}

	var dev *audio.DeviceInfo
	if r.cfg.Device != "" {
		dev, err = audio.FindDevice(r.audioCtx, r.cfg.Device)
		if err != nil {
			log.Warnf("listing devices: %v", err)
		} else if dev == nil {
			log.Warnf("device %q not found, using system default", r.cfg.Device)
		}
	}

	capture, err := r.audioCtx.NewCapture(dev, audio.CaptureConfig{
		SampleRate: uint32(r.cfg.SampleRate),
		Channels:   encoder.Channels,
		Gain:       r.cfg.Gain,
	})
	if err != nil {
		r.status = micErrorStatus(err)
		log.Errorf("open capture device: %v", err)
		return &DeviceError{Op: "open", Err: err}
	}

	session := newCaptureSession(enc, r.cfg.SampleRate, r.onLevel)
	if err := session.attach(capture); err != nil {
		session.Close()
		r.status = micErrorStatus(err)
		log.Errorf("start capture device: %v", err)
		return &DeviceError{Op: "start", Err: err}
	}

	r.session = session
	r.setStateLocked(Recording{Started: session.started, Device: capture.DeviceName()})
	r.status = Status{msgRecording}
	r.transcript = msgRecordingStarted
	log.Info("recording_start")
	return nil
}

func (r *Recorder) Stop() error {
	r.mu.Lock()
	// A nil session while Recording means another Stop is releasing the device.
	if r.state.Phase() != PhaseRecording || r.session == nil {
		from := r.state.Phase()
		r.mu.Unlock()
		return &TransitionError{Op: "stop recording", From: from}
	}
	session := r.session
	r.session = nil
	r.mu.Unlock()

	// Stopping the device waits for an in-flight callback, and the callback
	// runs the level hook, so r.mu must not be held here.
	session.releaseDevice()

	r.mu.Lock()
	defer r.unlockAndNotify()
	data, duration, err := session.Close()
	if err != nil {
		r.setStateLocked(Idle{})
		r.status = micErrorStatus(err)
		log.Errorf("finalize recording: %v", err)
		return fmt.Errorf("finalizing recording: %w", err)
	}

	payload := Payload{
		Data:     data,
		MIME:     session.encoder.MIME(),
		Name:     "recording." + r.cfg.Format,
		Source:   SourceRecording,
		Duration: duration,
	}
	r.setStateLocked(Ready{Payload: payload})
	r.status = Status{msgStopped}
	log.Info(fmt.Sprintf("recording_stop duration=%s bytes=%d encode=%s",
		duration.Round(time.Millisecond), len(data), session.encoder.EncodeTime().Round(time.Microsecond)))
	return nil
}

// SelectFile loads the audio file at path as the pending payload.
func (r *Recorder) SelectFile(path string) error {
	name, data, err := readAudioFile(path)
	if err != nil {
		r.mu.Lock()
		if r.state.Phase() == PhaseIdle {
			r.status = Status{"Error: " + err.Error()}
		}
		r.unlockAndNotify()
		return err
	}
	return r.SelectData(name, data)
}

// SelectData accepts in-memory file contents as the pending payload.
// Content whose detected type falls outside the accepted prefix is rejected
// and leaves the recorder unchanged apart from the status.
func (r *Recorder) SelectData(name string, data []byte) error {
	r.mu.Lock()
	defer r.unlockAndNotify()

	if r.state.Phase() != PhaseIdle {
		return &TransitionError{Op: "select a file", From: r.state.Phase()}
	}

	mimeType, ok := detectMIME(name, data, r.cfg.AcceptPrefix)
	if !ok {
		r.status = notAudioStatus(mimeType)
		log.Warnf("rejected %s: %s", name, mimeType)
		return &InvalidInputError{Name: name, MIME: mimeType}
	}

	r.setStateLocked(Ready{Payload: Payload{
		Data:   data,
		MIME:   mimeType,
		Name:   name,
		Source: SourceFile,
	}})
	r.status = fileLoadedStatus(name)
	r.transcript = fileSelectedTranscript(name)
	return nil
}

// Upload sends the pending payload. Whatever the outcome, the payload is
// discarded and the recorder returns to Idle.
func (r *Recorder) Upload(ctx context.Context) error {
	r.mu.Lock()
	var payload Payload
	switch s := r.state.(type) {
	case Ready:
		payload = s.Payload
	case Idle:
		r.status = Status{msgNoPayload}
		r.unlockAndNotify()
		return ErrNoPayload
	default:
		from := r.state.Phase()
		r.unlockAndNotify()
		return &TransitionError{Op: "upload", From: from}
	}
	r.setStateLocked(Uploading{Payload: payload})
	r.status = Status{msgUploading}
	r.uploads++
	r.unlockAndNotify()

	resp, err := r.uploader.Upload(ctx, payload.Data, payload.MIME)
	logUpload(payload, resp)

	r.mu.Lock()
	defer r.unlockAndNotify()
	r.setStateLocked(Idle{})

	if err != nil {
		r.status = uploadFailedStatus(err)
		var httpErr *webhook.HTTPError
		if errors.As(err, &httpErr) {
			log.Errorf("upload rejected: status=%d body=%q", httpErr.StatusCode, truncate(httpErr.Body, 200))
		} else {
			log.Errorf("upload failed: %v", err)
		}
		return fmt.Errorf("upload: %w", err)
	}

	r.transcript = resp.Display()
	if resp.HasTranscript() {
		r.status = Status{msgTranscribed}
		log.TranscriptText(resp.Transcript)
	} else {
		r.status = Status{msgRawResponse}
	}
	return nil
}

func logUpload(p Payload, resp *webhook.Response) {
	m := log.UploadMetrics{Bytes: p.Size(), MIME: p.MIME, Source: p.Source.String()}
	if resp != nil {
		m.StatusCode = resp.StatusCode
		if nm := resp.Metrics; nm != nil {
			m.DNSMs = float64(nm.DNS.Milliseconds())
			m.TCPMs = float64(nm.TCP.Milliseconds())
			m.TLSMs = float64(nm.TLS.Milliseconds())
			m.TTFBMs = float64(nm.TTFB.Milliseconds())
			m.TotalMs = float64(nm.Total.Milliseconds())
			m.ConnReused = nm.ConnReused
			m.TLSProtocol = nm.TLSProtocol
		}
	}
	log.Upload(m)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Close releases the capture device if a recording is still running.
func (r *Recorder) Close() {
	r.mu.Lock()
	session := r.session
	r.session = nil
	if session != nil {
		r.setStateLocked(Idle{})
	}
	r.mu.Unlock()
	if session != nil {
		session.Close()
	}
}
