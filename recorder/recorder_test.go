package recorder

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"voxhook/audio"
	"voxhook/encoder"
	"voxhook/log"
	"voxhook/webhook"
)

func sinePCM(samples int) []byte {
	pcm := make([]byte, samples*2)
	for i := range samples {
		v := int16(8000 * math.Sin(2*math.Pi*440*float64(i)/16000))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	return pcm
}

func wavBytes(t *testing.T) []byte {
	t.Helper()
	enc, err := encoder.NewWav(16000)
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeBlock(make([]int16, 1600)); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	return enc.Bytes()
}

type fakeUploader struct {
	mu    sync.Mutex
	calls int
	data  []byte
	mime  string
	resp  *webhook.Response
	err   error
	block chan struct{}
}

func (f *fakeUploader) Upload(ctx context.Context, data []byte, contentType string) (*webhook.Response, error) {
	f.mu.Lock()
	f.calls++
	f.data = data
	f.mime = contentType
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.resp, f.err
}

func (f *fakeUploader) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func okUploader(body string) *fakeUploader {
	resp := &webhook.Response{StatusCode: 200, Body: []byte(body)}
	return &fakeUploader{resp: resp}
}

func newTestRecorder(t *testing.T, up Uploader) (*Recorder, *audio.FakeContext) {
	t.Helper()
	ctx := audio.NewFakeContext(sinePCM(16000))
	r := New(Config{Format: "wav", SampleRate: 16000}, ctx, up)
	t.Cleanup(r.Close)
	return r, ctx
}

func recordOnce(t *testing.T, r *Recorder) {
	t.Helper()
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestInitialSnapshot(t *testing.T) {
	r, _ := newTestRecorder(t, okUploader(`{}`))
	snap := r.Snapshot()
	if snap.Phase() != PhaseIdle {
		t.Errorf("phase = %v, want idle", snap.Phase())
	}
	if snap.Transcript != PlaceholderTranscript {
		t.Errorf("transcript = %q", snap.Transcript)
	}
	if !snap.Status.Empty() {
		t.Errorf("status = %q, want empty", snap.Status.Text)
	}
	want := Controls{Record: true, SelectFile: true}
	if got := snap.Controls(); got != want {
		t.Errorf("controls = %+v, want %+v", got, want)
	}
}

func TestStartStopProducesPayload(t *testing.T) {
	r, ctx := newTestRecorder(t, okUploader(`{}`))

	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	snap := r.Snapshot()
	if snap.Phase() != PhaseRecording {
		t.Fatalf("phase = %v, want recording", snap.Phase())
	}
	if snap.Status.Text != "Recording in progress..." {
		t.Errorf("status = %q", snap.Status.Text)
	}
	if snap.Transcript != "Recording started. Please speak clearly..." {
		t.Errorf("transcript = %q", snap.Transcript)
	}
	if got, want := snap.Controls(), (Controls{Stop: true}); got != want {
		t.Errorf("controls = %+v, want %+v", got, want)
	}

	if err := r.Stop(); err != nil {
		t.Fatal(err)
	}
	snap = r.Snapshot()
	if snap.Phase() != PhaseReady {
		t.Fatalf("phase = %v, want ready", snap.Phase())
	}
	if snap.Status.Text != "Recording stopped. Ready to upload." {
		t.Errorf("status = %q", snap.Status.Text)
	}
	if got, want := snap.Controls(), (Controls{Upload: true}); got != want {
		t.Errorf("controls = %+v, want %+v", got, want)
	}

	payload, ok := snap.Payload()
	if !ok {
		t.Fatal("expected a payload after stop")
	}
	if payload.MIME != "audio/wav" || payload.Source != SourceRecording {
		t.Errorf("payload = %s from %v", payload.MIME, payload.Source)
	}
	if !bytes.HasPrefix(payload.Data, []byte("RIFF")) {
		t.Errorf("payload is not a WAV file: % x", payload.Data[:min(12, len(payload.Data))])
	}
	if payload.Duration != time.Second {
		t.Errorf("duration = %v, want 1s", payload.Duration)
	}

	captures := ctx.Captures()
	if len(captures) != 1 {
		t.Fatalf("captures = %d, want 1", len(captures))
	}
	if stops, closes := captures[0].Released(); stops != 1 || closes != 1 {
		t.Errorf("device released stops=%d closes=%d, want 1/1", stops, closes)
	}
}

func TestRecordFlac(t *testing.T) {
	ctx := audio.NewFakeContext(sinePCM(8000))
	r := New(Config{Format: "flac", SampleRate: 16000}, ctx, okUploader(`{}`))
	recordOnce(t, r)

	payload, _ := r.Snapshot().Payload()
	if payload.MIME != "audio/flac" {
		t.Errorf("MIME = %q, want audio/flac", payload.MIME)
	}
	if !bytes.HasPrefix(payload.Data, []byte("fLaC")) {
		t.Error("payload missing FLAC signature")
	}
}

func TestStartUnavailable(t *testing.T) {
	up := okUploader(`{}`)
	r := New(Config{}, nil, up)

	snap := r.Snapshot()
	if !snap.Status.IsError() {
		t.Errorf("expected error status, got %q", snap.Status.Text)
	}
	if snap.Controls().Record {
		t.Error("record must be disabled without audio capture")
	}
	if err := r.Start(); !errors.Is(err, ErrCapabilityUnavailable) {
		t.Fatalf("Start err = %v, want ErrCapabilityUnavailable", err)
	}
	if r.Snapshot().Phase() != PhaseIdle {
		t.Error("state changed after unavailable start")
	}

	// files still work
	if err := r.SelectData("clip.wav", wavBytes(t)); err != nil {
		t.Fatalf("SelectData: %v", err)
	}
}

func TestStartDeviceErrors(t *testing.T) {
	denied := errors.New("NotAllowedError")

	t.Run("open", func(t *testing.T) {
		r, ctx := newTestRecorder(t, okUploader(`{}`))
		ctx.CaptureErr = denied

		err := r.Start()
		var devErr *DeviceError
		if !errors.As(err, &devErr) || !errors.Is(err, denied) {
			t.Fatalf("err = %v, want DeviceError wrapping denial", err)
		}
		snap := r.Snapshot()
		want := "Error: Could not access microphone. Ensure permissions are granted. (NotAllowedError)"
		if snap.Status.Text != want {
			t.Errorf("status = %q, want %q", snap.Status.Text, want)
		}
		if snap.Phase() != PhaseIdle {
			t.Errorf("phase = %v, want idle", snap.Phase())
		}
	})

	t.Run("start", func(t *testing.T) {
		r, ctx := newTestRecorder(t, okUploader(`{}`))
		ctx.StartErr = denied

		if err := r.Start(); !errors.Is(err, denied) {
			t.Fatalf("err = %v", err)
		}
		if r.Snapshot().Phase() != PhaseIdle {
			t.Error("expected idle after failed start")
		}
		if stops, closes := ctx.Captures()[0].Released(); stops != 1 || closes != 1 {
			t.Errorf("device released stops=%d closes=%d, want 1/1", stops, closes)
		}
		// the recorder stays usable
		ctx.StartErr = nil
		recordOnce(t, r)
	})
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, r *Recorder)
		op    func(r *Recorder) error
		from  Phase
	}{
		{"stop while idle", func(*testing.T, *Recorder) {}, (*Recorder).Stop, PhaseIdle},
		{"start while recording", func(t *testing.T, r *Recorder) { r.Start() }, (*Recorder).Start, PhaseRecording},
		{"start while ready", recordOnce, (*Recorder).Start, PhaseReady},
		{"stop while ready", recordOnce, (*Recorder).Stop, PhaseReady},
		{"select file while recording", func(t *testing.T, r *Recorder) { r.Start() },
			func(r *Recorder) error { return r.SelectData("a.wav", nil) }, PhaseRecording},
		{"select file while ready", recordOnce,
			func(r *Recorder) error { return r.SelectData("a.wav", nil) }, PhaseReady},
		{"upload while recording", func(t *testing.T, r *Recorder) { r.Start() },
			func(r *Recorder) error { return r.Upload(context.Background()) }, PhaseRecording},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRecorder(t, okUploader(`{}`))
			tt.setup(t, r)
			before := r.Snapshot()

			err := tt.op(r)
			var te *TransitionError
			if !errors.As(err, &te) || !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("err = %v, want TransitionError", err)
			}
			if te.From != tt.from {
				t.Errorf("From = %v, want %v", te.From, tt.from)
			}
			after := r.Snapshot()
			if after.Phase() != before.Phase() || after.Status != before.Status {
				t.Errorf("rejected transition changed state: %v/%q -> %v/%q",
					before.Phase(), before.Status.Text, after.Phase(), after.Status.Text)
			}
		})
	}
}

func TestSelectDataRejectsNonAudio(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		mime string
	}{
		{"notes.txt", []byte("hello world, not audio"), "text/plain"},
		{"image.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), "image/png"},
		{"doc.pdf", []byte("%PDF-1.4\n%âãÏÓ\n"), "application/pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRecorder(t, okUploader(`{}`))

			err := r.SelectData(tt.name, tt.data)
			var inErr *InvalidInputError
			if !errors.As(err, &inErr) || !errors.Is(err, ErrNotAudio) {
				t.Fatalf("err = %v, want InvalidInputError", err)
			}
			snap := r.Snapshot()
			if !strings.HasPrefix(snap.Status.Text, "Error: File must be an audio type. Got: "+tt.mime) {
				t.Errorf("status = %q", snap.Status.Text)
			}
			if !snap.Status.IsError() {
				t.Error("status should classify as error")
			}
			if _, ok := snap.Payload(); ok {
				t.Error("payload created for rejected file")
			}
			if snap.Phase() != PhaseIdle {
				t.Errorf("phase = %v, want idle", snap.Phase())
			}
		})
	}
}

func TestSelectFile(t *testing.T) {
	r, _ := newTestRecorder(t, okUploader(`{}`))
	path := filepath.Join(t.TempDir(), "memo.wav")
	if err := os.WriteFile(path, wavBytes(t), 0644); err != nil {
		t.Fatal(err)
	}

	if err := r.SelectFile(path); err != nil {
		t.Fatalf("SelectFile: %v", err)
	}
	snap := r.Snapshot()
	if snap.Status.Text != `Audio file "memo.wav" loaded successfully.` {
		t.Errorf("status = %q", snap.Status.Text)
	}
	if snap.Transcript != "File selected: memo.wav. Ready to upload." {
		t.Errorf("transcript = %q", snap.Transcript)
	}
	payload, ok := snap.Payload()
	if !ok || payload.Source != SourceFile || payload.Name != "memo.wav" {
		t.Fatalf("payload = %+v ok=%v", payload, ok)
	}
	if payload.MIME != "audio/wav" {
		t.Errorf("MIME = %q, want audio/wav", payload.MIME)
	}
	if got, want := snap.Controls(), (Controls{Upload: true}); got != want {
		t.Errorf("controls = %+v, want %+v", got, want)
	}
}

func TestSelectFileMissing(t *testing.T) {
	r, _ := newTestRecorder(t, okUploader(`{}`))
	if err := r.SelectFile(filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
	snap := r.Snapshot()
	if !snap.Status.IsError() || snap.Phase() != PhaseIdle {
		t.Errorf("status=%q phase=%v", snap.Status.Text, snap.Phase())
	}
}

func TestUploadWithoutPayload(t *testing.T) {
	up := okUploader(`{}`)
	r, _ := newTestRecorder(t, up)

	if err := r.Upload(context.Background()); !errors.Is(err, ErrNoPayload) {
		t.Fatalf("err = %v, want ErrNoPayload", err)
	}
	if r.Snapshot().Status.Text != "Error: No audio data to upload." {
		t.Errorf("status = %q", r.Snapshot().Status.Text)
	}
	if up.Calls() != 0 {
		t.Errorf("uploader called %d times", up.Calls())
	}
}

func TestUploadSendsPayload(t *testing.T) {
	up := okUploader(`{"transcript":"hello"}`)
	up.resp.Transcript = "hello"
	r, _ := newTestRecorder(t, up)
	recordOnce(t, r)
	payload, _ := r.Snapshot().Payload()

	if err := r.Upload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(up.data, payload.Data) || up.mime != "audio/wav" {
		t.Errorf("uploaded %d bytes as %q", len(up.data), up.mime)
	}
	if r.Uploads() != 1 {
		t.Errorf("Uploads() = %d", r.Uploads())
	}
}

func newWebhookRecorder(t *testing.T, status int, body string) (*Recorder, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	r, _ := newTestRecorder(t, webhook.New(webhook.Options{URL: srv.URL}))
	return r, &hits
}

func TestUploadOutcomes(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		body           string
		wantErr        bool
		wantStatus     string
		wantTranscript string
	}{
		{
			name: "transcript", status: 200, body: `{"transcript":"hello"}`,
			wantStatus:     "Transcription successful! Result received from the workflow.",
			wantTranscript: "hello",
		},
		{
			name: "raw json", status: 200, body: `{"ok":true}`,
			wantStatus:     "Workflow triggered successfully. Raw response received (check for transcript field).",
			wantTranscript: "{\n  \"ok\": true\n}",
		},
		{
			name: "http 500", status: 500, body: `{"message":"Workflow could not be started"}`,
			wantErr:        true,
			wantStatus:     "Error: Failed to trigger workflow. Check the webhook URL and workflow status. (HTTP Error: Failed to trigger workflow. Status: 500)",
			wantTranscript: "Recording started. Please speak clearly...",
		},
		{
			name: "not json", status: 200, body: `Workflow was started`,
			wantErr:        true,
			wantStatus:     "Error: Failed to trigger workflow. Check the webhook URL and workflow status. (",
			wantTranscript: "Recording started. Please speak clearly...",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, hits := newWebhookRecorder(t, tt.status, tt.body)
			recordOnce(t, r)

			err := r.Upload(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			snap := r.Snapshot()
			if !strings.HasPrefix(snap.Status.Text, tt.wantStatus) {
				t.Errorf("status = %q, want prefix %q", snap.Status.Text, tt.wantStatus)
			}
			if snap.Status.IsError() != tt.wantErr {
				t.Errorf("IsError = %v", snap.Status.IsError())
			}
			if snap.Transcript != tt.wantTranscript {
				t.Errorf("transcript = %q, want %q", snap.Transcript, tt.wantTranscript)
			}
			if _, ok := snap.Payload(); ok {
				t.Error("payload kept after upload")
			}
			if snap.Phase() != PhaseIdle || !snap.Controls().Record {
				t.Errorf("phase = %v controls = %+v after upload", snap.Phase(), snap.Controls())
			}
			if hits.Load() != 1 {
				t.Errorf("requests = %d, want 1", hits.Load())
			}
			// a new recording can start straight away
			if err := r.Start(); err != nil {
				t.Errorf("Start after upload: %v", err)
			}
		})
	}
}

func TestUploadHTTPErrorType(t *testing.T) {
	r, _ := newWebhookRecorder(t, 404, `{"code":404}`)
	recordOnce(t, r)
	err := r.Upload(context.Background())
	var httpErr *webhook.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 404 {
		t.Fatalf("err = %v, want *webhook.HTTPError 404", err)
	}
}

func TestUploadNetworkFailure(t *testing.T) {
	up := &fakeUploader{err: errors.New("dial tcp 127.0.0.1:5678: connect: connection refused")}
	r, _ := newTestRecorder(t, up)
	recordOnce(t, r)

	if err := r.Upload(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	want := "Error: Failed to trigger workflow. Check the webhook URL and workflow status. (dial tcp 127.0.0.1:5678: connect: connection refused)"
	if got := r.Snapshot().Status.Text; got != want {
		t.Errorf("status = %q, want %q", got, want)
	}
	if r.Snapshot().Phase() != PhaseIdle {
		t.Error("expected idle after failed upload")
	}
}

func TestOperationsRejectedWhileUploading(t *testing.T) {
	up := okUploader(`{}`)
	up.block = make(chan struct{})
	r, _ := newTestRecorder(t, up)

	uploading := make(chan struct{})
	var once sync.Once
	r.OnChange(func(s Snapshot) {
		if s.Phase() == PhaseUploading {
			once.Do(func() { close(uploading) })
		}
	})
	recordOnce(t, r)

	done := make(chan error, 1)
	go func() { done <- r.Upload(context.Background()) }()
	<-uploading

	snap := r.Snapshot()
	if snap.Status.Text != "Uploading audio and triggering transcription workflow..." {
		t.Errorf("status = %q", snap.Status.Text)
	}
	if got := snap.Controls(); got != (Controls{}) {
		t.Errorf("controls while uploading = %+v, want none", got)
	}
	for name, op := range map[string]func() error{
		"upload": func() error { return r.Upload(context.Background()) },
		"start":  r.Start,
		"select": func() error { return r.SelectData("a.wav", wavBytes(t)) },
	} {
		if err := op(); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s while uploading: err = %v", name, err)
		}
	}

	close(up.block)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if up.Calls() != 1 {
		t.Errorf("uploader calls = %d, want 1", up.Calls())
	}
}

func TestOnLevel(t *testing.T) {
	r, _ := newTestRecorder(t, okUploader(`{}`))
	var peak float64
	var calls int
	r.OnLevel(func(l float64) {
		calls++
		peak = max(peak, l)
	})
	recordOnce(t, r)
	if calls == 0 {
		t.Fatal("level hook never called")
	}
	// 8000-amplitude sine: rms = 8000/sqrt(2)/32768
	if peak < 0.15 || peak > 0.19 {
		t.Errorf("peak level = %f", peak)
	}
}

func TestCloseReleasesRunningCapture(t *testing.T) {
	r, ctx := newTestRecorder(t, okUploader(`{}`))
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	r.Close()
	r.Close()
	if stops, closes := ctx.Captures()[0].Released(); stops != 1 || closes != 1 {
		t.Errorf("stops=%d closes=%d, want 1/1", stops, closes)
	}
	if r.Snapshot().Phase() != PhaseIdle {
		t.Error("expected idle after Close")
	}
}

func TestStatusIsError(t *testing.T) {
	for _, tt := range []struct {
		text string
		want bool
	}{
		{"Recording in progress...", false},
		{"Error: No audio data to upload.", true},
		{"Permission denied", true},
		{"error lowercase", false},
		{"", false},
	} {
		if got := (Status{tt.text}).IsError(); got != tt.want {
			t.Errorf("IsError(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestPhaseString(t *testing.T) {
	for p, want := range map[Phase]string{
		PhaseIdle: "idle", PhaseRecording: "recording", PhaseReady: "ready", PhaseUploading: "uploading", Phase(9): "unknown",
	} {
		if p.String() != want {
			t.Errorf("%d.String() = %q, want %q", p, p.String(), want)
		}
	}
}

// flushingCapture runs its last callback from Stop, the way a backend
// finishes an in-flight buffer before stopping returns.
type flushingCapture struct {
	pcm      []byte
	inflight audio.DataCallback
}

func (c *flushingCapture) Start() error { return nil }
func (c *flushingCapture) Stop() {
	if c.inflight != nil {
		c.inflight(c.pcm, uint32(len(c.pcm)/2))
	}
}
func (c *flushingCapture) Close() {}
func (c *flushingCapture) SetCallback(cb audio.DataCallback) { c.inflight = cb }
func (c *flushingCapture) ClearCallback() {}
func (c *flushingCapture) DeviceName() string { return "flushing" }

type flushingContext struct{ capture *flushingCapture }

func (f *flushingContext) Devices() ([]audio.DeviceInfo, error) { return nil, nil }
func (f *flushingContext) NewCapture(*audio.DeviceInfo, audio.CaptureConfig) (audio.CaptureDevice, error) {
	return f.capture, nil
}
func (f *flushingContext) Close() {}

func TestStopReleasesDeviceWithoutLock(t *testing.T) {
	actx := &flushingContext{capture: &flushingCapture{pcm: sinePCM(800)}}
	r := New(Config{Format: "wav", SampleRate: 16000}, actx, okUploader(`{}`))
	t.Cleanup(r.Close)

	var levels atomic.Int32
	r.OnLevel(func(float64) {
		r.Snapshot()
		levels.Add(1)
	})
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- r.Stop() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Stop: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Stop deadlocked with a level hook that reads the recorder")
	}
	if levels.Load() != 1 {
		t.Errorf("level hook ran %d times, want 1", levels.Load())
	}
	payload, ok := r.Snapshot().Payload()
	if !ok || payload.Duration < 49*time.Millisecond || payload.Duration > 51*time.Millisecond {
		t.Errorf("payload = %+v ok=%v, want 50ms of audio", payload, ok)
	}
}

func TestStopLogsEncodeTime(t *testing.T) {
	dir := t.TempDir()
	log.SetDir(dir)
	if err := log.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { log.Close(); log.SetDir("") })

	r, _ := newTestRecorder(t, okUploader(`{}`))
	recordOnce(t, r)
	log.Close()

	data, err := os.ReadFile(filepath.Join(dir, "diagnostics_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"recording_stop", "encode="} {
		if !strings.Contains(string(data), want) {
			t.Errorf("diagnostics log missing %q:\n%s", want, data)
		}
	}
}

func TestDetectMIMEFallsBackToExtension(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		wantOK bool
	}{
		{"empty.wav", nil, true},
		{"empty.flac", []byte{}, true},
		{"noise.mp3", []byte{0x01, 0x02, 0x03, 0x04, 0x05}, true},
		{"blank", nil, false},
		{"blob.bin", []byte{0x01, 0x02, 0x03, 0x04, 0x05}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := detectMIME(tt.name, tt.data, "audio/")
			if ok != tt.wantOK {
				t.Fatalf("detectMIME(%q) = %q, %v; want ok=%v", tt.name, got, ok, tt.wantOK)
			}
			if ok && !strings.HasPrefix(got, "audio/") {
				t.Errorf("detectMIME(%q) = %q, want audio/*", tt.name, got)
			}
		})
	}
}

func TestSelectDataAcceptsEmptyAudioFile(t *testing.T) {
	r, _ := newTestRecorder(t, okUploader(`{}`))
	if err := r.SelectData("empty.wav", nil); err != nil {
		t.Fatalf("SelectData: %v", err)
	}
	payload, ok := r.Snapshot().Payload()
	if !ok || payload.Size() != 0 {
		t.Errorf("payload = %+v ok=%v, want empty audio payload", payload, ok)
	}
}
