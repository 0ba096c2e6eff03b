package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voxhook/audio"
	"voxhook/encoder"
	"voxhook/recorder"
	"voxhook/webhook"
)

func newHeadlessRecorder(t *testing.T, status int, body string) *recorder.Recorder {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	actx := audio.NewFakeContext(make([]byte, 3200))
	rec := recorder.New(recorder.Config{Format: "wav", SampleRate: 16000}, actx, webhook.New(webhook.Options{URL: srv.URL}))
	t.Cleanup(rec.Close)
	return rec
}

func writeWav(t *testing.T) string {
	t.Helper()
	enc, err := encoder.NewWav(16000)
	if err != nil {
		t.Fatal(err)
	}
	enc.EncodeBlock(make([]int16, 160))
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "note.wav")
	if err := os.WriteFile(path, enc.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHeadlessFile(t *testing.T) {
	rec := newHeadlessRecorder(t, 200, `{"transcript":"hello from the workflow"}`)
	var out, errOut bytes.Buffer

	code := runHeadless(context.Background(), rec, headlessOptions{File: writeWav(t)}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errOut.String())
	}
	if got := strings.TrimSpace(out.String()); got != "hello from the workflow" {
		t.Errorf("stdout = %q", got)
	}
	for _, want := range []string{
		`Audio file "note.wav" loaded successfully.`,
		"Uploading audio and triggering transcription workflow...",
		"Transcription successful! Result received from the workflow.",
	} {
		if !strings.Contains(errOut.String(), want) {
			t.Errorf("stderr missing %q:\n%s", want, errOut.String())
		}
	}
}

func TestHeadlessRecord(t *testing.T) {
	rec := newHeadlessRecorder(t, 200, `{"ok":true}`)
	var out, errOut bytes.Buffer

	code := runHeadless(context.Background(), rec, headlessOptions{Duration: 1}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errOut.String())
	}
	if got := strings.TrimSpace(out.String()); got != "{\n  \"ok\": true\n}" {
		t.Errorf("stdout = %q", got)
	}
	if !strings.Contains(errOut.String(), "Recording stopped. Ready to upload.") {
		t.Errorf("stderr:\n%s", errOut.String())
	}
}

func TestHeadlessFailures(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		rec := newHeadlessRecorder(t, 500, `{}`)
		var out, errOut bytes.Buffer
		if code := runHeadless(context.Background(), rec, headlessOptions{File: writeWav(t)}, &out, &errOut); code != 1 {
			t.Fatalf("exit code = %d, want 1", code)
		}
		if out.Len() != 0 {
			t.Errorf("stdout = %q, want empty", out.String())
		}
		if !strings.Contains(errOut.String(), "Status: 500") {
			t.Errorf("stderr:\n%s", errOut.String())
		}
	})

	t.Run("not audio", func(t *testing.T) {
		rec := newHeadlessRecorder(t, 200, `{}`)
		path := filepath.Join(t.TempDir(), "notes.txt")
		os.WriteFile(path, []byte("plain text"), 0644)
		var out, errOut bytes.Buffer
		if code := runHeadless(context.Background(), rec, headlessOptions{File: path}, &out, &errOut); code != 1 {
			t.Fatalf("exit code = %d, want 1", code)
		}
		if !strings.Contains(errOut.String(), "Error: File must be an audio type. Got: text/plain") {
			t.Errorf("stderr:\n%s", errOut.String())
		}
	})
}
