package doctor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"voxhook/audio"
	"voxhook/clipboard"
	"voxhook/config"
	"voxhook/recorder"
	"voxhook/shutdown"
	"voxhook/webhook"
)

// Doctor runs the diagnostic checks. Every dependency is a field so checks
// can run against fakes.
type Doctor struct {
	Config     config.Config
	ConfigPath string
	Out        io.Writer
	NewAudio   func() (audio.Context, error)
	RecordFor  time.Duration
	Copy       func(string) error
	Read       func() (string, error)
}

// Run executes the diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(cfg config.Config, configPath string) int {
	resetTerminal(os.Stdin)
	ctx, stop := shutdown.WithSignal(context.Background())
	defer stop()

	d := &Doctor{
		Config:     cfg,
		ConfigPath: configPath,
		Out:        os.Stdout,
		NewAudio:   audio.NewContext,
		RecordFor:  2 * time.Second,
		Copy:       clipboard.Copy,
		Read:       clipboard.Read,
	}
	if d.Check(ctx) {
		return 0
	}
	return 1
}

func (d *Doctor) printf(format string, args ...any) {
	fmt.Fprintf(d.Out, format, args...)
}

// Check runs all checks and reports whether the required ones passed.
// The clipboard check only warns.
func (d *Doctor) Check(ctx context.Context) bool {
	d.printf("voxhook doctor - system diagnostics\n")
	d.printf("===================================\n")

	allPass := true
	if !d.checkConfig() {
		allPass = false
	}
	if !d.checkAudio(ctx) {
		allPass = false
	}
	if allPass && !d.checkWebhook(ctx) {
		allPass = false
	}
	d.checkClipboard()

	d.printf("\n")
	if allPass {
		d.printf("All checks passed!\n")
	} else {
		d.printf("Some checks failed. See details above.\n")
	}
	return allPass
}

func (d *Doctor) checkConfig() bool {
	d.printf("\n[1/4] Configuration\n")
	source := d.ConfigPath
	if source == "" {
		source = "(built-in defaults)"
	}
	d.printf("  source:   %s\n", source)
	d.printf("  webhook:  %s\n", d.Config.Webhook.URL)
	d.printf("  format:   %s @ %d Hz\n", d.Config.Recording.Format, d.Config.Recording.SampleRate)

	if err := d.Config.Validate(); err != nil {
		d.printf("  FAIL: %v\n", err)
		return false
	}
	d.printf("  PASS: configuration valid\n")
	return true
}

func (d *Doctor) checkAudio(ctx context.Context) bool {
	d.printf("\n[2/4] Audio capture\n")

	actx, err := d.NewAudio()
	if err != nil {
		d.printf("  FAIL: cannot connect to audio: %v\n", err)
		d.printf("  File uploads still work; recording is disabled.\n")
		return false
	}
	defer actx.Close()

	devices, err := actx.Devices()
	if err != nil {
		d.printf("  FAIL: cannot list devices: %v\n", err)
		return false
	}
	for _, dev := range devices {
		tag := ""
		if audio.IsBluetooth(dev.Name) {
			tag = " [lower audio quality]"
		}
		d.printf("  device:   %s%s\n", dev.Name, tag)
	}

	rec := recorder.New(recorder.ConfigFrom(d.Config), actx, nil)
	defer rec.Close()
	var peak float64
	rec.OnLevel(func(l float64) { peak = max(peak, l) })

	d.printf("  Recording %s...\n", d.RecordFor)
	if err := rec.Start(); err != nil {
		d.printf("  FAIL: %s\n", rec.Snapshot().Status.Text)
		return false
	}
	select {
	case <-time.After(d.RecordFor):
	case <-ctx.Done():
		rec.Stop()
		d.printf("  Interrupted\n")
		return false
	}
	if err := rec.Stop(); err != nil {
		d.printf("  FAIL: %v\n", err)
		return false
	}

	payload, ok := rec.Snapshot().Payload()
	if !ok || payload.Duration == 0 {
		d.printf("  FAIL: no audio captured\n")
		return false
	}
	d.printf("  captured: %.1fs, %.1f KB %s\n", payload.Duration.Seconds(), float64(payload.Size())/1024, payload.MIME)
	if peak < 0.02 {
		d.printf("  Warning: no voice detected (peak level %.3f)\n", peak)
	}
	d.printf("  PASS: microphone captured audio\n")
	return true
}

func (d *Doctor) checkWebhook(ctx context.Context) bool {
	d.printf("\n[3/4] Webhook reachability\n")

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := webhook.New(webhook.OptionsFrom(d.Config.Webhook))
	status, rtt, err := client.Probe(ctx)
	if err != nil {
		d.printf("  FAIL: %v\n", err)
		return false
	}
	d.printf("  %s answered %d in %dms\n", client.URL(), status, rtt.Milliseconds())
	if status == http.StatusNotFound {
		d.printf("  Note: test webhook URLs only accept calls while the workflow editor is listening.\n")
	}
	d.printf("  PASS: webhook host reachable\n")
	return true
}

func (d *Doctor) checkClipboard() bool {
	d.printf("\n[4/4] Clipboard\n")

	const sentinel = "voxhook-doctor-test"
	if err := d.Copy(sentinel); err != nil {
		d.printf("  Warning: clipboard copy failed: %v\n", err)
		return false
	}
	got, err := d.Read()
	if err != nil {
		d.printf("  Warning: clipboard read failed: %v\n", err)
		return false
	}
	if got != sentinel {
		d.printf("  Warning: clipboard returned %q, want %q\n", got, sentinel)
		return false
	}
	d.printf("  PASS: clipboard copy verified\n")
	return true
}
