package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"voxhook/audio"
	"voxhook/config"
	"voxhook/doctor"
	"voxhook/log"
	"voxhook/recorder"
	"voxhook/shutdown"
	"voxhook/webhook"
)

var version = "dev"

type cliFlags struct {
	configPath string
	webhookURL string
	format     string
	device     string
	timeout    time.Duration
	theme      string
	logPath    string
	file       string
	record     time.Duration
	setup      bool
	doctor     bool
	version    bool

	set map[string]bool
}

func parseFlags(args []string, errOut io.Writer) (*cliFlags, error) {
	f := &cliFlags{set: map[string]bool{}}
	fs := flag.NewFlagSet("voxhook", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&f.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/voxhook/config.yaml when present)")
	fs.StringVar(&f.webhookURL, "webhook", "", "workflow webhook URL")
	fs.StringVar(&f.format, "format", "", "recording format: wav or flac")
	fs.StringVar(&f.device, "device", "", "use named microphone device")
	fs.DurationVar(&f.timeout, "timeout", 0, "upload timeout (0 = none)")
	fs.StringVar(&f.theme, "theme", "", "card theme: cyan or slate")
	fs.StringVar(&f.logPath, "logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	fs.StringVar(&f.file, "file", "", "upload an audio file without the TUI and print the transcript")
	fs.DurationVar(&f.record, "record", 0, "record for the given duration without the TUI, upload, print the transcript")
	fs.BoolVar(&f.setup, "setup", false, "select microphone device and save it to the config file")
	fs.BoolVar(&f.doctor, "doctor", false, "run system diagnostics and exit")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	if f.file != "" && f.record > 0 {
		return nil, errors.New("-file and -record are mutually exclusive")
	}
	return f, nil
}

func (f *cliFlags) headless() bool {
	return f.file != "" || f.record > 0
}

// apply overlays explicitly set flags on cfg. Flags win over file and env.
func (f *cliFlags) apply(cfg *config.Config) {
	if f.set["webhook"] {
		cfg.Webhook.URL = f.webhookURL
	}
	if f.set["format"] {
		cfg.Recording.Format = f.format
	}
	if f.set["device"] {
		cfg.Recording.Device = f.device
	}
	if f.set["timeout"] {
		cfg.Webhook.TimeoutMS = int(f.timeout.Milliseconds())
	}
	if f.set["theme"] {
		cfg.UI.Theme = f.theme
	}
	if f.set["logpath"] {
		cfg.Log.Path = f.logPath
	}
}

// loadConfig resolves the config file, applies env overrides and flags and
// validates the result once all layers are in. It returns the path the config
// came from.
func loadConfig(f *cliFlags) (config.Config, string, error) {
	path := config.ResolvePath(f.configPath)
	cfg, err := config.Read(path)
	if err != nil {
		return cfg, path, err
	}
	f.apply(&cfg)
	return cfg, path, cfg.Validate()
}

func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if flags.version {
		fmt.Printf("voxhook %s\n", version)
		return 0
	}

	cfg, cfgPath, err := loadConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Resolve log directory early
	logPath, err := log.ResolveDir(cfg.Log.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		return 1
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	initCrashLog()

	if err := log.SetLevel(cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: unknown log level %q\n", cfg.Log.Level)
	}
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	if flags.doctor {
		return doctor.Run(cfg, cfgPath)
	}

	if flags.setup {
		return runSetup(cfg, cfgPath)
	}

	log.SessionStart(cfg.Webhook.URL, cfg.Recording.Format)

	actx, err := audio.NewContext()
	if err != nil {
		log.Warnf("audio context init error: %v", err)
		actx = nil
	} else {
		defer actx.Close()
	}

	client := webhook.New(webhook.OptionsFrom(cfg.Webhook))
	rec := recorder.New(recorder.ConfigFrom(cfg), actx, client)
	defer rec.Close()
	defer func() { log.SessionEnd(rec.Uploads()) }()

	ctx, stop := shutdown.WithSignal(context.Background())
	defer stop()

	if flags.headless() {
		return runHeadless(ctx, rec, headlessOptions{File: flags.file, Duration: flags.record}, os.Stdout, os.Stderr)
	}

	return runTUI(ctx, stop, rec, cfg)
}

func runSetup(cfg config.Config, cfgPath string) int {
	actx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("Error initializing audio: %v\n", err)
		return 1
	}
	defer actx.Close()

	dev, err := audio.SelectDevice(actx)
	if err != nil {
		if errors.Is(err, audio.ErrSelectionCancelled) {
			return 130
		}
		fmt.Printf("Error: device selection failed: %v\n", err)
		return 1
	}

	cfg.Recording.Device = dev.Name
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	log.Info("device_selected: " + dev.Name)
	fmt.Printf("Saved device %q to %s\n", dev.Name, cfgPath)
	return 0
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

// tuiSend delivers msg to the running program, if any.
func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func runTUI(ctx context.Context, cancel context.CancelFunc, rec *recorder.Recorder, cfg config.Config) int {
	device := audio.DefaultDeviceName
	if cfg.Recording.Device != "" {
		device = cfg.Recording.Device
	}
	m := newTUIModel(ctx, rec, tuiInfo{
		Endpoint: cfg.Webhook.URL,
		Device:   device,
		Format:   cfg.Recording.Format,
		Version:  version,
	}, themeByName(cfg.UI.Theme))

	p := tea.NewProgram(m, tea.WithAltScreen())
	tuiMu.Lock()
	tuiProgram = p
	tuiMu.Unlock()

	rec.OnChange(func(s recorder.Snapshot) { tuiSend(snapshotMsg{s}) })
	rec.OnLevel(func(l float64) { tuiSend(AudioLevelMsg{Level: l}) })

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, err := p.Run()
	cancel()
	if err != nil {
		log.Errorf("TUI error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
