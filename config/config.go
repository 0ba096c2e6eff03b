package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const fileName = "config.yaml"

type WebhookConfig struct {
	URL       string            `yaml:"url"`
	FieldName string            `yaml:"field_name"`
	FileName  string            `yaml:"file_name"`
	TimeoutMS int               `yaml:"timeout_ms"`
	Headers   map[string]string `yaml:"headers,omitempty"`
}

type RecordingConfig struct {
	Format     string `yaml:"format"` // wav or flac
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
	Device     string `yaml:"device,omitempty"`
	Gain       int    `yaml:"gain"` // linear multiplier applied to captured samples
}

type InputConfig struct {
	AcceptPrefix string `yaml:"accept_prefix"`
}

type LogConfig struct {
	Path  string `yaml:"path,omitempty"`
	Level string `yaml:"level"`
}

type UIConfig struct {
	Theme string `yaml:"theme"` // cyan or slate
}

type Config struct {
	Webhook   WebhookConfig   `yaml:"webhook"`
	Recording RecordingConfig `yaml:"recording"`
	Input     InputConfig     `yaml:"input"`
	Log       LogConfig       `yaml:"log"`
	UI        UIConfig        `yaml:"ui"`
}

func Default() Config {
	return Config{
		Webhook: WebhookConfig{
			URL:       "http://localhost:5678/webhook-test/audio-upload",
			FieldName: "data",
			FileName:  "audio_input.bin",
		},
		Recording: RecordingConfig{
			Format:     "wav",
			SampleRate: 16000,
			Channels:   1,
			Gain:       1,
		},
		Input: InputConfig{
			AcceptPrefix: "audio/",
		},
		Log: LogConfig{
			Level: "info",
		},
		UI: UIConfig{
			Theme: "cyan",
		},
	}
}

// DefaultPath returns the per-user config file location. The file is optional.
func DefaultPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "voxhook", fileName)
}

// Read loads path (if non-empty) over the defaults and applies VOXHOOK_*
// environment overrides. The result is not validated, so callers can layer
// more overrides first.
func Read(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Load is Read followed by Validate.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Save writes cfg as YAML to path, creating parent directories. The file may
// carry webhook credentials in headers, so it is only readable by the owner.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ResolvePath returns explicit when set, otherwise the default path if a file
// exists there, otherwise "".
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	def := DefaultPath()
	if def == "" {
		return ""
	}
	if _, err := os.Stat(def); err != nil {
		return ""
	}
	return def
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.Webhook.URL, "VOXHOOK_WEBHOOK_URL")
	overrideString(&cfg.Webhook.FieldName, "VOXHOOK_WEBHOOK_FIELD_NAME")
	overrideString(&cfg.Webhook.FileName, "VOXHOOK_WEBHOOK_FILE_NAME")
	overrideInt(&cfg.Webhook.TimeoutMS, "VOXHOOK_WEBHOOK_TIMEOUT_MS")
	overrideString(&cfg.Recording.Format, "VOXHOOK_RECORDING_FORMAT")
	overrideInt(&cfg.Recording.SampleRate, "VOXHOOK_RECORDING_SAMPLE_RATE")
	overrideInt(&cfg.Recording.Channels, "VOXHOOK_RECORDING_CHANNELS")
	overrideString(&cfg.Recording.Device, "VOXHOOK_RECORDING_DEVICE")
	overrideInt(&cfg.Recording.Gain, "VOXHOOK_RECORDING_GAIN")
	overrideString(&cfg.Input.AcceptPrefix, "VOXHOOK_INPUT_ACCEPT_PREFIX")
	overrideString(&cfg.Log.Path, "VOXHOOK_LOG_PATH")
	overrideString(&cfg.Log.Level, "VOXHOOK_LOG_LEVEL")
	overrideString(&cfg.UI.Theme, "VOXHOOK_UI_THEME")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			*target = parsed
		}
	}
}

func (c Config) Validate() error {
	if c.Webhook.URL == "" {
		return errors.New("webhook.url must not be empty")
	}
	u, err := url.Parse(c.Webhook.URL)
	if err != nil {
		return fmt.Errorf("webhook.url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("webhook.url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("webhook.url must include a host")
	}
	if c.Webhook.FieldName == "" {
		return errors.New("webhook.field_name must not be empty")
	}
	if c.Webhook.FileName == "" {
		return errors.New("webhook.file_name must not be empty")
	}
	if c.Webhook.TimeoutMS < 0 {
		return errors.New("webhook.timeout_ms must be >= 0")
	}
	switch c.Recording.Format {
	case "wav", "flac":
	default:
		return errors.New("recording.format must be one of wav|flac")
	}
	if c.Recording.SampleRate <= 0 {
		return errors.New("recording.sample_rate must be positive")
	}
	if c.Recording.Channels != 1 {
		return errors.New("recording.channels must be 1")
	}
	if c.Recording.Gain < 1 || c.Recording.Gain > 16 {
		return errors.New("recording.gain must be between 1 and 16")
	}
	if c.Input.AcceptPrefix == "" {
		return errors.New("input.accept_prefix must not be empty")
	}
	switch c.UI.Theme {
	case "cyan", "slate":
	default:
		return errors.New("ui.theme must be one of cyan|slate")
	}
	return nil
}
