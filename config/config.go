package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// OutputKind selects where samples are played
type OutputKind string

const (
	OutputSpeaker OutputKind = "speaker"
	OutputMIDI    OutputKind = "midi"
	OutputNone    OutputKind = "none"
	OutputBoth    OutputKind = "both" // speaker and MIDI together
)

// ThemeMode is the color scheme preference
type ThemeMode string

const (
	ThemeSystem ThemeMode = "system"
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
)

// OutputConfig defines the audio output
type OutputConfig struct {
	Kind     OutputKind `json:"kind"`
	PortName string     `json:"portName,omitempty"` // MIDI out port for midi and both
	Channel  uint8      `json:"channel,omitempty"`  // MIDI channel 1-16
}

// LoopConfig bounds loop playback
type LoopConfig struct {
	Max             int `json:"max"`
	DefaultInterval int `json:"defaultInterval"` // seconds
}

// Preferences are the user-facing settings
type Preferences struct {
	Theme        ThemeMode `json:"theme"`
	Volume       float64   `json:"volume"` // 0-1
	ShowTutorial bool      `json:"showTutorial"`
	Palette      string    `json:"palette,omitempty"` // optional .gpl file
}

// DefaultSamplesDir is where samples are looked up when samplesDir is unset,
// relative to the working directory.
const DefaultSamplesDir = "samples"

// Config is the main configuration structure
type Config struct {
	SamplesDir   string       `json:"samplesDir,omitempty"`
	Output       OutputConfig `json:"output"`
	Loops        LoopConfig   `json:"loops"`
	Launchpad    bool         `json:"launchpad"` // watch for grid controllers
	Keyboards    bool         `json:"keyboards"` // treat other MIDI inputs as keyboards
	Preferences  Preferences  `json:"preferences"`
	TutorialSeen bool         `json:"tutorialSeen"`
	Debug        bool         `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Kind:    OutputSpeaker,
			Channel: 1,
		},
		Loops: LoopConfig{
			Max:             5,
			DefaultInterval: 3,
		},
		Launchpad: true,
		Keyboards: true,
		Preferences: Preferences{
			Theme:        ThemeSystem,
			Volume:       0.7,
			ShowTutorial: true,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "glossolalia"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file; missing fields keep their defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.clamp()
	return cfg, nil
}

func (c *Config) clamp() {
	if c.Loops.Max < 1 {
		c.Loops.Max = 5
	}
	if c.Loops.DefaultInterval < 1 {
		c.Loops.DefaultInterval = 3
	}
	c.Preferences.Volume = min(max(c.Preferences.Volume, 0), 1)
	switch c.Preferences.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		c.Preferences.Theme = ThemeSystem
	}
	if c.Output.Channel < 1 || c.Output.Channel > 16 {
		c.Output.Channel = 1
	}
	switch c.Output.Kind {
	case OutputSpeaker, OutputMIDI, OutputNone, OutputBoth:
	default:
		c.Output.Kind = OutputSpeaker
	}
}

// Speaker reports whether samples go to the local speaker.
func (o OutputConfig) Speaker() bool {
	return o.Kind == OutputSpeaker || o.Kind == OutputBoth
}

// MIDI reports whether samples are sent as MIDI notes.
func (o OutputConfig) MIDI() bool {
	return o.Kind == OutputMIDI || o.Kind == OutputBoth
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// NextTheme cycles system -> light -> dark -> system.
func (c *Config) NextTheme() ThemeMode {
	switch c.Preferences.Theme {
	case ThemeSystem:
		c.Preferences.Theme = ThemeLight
	case ThemeLight:
		c.Preferences.Theme = ThemeDark
	default:
		c.Preferences.Theme = ThemeSystem
	}
	return c.Preferences.Theme
}

// ResetTutorial makes the tutorial show again on next start.
func (c *Config) ResetTutorial() {
	c.TutorialSeen = false
	c.Preferences.ShowTutorial = true
}

// SamplesPath is SamplesDir, or DefaultSamplesDir when unset.
func (c *Config) SamplesPath() string {
	if c.SamplesDir == "" {
		return DefaultSamplesDir
	}
	return c.SamplesDir
}
