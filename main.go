package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"glossolalia/app"
	"glossolalia/audio"
	"glossolalia/config"
	"glossolalia/debug"
	"glossolalia/midi"
	"glossolalia/sequencer"
	"glossolalia/store"
	"glossolalia/theme"
	"glossolalia/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	if cfg.Debug || os.Getenv("GLOSSOLALIA_DEBUG") != "" {
		if err := debug.Enable(debug.DefaultPath()); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	// Sequences fall back to memory when the file can't be used
	st, err := store.OpenDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\nsequences will not be saved this session\n", err)
	}

	player, setVolume, closePlayer := openPlayer(cfg)
	defer closePlayer()

	manager, err := app.NewManager(cfg, st, player, sequencer.RealTimers{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	manager.StartRuntime(ctx)

	// Controllers are detected any time while running
	var deviceMgr *midi.DeviceManager
	if cfg.Launchpad || cfg.Keyboards {
		deviceMgr = midi.NewDeviceManager(cfg.Launchpad, cfg.Keyboards)
		if cfg.Output.Kind == config.OutputMIDI {
			deviceMgr.Ignore(cfg.Output.PortName)
		}
		go deviceMgr.Run(ctx)
		go manager.WatchDevices(ctx, deviceMgr)
	}

	var palette *theme.Palette
	if cfg.Preferences.Palette != "" {
		if palette, err = theme.LoadGPL(cfg.Preferences.Palette); err != nil {
			debug.Warn("theme", "palette: %v", err)
		}
	}

	m := tui.NewModel(manager, deviceMgr, tui.Options{
		SaveConfig: func(c *config.Config) error { return c.Save() },
		SetVolume:  setVolume,
		Palette:    palette,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Save(); err != nil {
		debug.Warn("config", "save on exit: %v", err)
	}
}

// openPlayer builds the configured outputs. An output that can't be opened
// is dropped; with none left the pad still works visually.
func openPlayer(cfg *config.Config) (sequencer.Player, func(float64), func()) {
	var (
		players   audio.Multi
		setVolume func(float64)
		closeAll  = func() {}
	)
	if cfg.Output.Speaker() {
		if bank, err := openBank(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "speaker: %v (skipped)\n", err)
		} else {
			players = append(players, bank)
			setVolume, closeAll = bank.SetVolume, bank.Close
		}
	}
	if cfg.Output.MIDI() {
		mp, err := audio.OpenMIDIPlayer(cfg.Output.PortName, cfg.Output.Channel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "midi output: %v (skipped)\n", err)
		} else {
			players = append(players, mp)
		}
	}

	switch len(players) {
	case 0:
		return audio.Silent{}, nil, closeAll
	case 1:
		return players[0], setVolume, closeAll
	}
	return players, setVolume, closeAll
}

func openBank(cfg *config.Config) (*audio.Bank, error) {
	bank, err := audio.LoadBank(cfg.SamplesPath())
	if err != nil {
		return nil, err
	}
	if err := bank.Init(); err != nil {
		return nil, err
	}
	bank.SetVolume(cfg.Preferences.Volume)
	return bank, nil
}
