// Command padtool manages saved sequences from the shell.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/ncruces/zenity"

	"glossolalia/audio"
	"glossolalia/config"
	"glossolalia/midi"
	"glossolalia/pad"
	"glossolalia/sequencer"
	"glossolalia/store"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stdout)
		return
	}
	st, err := store.OpenDefault()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	t := &tool{store: st, out: os.Stdout, pick: pickFile}
	if err := t.run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "padtool: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "padtool - manage saved sequences")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list            - List saved sequences")
	fmt.Fprintln(w, "  clear           - Delete every sequence")
	fmt.Fprintln(w, "  reset-tutorial  - Show the tutorial hint again")
	fmt.Fprintln(w, "  generate N      - Append N random sequences")
	fmt.Fprintln(w, "  play N          - Play sequence N once")
	fmt.Fprintln(w, "  export PATH     - Write sequences to .yaml or .json")
	fmt.Fprintln(w, "  import [PATH]   - Append sequences from a file (asks when PATH is omitted)")
	fmt.Fprintln(w, "  ports           - List MIDI ports")
}

type tool struct {
	store  store.Store
	out    io.Writer
	pick   func() (string, error)
	rng    *rand.Rand
	player sequencer.Player
}

var errUsage = errors.New("bad arguments, run padtool with no arguments for help")

func (t *tool) run(args []string) error {
	switch args[0] {
	case "list":
		return t.list()
	case "clear":
		if err := t.store.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(t.out, "cleared")
		return nil
	case "reset-tutorial":
		return resetTutorial(t.out)
	case "generate":
		n, err := intArg(args, 1)
		if err != nil {
			return err
		}
		return t.generate(n)
	case "play":
		n, err := intArg(args, 1)
		if err != nil {
			return err
		}
		return t.play(n)
	case "export":
		if len(args) < 2 {
			return errUsage
		}
		return t.export(args[1])
	case "import":
		path := ""
		if len(args) > 1 {
			path = args[1]
		}
		return t.importFile(path)
	case "ports":
		return listPorts(t.out)
	}
	usage(t.out)
	return errUsage
}

func intArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, errUsage
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%q is not a positive number", args[i])
	}
	return n, nil
}

func (t *tool) list() error {
	recs, err := t.store.LoadAll()
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(t.out, "no sequences")
		return nil
	}
	for i, r := range recs {
		loop := ""
		if r.IsLoop {
			loop = fmt.Sprintf("  loop every %ds", r.LoopInterval)
		}
		fmt.Fprintf(t.out, "%3d: %s%s\n", i+1, r.Sequence.Key(), loop)
	}
	return nil
}

func (t *tool) generate(n int) error {
	rng := t.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	for _, r := range store.Generate(n, rng) {
		if err := t.store.Save(r); err != nil {
			return err
		}
	}
	fmt.Fprintf(t.out, "added %d sequences\n", n)
	return nil
}

func (t *tool) export(path string) error {
	recs, err := t.store.LoadAll()
	if err != nil {
		return err
	}
	if err := store.WriteBank(path, recs); err != nil {
		return err
	}
	fmt.Fprintf(t.out, "wrote %d sequences to %s\n", len(recs), path)
	return nil
}

func (t *tool) importFile(path string) error {
	if path == "" {
		var err error
		if path, err = t.pick(); err != nil {
			if errors.Is(err, zenity.ErrCanceled) {
				return nil
			}
			return err
		}
	}
	recs, err := store.ReadBank(path)
	if err != nil {
		return err
	}
	added := 0
	for _, r := range recs {
		if len(r.Sequence) == 0 {
			continue
		}
		if err := t.store.Save(r); err != nil {
			return err
		}
		added++
	}
	fmt.Fprintf(t.out, "imported %d sequences from %s\n", added, path)
	return nil
}

func pickFile() (string, error) {
	return zenity.SelectFile(
		zenity.Title("Import Sequences"),
		zenity.FileFilters{{
			Name:     "Sequence banks",
			Patterns: []string{"*.yaml", "*.yml", "*.json"},
		}},
	)
}

// play runs sequence n (1-based) through the configured samples and waits
// for the last circle.
func (t *tool) play(n int) error {
	recs, err := t.store.LoadAll()
	if err != nil {
		return err
	}
	if n > len(recs) {
		return fmt.Errorf("%w: %d of %d", store.ErrIndexOutOfRange, n, len(recs))
	}
	seq := recs[n-1].Sequence
	steps := sequencer.Plan(seq)
	if len(steps) == 0 {
		fmt.Fprintf(t.out, "sequence %d is empty, nothing to play\n", n)
		return nil
	}

	player := t.player
	if player == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		bank, err := audio.LoadBank(cfg.SamplesPath())
		if err != nil {
			return err
		}
		if err := bank.Init(); err != nil {
			return err
		}
		defer bank.Close()
		bank.SetVolume(cfg.Preferences.Volume)
		player = bank
	}

	board := pad.NewBoard()
	sched := sequencer.NewScheduler(player, board, sequencer.RealTimers{})
	defer sched.Close()
	if err := sched.Play(seq, sequencer.Options{}); err != nil {
		return err
	}
	time.Sleep(steps[len(steps)-1].Delay + pad.HighlightDuration)
	fmt.Fprintf(t.out, "played %s\n", seq.Key())
	return nil
}

func resetTutorial(w io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.ResetTutorial()
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintln(w, "tutorial will show on next start")
	return nil
}

func listPorts(w io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ins, outs, err := midi.ListPorts(ctx)
	if err != nil {
		return fmt.Errorf("%w (on macOS try: sudo killall coreaudiod midiserver)", err)
	}
	fmt.Fprintln(w, "=== MIDI Input Ports ===")
	for i, p := range ins {
		fmt.Fprintf(w, "  %d: %s\n", i, p)
	}
	fmt.Fprintln(w, "\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Fprintf(w, "  %d: %s\n", i, p)
	}
	return nil
}
