// Package audio provides the sample players the scheduler triggers.
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"

	"glossolalia/debug"
	"glossolalia/sequencer"
)

const (
	// NumSamples is how many numbered samples a bank holds (1-9)
	NumSamples = 9

	resampleQuality = 4
)

var (
	ErrNoSample       = errors.New("sample not loaded")
	ErrNotInitialized = errors.New("audio output not initialized")
)

// Format all samples are converted to
var Format = beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}

// Player is what the scheduler triggers.
type Player = sequencer.Player

// Bank holds decoded samples in memory so every Play starts from the
// beginning of a fresh streamer and overlapping plays mix.
type Bank struct {
	mu      sync.RWMutex
	buffers map[int]*beep.Buffer
	volume  float64
	sink    func(beep.Streamer)
}

func NewBank() *Bank {
	return &Bank{
		buffers: make(map[int]*beep.Buffer),
		volume:  1,
	}
}

// LoadBank decodes 1.mp3 .. 9.mp3 (or .wav) from dir. Missing files are
// skipped; a directory with no samples at all is an error.
func LoadBank(dir string) (*Bank, error) {
	b := NewBank()
	for n := 1; n <= NumSamples; n++ {
		path, ok := findSample(dir, n)
		if !ok {
			debug.Warn("audio", "no sample %d in %s", n, dir)
			continue
		}
		if err := b.Load(n, path); err != nil {
			return nil, err
		}
	}
	if len(b.buffers) == 0 {
		return nil, fmt.Errorf("no samples found in %s", dir)
	}
	return b, nil
}

func findSample(dir string, n int) (string, bool) {
	for _, ext := range []string{".mp3", ".wav", ".MP3", ".WAV"} {
		path := filepath.Join(dir, fmt.Sprintf("%d%s", n, ext))
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// Load decodes one file into slot n.
func (b *Bank) Load(n int, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		f.Close()
		return fmt.Errorf("unsupported sample type: %s", path)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("decode %s: %w", path, err)
	}
	defer streamer.Close()

	var src beep.Streamer = streamer
	if format.SampleRate != Format.SampleRate {
		src = beep.Resample(resampleQuality, format.SampleRate, Format.SampleRate, streamer)
	}

	buf := beep.NewBuffer(Format)
	buf.Append(src)

	b.mu.Lock()
	b.buffers[n] = buf
	b.mu.Unlock()

	debug.Log("audio", "loaded sample %d from %s (%d frames)", n, path, buf.Len())
	return nil
}

// Init opens the speaker and routes playback to it.
func (b *Bank) Init() error {
	if err := speaker.Init(Format.SampleRate, Format.SampleRate.N(time.Second/20)); err != nil {
		return err
	}
	b.mu.Lock()
	b.sink = func(s beep.Streamer) { speaker.Play(s) }
	b.mu.Unlock()
	return nil
}

// SetVolume sets the linear volume, 0-1.
func (b *Bank) SetVolume(v float64) {
	b.mu.Lock()
	b.volume = min(max(v, 0), 1)
	b.mu.Unlock()
}

// Volume returns the linear volume.
func (b *Bank) Volume() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.volume
}

// Samples lists the loaded slots.
func (b *Bank) Samples() []int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]int, 0, len(b.buffers))
	for n := range b.buffers {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Play starts sample n from its beginning.
func (b *Bank) Play(n int) error {
	b.mu.RLock()
	buf := b.buffers[n]
	sink := b.sink
	vol := b.volume
	b.mu.RUnlock()

	if buf == nil {
		return fmt.Errorf("%w: %d", ErrNoSample, n)
	}
	if sink == nil {
		return ErrNotInitialized
	}

	sink(&effects.Volume{
		Streamer: buf.Streamer(0, buf.Len()),
		Base:     2,
		Volume:   math.Log2(max(vol, 1e-6)),
		Silent:   vol <= 0,
	})
	return nil
}

// Close silences anything still playing.
func (b *Bank) Close() {
	b.mu.RLock()
	live := b.sink != nil
	b.mu.RUnlock()
	if live {
		speaker.Clear()
	}
}
