package audio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	gomidi "gitlab.com/gomidi/midi/v2"

	"glossolalia/debug"
)

func writeWav(t *testing.T, path string, rate beep.SampleRate) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	format := beep.Format{SampleRate: rate, NumChannels: 1, Precision: 2}
	if err := wav.Encode(f, beep.Silence(rate.N(50*time.Millisecond)), format); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestLoadBankSkipsMissingSamples(t *testing.T) {
	dir := t.TempDir()
	writeWav(t, filepath.Join(dir, "2.wav"), 44100)
	writeWav(t, filepath.Join(dir, "5.wav"), 22050)

	b, err := LoadBank(dir)
	if err != nil {
		t.Fatalf("LoadBank: %v", err)
	}
	got := b.Samples()
	if len(got) != 2 || got[0] != 2 || got[1] != 5 {
		t.Fatalf("samples = %v", got)
	}
}

func TestLoadBankEmptyDir(t *testing.T) {
	if _, err := LoadBank(t.TempDir()); err == nil {
		t.Fatalf("expected error for empty sample dir")
	}
}

func TestBankPlay(t *testing.T) {
	dir := t.TempDir()
	writeWav(t, filepath.Join(dir, "3.wav"), 44100)
	b, err := LoadBank(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := b.Play(3); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Play before Init = %v", err)
	}

	var played []beep.Streamer
	b.sink = func(s beep.Streamer) { played = append(played, s) }
	b.SetVolume(0.5)

	if err := b.Play(3); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := b.Play(3); err != nil {
		t.Fatalf("second Play: %v", err)
	}
	if len(played) != 2 || played[0] == played[1] {
		t.Fatalf("each play needs its own streamer")
	}
	if err := b.Play(7); !errors.Is(err, ErrNoSample) {
		t.Fatalf("Play(missing) = %v", err)
	}

	b.SetVolume(4)
	if b.Volume() != 1 {
		t.Fatalf("volume not clamped: %v", b.Volume())
	}
}

func TestMIDIPlayerSendsTrigger(t *testing.T) {
	var sent []gomidi.Message
	p := NewMIDIPlayer(func(m gomidi.Message) error {
		sent = append(sent, m)
		return nil
	}, 10)
	var pending []func()
	p.after = func(_ time.Duration, f func()) { pending = append(pending, f) }

	if err := p.Play(5); err != nil {
		t.Fatalf("Play: %v", err)
	}
	var ch, key, vel uint8
	if len(sent) != 1 || !sent[0].GetNoteOn(&ch, &key, &vel) {
		t.Fatalf("expected NoteOn, got %v", sent)
	}
	if ch != 9 || key != NoteFor(5) || vel == 0 {
		t.Fatalf("NoteOn ch=%d key=%d vel=%d", ch, key, vel)
	}

	pending[0]()
	if len(sent) != 2 || !sent[1].GetNoteOff(&ch, &key, &vel) || key != NoteFor(5) {
		t.Fatalf("expected NoteOff, got %v", sent)
	}

	if err := p.Play(0); !errors.Is(err, ErrNoSample) {
		t.Fatalf("Play(0) = %v", err)
	}
}

func TestMIDIPlayerLogsFailedNoteOff(t *testing.T) {
	var buf bytes.Buffer
	debug.SetOutput(&buf)
	defer debug.Disable()

	sends := 0
	p := NewMIDIPlayer(func(gomidi.Message) error {
		sends++
		if sends > 1 {
			return errors.New("port closed")
		}
		return nil
	}, 1)
	var pending []func()
	p.after = func(_ time.Duration, f func()) { pending = append(pending, f) }

	if err := p.Play(2); err != nil {
		t.Fatalf("Play: %v", err)
	}
	pending[0]()
	if !strings.Contains(buf.String(), "port closed") {
		t.Fatalf("note off failure not logged: %q", buf.String())
	}
}

type failingPlayer struct{ calls int }

func (f *failingPlayer) Play(int) error {
	f.calls++
	return errors.New("device unplugged")
}

func TestMultiPlaysAll(t *testing.T) {
	bad := &failingPlayer{}
	m := Multi{bad, Silent{}, bad}
	if err := m.Play(1); err == nil {
		t.Fatalf("expected joined error")
	}
	if bad.calls != 2 {
		t.Fatalf("calls = %d", bad.calls)
	}
}
