package audio

import (
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"glossolalia/debug"
)

const (
	// BaseNote is the MIDI note of sample 0; sample 5 (center) lands on 65.
	BaseNote      = 60
	noteVelocity  = 100
	defaultGate   = 120 * time.Millisecond
	defaultMIDICh = 1
)

// MIDIPlayer triggers a note per sample on a MIDI output instead of playing
// audio itself.
type MIDIPlayer struct {
	send    func(gomidi.Message) error
	channel uint8 // 1-16
	gate    time.Duration
	after   func(time.Duration, func())
}

// OpenMIDIPlayer opens the named output port.
func OpenMIDIPlayer(portName string, channel uint8) (*MIDIPlayer, error) {
	out, err := gomidi.FindOutPort(portName)
	if err != nil {
		return nil, fmt.Errorf("find output %q: %w", portName, err)
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output %q: %w", portName, err)
	}
	return NewMIDIPlayer(send, channel), nil
}

// NewMIDIPlayer wraps a send function.
func NewMIDIPlayer(send func(gomidi.Message) error, channel uint8) *MIDIPlayer {
	if channel < 1 || channel > 16 {
		channel = defaultMIDICh
	}
	return &MIDIPlayer{
		send:    send,
		channel: channel,
		gate:    defaultGate,
		after:   func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// NoteFor maps a sample number to its MIDI note.
func NoteFor(sample int) uint8 {
	return uint8(BaseNote + sample)
}

// Play sends NoteOn now and NoteOff after the gate time.
func (p *MIDIPlayer) Play(sample int) error {
	if sample < 1 || sample > NumSamples {
		return fmt.Errorf("%w: %d", ErrNoSample, sample)
	}
	ch := p.channel - 1
	note := NoteFor(sample)
	if err := p.send(gomidi.NoteOn(ch, note, noteVelocity)); err != nil {
		return err
	}
	p.after(p.gate, func() {
		if err := p.send(gomidi.NoteOff(ch, note)); err != nil {
			debug.Warn("audio", "note off %d: %v", note, err)
		}
	})
	return nil
}
