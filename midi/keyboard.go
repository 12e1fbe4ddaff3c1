package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"glossolalia/debug"
)

// KeyboardController turns note-ons from any MIDI keyboard into circle taps.
// It has no LEDs.
type KeyboardController struct {
	id   string
	stop func()

	padChan  chan PadEvent
	noteChan chan NoteEvent
}

func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:       id,
		padChan:  make(chan PadEvent),
		noteChan: make(chan NoteEvent, 32),
	}
	if inPort == nil {
		return kb, nil
	}
	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, _ int32) {
		var ev NoteEvent
		if !msg.GetNoteOn(&ev.Channel, &ev.Note, &ev.Velocity) || ev.Velocity == 0 {
			return
		}
		select {
		case kb.noteChan <- ev:
		default:
			debug.Warn("keyboard", "note %d dropped", ev.Note)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	kb.stop = stop
	debug.Log("keyboard", "connected %s", id)
	return kb, nil
}

func (kb *KeyboardController) ID() string           { return kb.id }
func (kb *KeyboardController) Type() ControllerType { return ControllerKeyboard }

func (kb *KeyboardController) PadEvents() <-chan PadEvent   { return kb.padChan }
func (kb *KeyboardController) NoteEvents() <-chan NoteEvent { return kb.noteChan }

func (kb *KeyboardController) SetLEDBatch([]LEDUpdate) error { return nil }

func (kb *KeyboardController) Close() error {
	if kb.stop != nil {
		kb.stop()
	}
	close(kb.padChan)
	close(kb.noteChan)
	return nil
}
