package midi

import (
	"fmt"
	"sync/atomic"

	"github.com/lucasb-eyer/go-colorful"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"glossolalia/debug"
)

// Launchpad X programmer-mode messages (without the F0/F7 framing)
var (
	sysexProgrammerMode = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}
	sysexMaxBrightness  = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}
	sysexLiveMode       = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x00}
)

// LaunchpadController drives a Novation Launchpad X as a second pad surface.
type LaunchpadController struct {
	id    string
	send  func(msg gomidi.Message) error
	stop  func()
	sends atomic.Uint64

	padChan  chan PadEvent
	noteChan chan NoteEvent
}

// NewLaunchpadController switches the device to programmer mode and starts
// listening for pad presses. Either port may be nil.
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out) (*LaunchpadController, error) {
	lp := &LaunchpadController{
		id:       id,
		padChan:  make(chan PadEvent, 32),
		noteChan: make(chan NoteEvent),
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send
		for _, msg := range [][]byte{sysexProgrammerMode, sysexMaxBrightness} {
			if err := send(gomidi.SysEx(msg)); err != nil {
				debug.Warn("launchpad", "%s: sysex failed: %v", id, err)
			}
		}
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, lp.handle)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stop = stop
	}

	debug.Log("launchpad", "connected %s", id)
	return lp, nil
}

func (lp *LaunchpadController) handle(msg gomidi.Message, _ int32) {
	var channel, note, velocity uint8
	if !msg.GetNoteOn(&channel, &note, &velocity) || velocity == 0 {
		return
	}
	row, col, ok := noteToRowCol(note)
	if !ok {
		return
	}
	select {
	case lp.padChan <- PadEvent{Row: row, Col: col, Velocity: velocity}:
	default:
		debug.Warn("launchpad", "pad event dropped (%d,%d)", row, col)
	}
}

func (lp *LaunchpadController) ID() string           { return lp.id }
func (lp *LaunchpadController) Type() ControllerType { return ControllerLaunchpad }

func (lp *LaunchpadController) PadEvents() <-chan PadEvent   { return lp.padChan }
func (lp *LaunchpadController) NoteEvents() <-chan NoteEvent { return lp.noteChan }

// SetLEDBatch sends one NoteOn per update.
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}
	for _, u := range updates {
		if err := lp.send(gomidi.NoteOn(u.Channel, rowColToNote(u.Row, u.Col), paletteIndex(u.Color))); err != nil {
			return err
		}
	}
	n := lp.sends.Add(uint64(len(updates)))
	if n%100 < uint64(len(updates)) {
		debug.Log("launchpad", "%d LED messages sent", n)
	}
	return nil
}

// Close blanks the grid and hands the device back to live mode.
func (lp *LaunchpadController) Close() error {
	if lp.send != nil {
		var updates []LEDUpdate
		for row := 0; row < 8; row++ {
			for col := 0; col < 8; col++ {
				updates = append(updates, LEDUpdate{Row: row, Col: col})
			}
		}
		lp.SetLEDBatch(updates)
		lp.send(gomidi.SysEx(sysexLiveMode))
	}
	if lp.stop != nil {
		lp.stop()
	}
	close(lp.padChan)
	close(lp.noteChan)
	return nil
}

// Launchpad X palette entries used for pad colors: velocity -> RGB
var launchpadPalette = []struct {
	velocity uint8
	rgb      [3]uint8
}{
	{0, [3]uint8{0, 0, 0}},
	{1, [3]uint8{30, 30, 30}},
	{2, [3]uint8{127, 127, 127}},
	{3, [3]uint8{255, 255, 255}},
	{5, [3]uint8{255, 0, 0}},
	{6, [3]uint8{255, 80, 80}},
	{7, [3]uint8{90, 20, 20}},
	{9, [3]uint8{255, 100, 0}},
	{13, [3]uint8{255, 200, 0}},
	{21, [3]uint8{0, 255, 0}},
	{37, [3]uint8{0, 200, 200}},
	{43, [3]uint8{40, 60, 120}},
	{45, [3]uint8{0, 100, 255}},
	{53, [3]uint8{255, 80, 180}},
	{57, [3]uint8{255, 107, 107}},
	{119, [3]uint8{255, 255, 255}},
}

// paletteIndex picks the perceptually closest palette velocity.
func paletteIndex(rgb [3]uint8) uint8 {
	if rgb == ([3]uint8{}) {
		return 0
	}
	want := toColorful(rgb)
	best, bestDist := uint8(0), 1e9
	for _, p := range launchpadPalette {
		if d := want.DistanceLab(toColorful(p.rgb)); d < bestDist {
			best, bestDist = p.velocity, d
		}
	}
	return best
}

func toColorful(rgb [3]uint8) colorful.Color {
	return colorful.Color{R: float64(rgb[0]) / 255, G: float64(rgb[1]) / 255, B: float64(rgb[2]) / 255}
}

// Programmer mode numbering: row 0 (bottom) is notes 11-18, row 7 is 81-88.
func rowColToNote(row, col int) uint8 {
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int, ok bool) {
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row > 7 || col < 0 || col > 7 {
		return 0, 0, false
	}
	return row, col, true
}
