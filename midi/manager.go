package midi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register driver

	"glossolalia/debug"
)

// ErrPortsTimeout is returned when the MIDI backend does not answer a port
// listing in time (CoreMIDI can hang).
var ErrPortsTimeout = errors.New("midi port listing timed out")

const portsTimeout = 3 * time.Second

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager polls for MIDI controllers and keeps one Controller per
// recognised input port.
type DeviceManager struct {
	mu          sync.RWMutex
	controllers map[string]Controller
	events      chan DeviceEvent
	pollRate    time.Duration
	launchpads  bool
	keyboards   bool
	ignore      []string // port name substrings, e.g. the player's own output
}

func NewDeviceManager(launchpads, keyboards bool) *DeviceManager {
	return &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		launchpads:  launchpads,
		keyboards:   keyboards,
	}
}

// Ignore skips ports whose name contains s.
func (dm *DeviceManager) Ignore(s string) {
	if s != "" {
		dm.ignore = append(dm.ignore, strings.ToLower(s))
	}
}

// Events returns connect/disconnect events. Closed when Run returns.
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		out[k] = v
	}
	return out
}

// Launchpad returns the first connected Launchpad (or nil)
func (dm *DeviceManager) Launchpad() Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	for _, c := range dm.controllers {
		if c.Type() == ControllerLaunchpad {
			return c
		}
	}
	return nil
}

// Run polls until ctx is done (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	ins, outs, err := ports(ctx)
	if err != nil {
		debug.LogEvery(30, "devices", "scan skipped: %v", err)
		return
	}

	seen := make(map[string]bool)
	for _, in := range ins {
		id := in.String()
		kind := dm.classify(id)
		if kind == ControllerUnknown {
			continue
		}
		seen[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var (
			c   Controller
			err error
		)
		switch kind {
		case ControllerLaunchpad:
			c, err = NewLaunchpadController(id, in, matchingOut(id, outs))
		case ControllerKeyboard:
			c, err = NewKeyboardController(id, in)
		}
		if err != nil {
			debug.Warn("devices", "open %s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = c
		dm.mu.Unlock()
		dm.emit(ctx, DeviceEvent{Type: DeviceConnected, Controller: c, ID: id})
	}

	var gone []DeviceEvent
	dm.mu.Lock()
	for id, c := range dm.controllers {
		if !seen[id] {
			c.Close()
			delete(dm.controllers, id)
			gone = append(gone, DeviceEvent{Type: DeviceDisconnected, ID: id})
		}
	}
	dm.mu.Unlock()
	for _, ev := range gone {
		debug.Log("devices", "disconnected %s", ev.ID)
		dm.emit(ctx, ev)
	}
}

func (dm *DeviceManager) emit(ctx context.Context, ev DeviceEvent) {
	select {
	case dm.events <- ev:
	case <-ctx.Done():
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// classify decides what, if anything, to open on an input port.
func (dm *DeviceManager) classify(name string) ControllerType {
	lower := strings.ToLower(name)
	for _, s := range dm.ignore {
		if strings.Contains(lower, s) {
			return ControllerUnknown
		}
	}
	switch {
	case isLaunchpad(lower):
		if dm.launchpads {
			return ControllerLaunchpad
		}
	case isLaunchpadDAW(lower), isVirtual(lower):
	default:
		if dm.keyboards {
			return ControllerKeyboard
		}
	}
	return ControllerUnknown
}

func matchingOut(name string, outs []drivers.Out) drivers.Out {
	for _, out := range outs {
		if strings.EqualFold(out.String(), name) {
			return out
		}
	}
	return nil
}

// The Launchpad X exposes a "MIDI" port for programmer mode and a "DAW" port
// we leave alone.
func isLaunchpad(name string) bool {
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}

func isLaunchpadDAW(name string) bool {
	return strings.Contains(name, "launchpad")
}

func isVirtual(name string) bool {
	return strings.Contains(name, "through") || strings.Contains(name, "rtmidi")
}

// ports lists the driver's ports, giving up after portsTimeout.
func ports(ctx context.Context) ([]drivers.In, []drivers.Out, error) {
	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r.ins, r.outs, nil
	case <-time.After(portsTimeout):
		return nil, nil, ErrPortsTimeout
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

// ListPorts returns input and output port names.
func ListPorts(ctx context.Context) (ins, outs []string, err error) {
	inPorts, outPorts, err := ports(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range inPorts {
		ins = append(ins, p.String())
	}
	for _, p := range outPorts {
		outs = append(outs, p.String())
	}
	return ins, outs, nil
}
