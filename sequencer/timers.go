package sequencer

import (
	"sync"
	"time"
)

// Cancel stops a registered timer. Calling it more than once is fine.
type Cancel func()

// Timers registers future callbacks. Playback never blocks: it computes its
// steps up front and hands each one to AfterFunc.
type Timers interface {
	AfterFunc(d time.Duration, f func()) Cancel
	Every(d time.Duration, f func()) Cancel
}

// RealTimers fires callbacks on the wall clock, each on its own goroutine.
type RealTimers struct{}

func (RealTimers) AfterFunc(d time.Duration, f func()) Cancel {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

func (RealTimers) Every(d time.Duration, f func()) Cancel {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				select {
				case <-done:
					return
				default:
				}
				f()
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}
