package audio

import "errors"

// Silent accepts every sample and plays nothing.
type Silent struct{}

func (Silent) Play(int) error { return nil }

// Multi plays each sample on every player. One failing player does not stop
// the others.
type Multi []Player

func (m Multi) Play(sample int) error {
	var errs []error
	for _, p := range m {
		if err := p.Play(sample); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
