// Package store persists saved sequences.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"glossolalia/sequencer"
)

// DefaultLoopInterval in seconds
const DefaultLoopInterval = 3

// Record is a saved sequence with its loop settings. Older saves stored a
// bare index array; both shapes decode into a Record.
type Record struct {
	Sequence     sequencer.Sequence `json:"sequence" yaml:"sequence"`
	IsLoop       bool               `json:"isLoop" yaml:"isLoop"`
	LoopInterval int                `json:"loopInterval" yaml:"loopInterval"` // seconds
}

// NewRecord builds a normalized record.
func NewRecord(seq sequencer.Sequence, isLoop bool, interval int) Record {
	r := Record{Sequence: seq.Clone(), IsLoop: isLoop, LoopInterval: interval}
	r.normalize()
	return r
}

func (r *Record) normalize() {
	if r.LoopInterval <= 0 {
		r.LoopInterval = DefaultLoopInterval
	}
	if r.Sequence == nil {
		r.Sequence = sequencer.Sequence{}
	}
}

// Interval returns the loop interval as a duration.
func (r Record) Interval() time.Duration {
	if r.LoopInterval <= 0 {
		return DefaultLoopInterval * time.Second
	}
	return time.Duration(r.LoopInterval) * time.Second
}

// wire shape accepted on decode: "seq" was used by some saves
type recordWire struct {
	Sequence     sequencer.Sequence `json:"sequence" yaml:"sequence"`
	Seq          sequencer.Sequence `json:"seq" yaml:"seq"`
	IsLoop       bool               `json:"isLoop" yaml:"isLoop"`
	LoopInterval int                `json:"loopInterval" yaml:"loopInterval"`
}

func (w recordWire) record() Record {
	r := Record{Sequence: w.Sequence, IsLoop: w.IsLoop, LoopInterval: w.LoopInterval}
	if r.Sequence == nil {
		r.Sequence = w.Seq
	}
	r.normalize()
	return r
}

func (r *Record) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var seq sequencer.Sequence
		if err := json.Unmarshal(data, &seq); err != nil {
			return fmt.Errorf("legacy sequence: %w", err)
		}
		*r = NewRecord(seq, false, DefaultLoopInterval)
		return nil
	}
	var w recordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = w.record()
	return nil
}

func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var seq sequencer.Sequence
		if err := node.Decode(&seq); err != nil {
			return fmt.Errorf("legacy sequence: %w", err)
		}
		*r = NewRecord(seq, false, DefaultLoopInterval)
		return nil
	}
	var w recordWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	*r = w.record()
	return nil
}
