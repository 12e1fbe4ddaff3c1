package store

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"glossolalia/pad"
	"glossolalia/sequencer"
)

// Bank is a portable export of saved sequences.
type Bank struct {
	Sequences []Record `json:"sequences" yaml:"sequences"`
}

// ExportYAML writes records as a YAML bank.
func ExportYAML(w io.Writer, recs []Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Bank{Sequences: recs}); err != nil {
		return err
	}
	return enc.Close()
}

// ImportYAML reads a YAML bank.
func ImportYAML(r io.Reader) ([]Record, error) {
	var b Bank
	if err := yaml.NewDecoder(r).Decode(&b); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	return b.Sequences, nil
}

// ExportJSON writes records as a JSON bank.
func ExportJSON(w io.Writer, recs []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Bank{Sequences: recs})
}

// ImportJSON reads a JSON bank. A bare array of records (or of legacy index
// arrays) is accepted too.
func ImportJSON(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var recs []Record
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, err
		}
		return recs, nil
	}
	var b Bank
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return b.Sequences, nil
}

// WriteBank exports to path, picking the format from its extension.
func WriteBank(path string, recs []Record) error {
	var export func(io.Writer, []Record) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		export = ExportYAML
	case ".json":
		export = ExportJSON
	default:
		return fmt.Errorf("unsupported bank format: %s", filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export(f, recs); err != nil {
		return err
	}
	return f.Close()
}

// ReadBank imports from path, picking the format from its extension.
func ReadBank(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ImportYAML(f)
	case ".json":
		return ImportJSON(f)
	}
	return nil, fmt.Errorf("unsupported bank format: %s", filepath.Ext(path))
}

// Generate makes n random records of 1-8 distinct circles each.
func Generate(n int, rng *rand.Rand) []Record {
	out := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		size := rng.Intn(8) + 1
		perm := rng.Perm(pad.NumCircles)[:size]
		out = append(out, NewRecord(sequencer.Sequence(perm), false, DefaultLoopInterval))
	}
	return out
}
