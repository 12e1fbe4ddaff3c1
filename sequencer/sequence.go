package sequencer

import (
	"strconv"
	"strings"
)

// Sequence is an ordered list of circle indices, a savable "word".
type Sequence []int

// Key serializes the sequence the same way its stored JSON looks. Two
// sequences with equal keys are the same loop.
func (s Sequence) Key() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	b.WriteByte(']')
	return b.String()
}

// Equal compares by value.
func (s Sequence) Equal(o Sequence) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}
