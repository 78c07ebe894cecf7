package fabrik

import "sync"

// DefaultSequenceStart is the counter value sequences begin at when the
// declaration does not supply one.
const DefaultSequenceStart int64 = 1

// SequenceFunc maps the counter value to the emitted value. A nil func emits
// the counter itself as an int64.
type SequenceFunc func(n int64) any

// Sequence is a monotonically increasing counter used to generate unique
// per-build values. A sequence registered globally is shared across
// factories; one declared inside a factory body is local to that factory.
// Next is safe for concurrent use.
type Sequence struct {
	mu   sync.Mutex
	next int64
	fn   SequenceFunc
}

// NewSequence returns a sequence whose first emission uses start.
func NewSequence(start int64, fn SequenceFunc) *Sequence {
	return &Sequence{next: start, fn: fn}
}

// Next advances the counter and returns the emitted value. A counter value is
// never reused within the lifetime of the sequence.
func (s *Sequence) Next() any {
	s.mu.Lock()
	n := s.next
	s.next++
	s.mu.Unlock()
	if s.fn == nil {
		return n
	}
	return s.fn(n)
}

// generator adapts the sequence into a dynamic-attribute generator.
func (s *Sequence) generator() Generator {
	return func(*BuildContext) (any, error) {
		return s.Next(), nil
	}
}
