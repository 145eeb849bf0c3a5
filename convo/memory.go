package convo

import (
	"context"
	"sync"
)

// thread is a single correspondent's turn sequence plus its lock.
// The lock is held across the whole read-modify-write of an append so
// concurrent exchanges for the same correspondent cannot interleave.
type thread struct {
	mu    sync.Mutex
	turns []Turn
}

// MemoryStore is the in-process Store. State lives for the process
// lifetime only.
type MemoryStore struct {
	mu          sync.Mutex // guards the map, not the threads
	threads     map[string]*thread
	instruction string
	window      int
}

// NewMemoryStore creates a store whose threads begin with the given
// instruction turn and retain at most window non-instruction turns.
func NewMemoryStore(instruction string, window int) *MemoryStore {
	if window <= 0 {
		window = DefaultWindow
	}
	return &MemoryStore{
		threads:     make(map[string]*thread),
		instruction: instruction,
		window:      window,
	}
}

func (s *MemoryStore) get(correspondent string, create bool) *thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	th, ok := s.threads[correspondent]
	if !ok && create {
		th = &thread{turns: []Turn{{Role: RoleInstruction, Text: s.instruction}}}
		s.threads[correspondent] = th
	}
	return th
}

func (s *MemoryStore) Append(ctx context.Context, correspondent string, role Role, text string) error {
	th := s.get(correspondent, true)
	th.mu.Lock()
	defer th.mu.Unlock()

	th.turns = append(th.turns, Turn{Role: role, Text: text})

	// Sliding window: instruction turn plus the window latest turns.
	if len(th.turns) > s.window+1 {
		trimmed := make([]Turn, 0, s.window+1)
		trimmed = append(trimmed, th.turns[0])
		trimmed = append(trimmed, th.turns[len(th.turns)-s.window:]...)
		th.turns = trimmed
	}
	return nil
}

func (s *MemoryStore) Snapshot(ctx context.Context, correspondent string) ([]Turn, error) {
	th := s.get(correspondent, false)
	if th == nil {
		return nil, nil
	}
	th.mu.Lock()
	defer th.mu.Unlock()
	out := make([]Turn, len(th.turns))
	copy(out, th.turns)
	return out, nil
}

func (s *MemoryStore) Clear(ctx context.Context, correspondent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, correspondent)
	return nil
}
