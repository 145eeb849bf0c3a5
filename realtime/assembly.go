package realtime

import "errors"

// ErrAssemblyFull is returned when the response buffer exceeds its cap.
var ErrAssemblyFull = errors.New("response audio buffer full")

// assembly accumulates audio-delta payloads in receipt order. Receipt
// order is the only ordering signal the protocol gives; there are no
// sequence numbers. Used by a single exchange goroutine, so no lock.
type assembly struct {
	chunks    [][]byte
	totalSize int
	maxSize   int
}

func newAssembly(maxSize int) *assembly {
	return &assembly{maxSize: maxSize}
}

func (a *assembly) append(chunk []byte) error {
	if a.maxSize > 0 && a.totalSize+len(chunk) > a.maxSize {
		return ErrAssemblyFull
	}
	a.chunks = append(a.chunks, chunk)
	a.totalSize += len(chunk)
	return nil
}

func (a *assembly) size() int { return a.totalSize }

// bytes concatenates all chunks in received order.
func (a *assembly) bytes() []byte {
	out := make([]byte, 0, a.totalSize)
	for _, chunk := range a.chunks {
		out = append(out, chunk...)
	}
	return out
}
