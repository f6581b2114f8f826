package logging

import (
	"encoding/json"
	"fmt"
	"sync"
)

// DefaultBufferSize is the number of entries kept in memory.
const DefaultBufferSize = 1000

// Buffer is a fixed-capacity FIFO of entries. When full, the oldest entry
// is evicted. It is safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	start   int
	n       int
}

// NewBuffer creates a buffer holding at most capacity entries.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &Buffer{entries: make([]Entry, capacity)}
}

// Append adds an entry, evicting the oldest one if the buffer is full.
func (b *Buffer) Append(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := len(b.entries)
	if b.n < c {
		b.entries[(b.start+b.n)%c] = e
		b.n++
		return
	}
	b.entries[b.start] = e
	b.start = (b.start + 1) % c
}

// Entries returns a copy of the buffered entries, oldest first. A non-empty
// level keeps only entries of that level.
func (b *Buffer) Entries(level string) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Entry, 0, b.n)
	for i := 0; i < b.n; i++ {
		e := b.entries[(b.start+i)%len(b.entries)]
		if level != "" && e.Level != level {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Len returns the number of buffered entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return len(b.entries)
}

// Clear drops all entries.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.entries)
	b.start, b.n = 0, 0
}

// Export renders all entries as indented JSON.
func (b *Buffer) Export() ([]byte, error) {
	out, err := json.MarshalIndent(b.Entries(""), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to export logs: %w", err)
	}
	return out, nil
}
