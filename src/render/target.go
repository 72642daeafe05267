// Package render holds the output targets the clock view writes into.
package render

import "sync"

// Target is a designated output location whose whole content is replaced on
// every render.
type Target interface {
	Replace(content string) error
}

// TargetFunc adapts a function to Target.
type TargetFunc func(content string) error

// Replace calls f(content).
func (f TargetFunc) Replace(content string) error {
	return f(content)
}

// Buffer is an in-memory Target.
type Buffer struct {
	mu      sync.RWMutex
	content string
	writes  int
}

// NewBuffer builds an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Replace overwrites the buffer content.
func (b *Buffer) Replace(content string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = content
	b.writes++
	return nil
}

// Content returns the last content written.
func (b *Buffer) Content() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content
}

// Writes returns how many times the content was replaced.
func (b *Buffer) Writes() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.writes
}
