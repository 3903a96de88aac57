package core

import "sync"

// DefaultPWMChannels matches the LEDC peripheral of the ESP32 (8 channels)
const DefaultPWMChannels = 8

// ChannelAllocator hands out PWM channels. There is no release path:
// a channel belongs to its output for the life of the process.
type ChannelAllocator interface {
	// Allocate returns a fresh channel, or ErrOutOfChannels when exhausted
	Allocate() (Channel, error)
}

// ChannelPool is a fixed-size ChannelAllocator that hands out ids
// 0..size-1 in order. Safe for concurrent use.
type ChannelPool struct {
	mu   sync.Mutex
	next int
	size int
}

// NewChannelPool creates a pool with size channels
func NewChannelPool(size int) *ChannelPool {
	if size < 0 {
		size = 0
	}
	return &ChannelPool{size: size}
}

// Allocate returns the next free channel
func (p *ChannelPool) Allocate() (Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.next >= p.size {
		return 0, ErrOutOfChannels
	}
	ch := Channel(p.next)
	p.next++
	return ch, nil
}

// Size returns the total number of channels in the pool
func (p *ChannelPool) Size() int {
	return p.size
}

// Available returns the number of channels not yet handed out
func (p *ChannelPool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size - p.next
}
