package comm

import "log"

// A Buffer is a fifo queue for messages. Buffers are not safe for concurrent
// use; the owner is responsible for locking.
type Buffer interface {
	Name() string
	CanPush() bool
	Push(msg Msg)
	Pop() Msg
	Peek() Msg
	Capacity() int
	Size() int
}

// NewBuffer creates a default buffer object.
func NewBuffer(name string, capacity int) Buffer {
	if capacity <= 0 {
		log.Panicf("buffer %s must have a positive capacity", name)
	}

	return &bufferImpl{
		name:     name,
		capacity: capacity,
	}
}

type bufferImpl struct {
	name     string
	capacity int
	elements []Msg
}

func (b *bufferImpl) Name() string {
	return b.name
}

func (b *bufferImpl) CanPush() bool {
	return len(b.elements) < b.capacity
}

func (b *bufferImpl) Push(msg Msg) {
	if len(b.elements) >= b.capacity {
		log.Panic("buffer overflow")
	}

	b.elements = append(b.elements, msg)
}

func (b *bufferImpl) Pop() Msg {
	if len(b.elements) == 0 {
		return nil
	}

	msg := b.elements[0]
	b.elements[0] = nil
	b.elements = b.elements[1:]

	return msg
}

func (b *bufferImpl) Peek() Msg {
	if len(b.elements) == 0 {
		return nil
	}

	return b.elements[0]
}

func (b *bufferImpl) Capacity() int {
	return b.capacity
}

func (b *bufferImpl) Size() int {
	return len(b.elements)
}
