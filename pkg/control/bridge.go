package control

import (
	"runtime"
	"sync/atomic"
)

const minCapacity = 256

// Bridge is a single-producer single-consumer lock-free ring queue
// carrying Commands from the control thread to the audio thread. Its
// size is a power of two and its read/write positions are tracked with
// atomic loads, stores and compare-and-swap.
type Bridge struct {
	slots    []Command
	mask     uint64
	readPos  uint64
	writePos uint64
}

// NewBridge creates a bridge sized to at least capacity commands,
// rounded up to the next power of two (minimum 256, per the teacher's
// sizing convention for worst-case UI burst absorption).
func NewBridge(capacity int) *Bridge {
	if capacity < minCapacity {
		capacity = minCapacity
	}
	size := nextPowerOf2(uint32(capacity))
	return &Bridge{
		slots: make([]Command, size),
		mask:  uint64(size) - 1,
	}
}

// Push enqueues a command from the control thread. Note-on/note-off
// commands are never dropped. When the bridge is full, pushing a
// parameter command drops the oldest queued entry if that entry is a
// parameter update; if either the new command or the oldest entry is a
// note event, Push instead spins until space frees, which is acceptable
// because the control thread is not real-time.
func (b *Bridge) Push(cmd Command) {
	for {
		writePos := atomic.LoadUint64(&b.writePos)
		readPos := atomic.LoadUint64(&b.readPos)
		used := writePos - readPos

		if used >= uint64(len(b.slots)) {
			oldest := b.slots[readPos&b.mask]
			if cmd.Kind.isNoteEvent() || oldest.Kind.isNoteEvent() {
				runtime.Gosched()
				continue
			}
			// Drop the oldest parameter update to make room.
			atomic.CompareAndSwapUint64(&b.readPos, readPos, readPos+1)
			continue
		}

		b.slots[writePos&b.mask] = cmd
		atomic.StoreUint64(&b.writePos, writePos+1)
		return
	}
}

// Drain is called once per render by the audio thread; it applies every
// queued command to handler in FIFO order and never allocates.
func (b *Bridge) Drain(handler func(Command)) {
	for {
		readPos := atomic.LoadUint64(&b.readPos)
		writePos := atomic.LoadUint64(&b.writePos)
		if readPos == writePos {
			return
		}
		cmd := b.slots[readPos&b.mask]
		atomic.StoreUint64(&b.readPos, readPos+1)
		handler(cmd)
	}
}

func nextPowerOf2(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}
