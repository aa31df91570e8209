// Package noncewindow implements the §4.6 replay guard: encryption
// nonces are 12-byte little-endian counters incremented once per
// message, and a sliding window on the receive side accepts a counter
// iff it's newer than anything seen (shifting the window forward) or
// falls inside the window and hasn't been seen yet. Counters older than
// the window's trailing edge are always rejected.
package noncewindow

import "sync"

const wordBits = 64

// Window is a single peer's (or, per §4.5, a single receiving carousel
// entry's) replay-detection state. The zero value is not usable; build
// one with New.
type Window struct {
	mu          sync.Mutex
	widthBits   int
	words       []uint64
	head        uint64
	initialized bool
}

// defaultWidthBits matches the "typically 256" width named in §4.6.
const defaultWidthBits = 256

// New builds a Window of the given bit width, rounded up to a multiple
// of 64. A width of zero falls back to defaultWidthBits.
func New(widthBits int) *Window {
	if widthBits <= 0 {
		widthBits = defaultWidthBits
	}
	numWords := (widthBits + wordBits - 1) / wordBits
	return &Window{
		widthBits: numWords * wordBits,
		words:     make([]uint64, numWords),
	}
}

// Accept reports whether counter is new — strictly newer than anything
// seen so far, or inside the window and not previously seen — and, if
// so, records it. The very first call always accepts and seeds the
// window at that counter.
func (w *Window) Accept(counter uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.initialized {
		w.initialized = true
		w.head = counter
		for i := range w.words {
			w.words[i] = 0
		}
		w.setBit(0)
		return true
	}

	if counter > w.head {
		delta := counter - w.head
		w.shift(delta)
		w.head = counter
		w.setBit(0)
		return true
	}

	diff := w.head - counter
	if diff >= uint64(w.widthBits) {
		return false
	}
	if w.testBit(int(diff)) {
		return false
	}
	w.setBit(int(diff))
	return true
}

// shift advances the window by delta counters, dropping whatever falls
// off the trailing edge. Bit index i always represents counter
// (head - i); advancing head by delta moves every existing bit i to
// i+delta.
func (w *Window) shift(delta uint64) {
	if delta >= uint64(w.widthBits) {
		for i := range w.words {
			w.words[i] = 0
		}
		return
	}

	d := int(delta)
	wordShift := d / wordBits
	bitShift := uint(d % wordBits)
	n := len(w.words)

	if wordShift > 0 {
		for i := n - 1; i >= 0; i-- {
			if i-wordShift >= 0 {
				w.words[i] = w.words[i-wordShift]
			} else {
				w.words[i] = 0
			}
		}
	}
	if bitShift > 0 {
		for i := n - 1; i >= 1; i-- {
			w.words[i] = (w.words[i] << bitShift) | (w.words[i-1] >> (wordBits - bitShift))
		}
		w.words[0] <<= bitShift
	}
}

func (w *Window) setBit(i int) {
	w.words[i/wordBits] |= 1 << uint(i%wordBits)
}

func (w *Window) testBit(i int) bool {
	return w.words[i/wordBits]&(1<<uint(i%wordBits)) != 0
}
