package output

import (
	"strings"
	"sync"
)

// Block is a run of consecutive output on one descriptor
type Block struct {
	Text       string
	Descriptor uint32
}

// Transcript is a Sink that appends to the open block while the descriptor
// stays the same and starts a new block when it changes.
type Transcript struct {
	blocks []Block
	mu     sync.Mutex
}

func (t *Transcript) Write(o Output) {
	if o.Data == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := len(t.blocks); n > 0 && t.blocks[n-1].Descriptor == o.Descriptor {
		t.blocks[n-1].Text += o.Data
		return
	}
	t.blocks = append(t.blocks, Block{Descriptor: o.Descriptor, Text: o.Data})
}

// Blocks returns a copy of the current blocks
func (t *Transcript) Blocks() []Block {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Block, len(t.blocks))
	copy(out, t.blocks)
	return out
}

func (t *Transcript) Reset() {
	t.mu.Lock()
	t.blocks = nil
	t.mu.Unlock()
}

// String joins all block text without styling
func (t *Transcript) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var b strings.Builder
	for _, blk := range t.blocks {
		b.WriteString(blk.Text)
	}
	return b.String()
}
