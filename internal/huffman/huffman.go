package huffman

import (
	"container/heap"

	"github.com/nkoval/go-hdf4/internal/bitio"
)

const alphabetSize = 256

type node struct {
	freq        int
	id          int // insertion order, used only to make ties deterministic
	symbol      byte
	leaf        bool
	left, right *node
}

type code struct {
	bits uint64
	len  int
}

// Model is one adaptive Huffman codec instance, tracking a running
// histogram for a single byte lane.
type Model struct {
	counts [alphabetSize]int
	root   *node
	codes  [alphabetSize]code
	nextID int
}

// NewModel returns a Model with a uniform prior: every byte value
// starts with frequency 1, so any symbol can be coded on its first
// occurrence.
func NewModel() *Model {
	m := &Model{}
	for i := range m.counts {
		m.counts[i] = 1
	}
	m.rebuild()
	return m
}

// EncodeSymbol appends sym's current code to w, then folds sym into
// the histogram and rebuilds for the next symbol.
func (m *Model) EncodeSymbol(w *bitio.Writer, sym byte) {
	c := m.codes[sym]
	w.WriteBits(c.bits, c.len)
	m.observe(sym)
}

// DecodeSymbol walks the current tree bit by bit to recover one
// symbol, then folds it into the histogram the same way EncodeSymbol
// does, keeping encoder and decoder in lockstep.
func (m *Model) DecodeSymbol(r *bitio.Reader) (byte, bool) {
	n := m.root
	for !n.leaf {
		b, ok := r.ReadBit()
		if !ok {
			return 0, false
		}
		if b == 0 {
			n = n.left
		} else {
			n = n.right
		}
	}
	m.observe(n.symbol)
	return n.symbol, true
}

func (m *Model) observe(sym byte) {
	m.counts[sym]++
	m.rebuild()
}

// rebuild constructs a fresh Huffman tree from the current histogram
// and recomputes every symbol's code.
func (m *Model) rebuild() {
	pq := make(priorityQueue, 0, alphabetSize)
	m.nextID = 0
	for sym := 0; sym < alphabetSize; sym++ {
		pq = append(pq, &node{freq: m.counts[sym], id: m.nextID, symbol: byte(sym), leaf: true})
		m.nextID++
	}
	heap.Init(&pq)

	for pq.Len() > 1 {
		a := heap.Pop(&pq).(*node)
		b := heap.Pop(&pq).(*node)
		parent := &node{freq: a.freq + b.freq, id: m.nextID, left: a, right: b}
		m.nextID++
		heap.Push(&pq, parent)
	}
	m.root = pq[0]

	for i := range m.codes {
		m.codes[i] = code{}
	}
	assignCodes(m.root, 0, 0, &m.codes)
}

func assignCodes(n *node, bits uint64, length int, out *[alphabetSize]code) {
	if n.leaf {
		if length == 0 {
			// Single-symbol alphabet (should not occur with the
			// uniform prior, but stay well-defined): code is one zero bit.
			length = 1
		}
		out[n.symbol] = code{bits: bits, len: length}
		return
	}
	assignCodes(n.left, bits<<1, length+1, out)
	assignCodes(n.right, (bits<<1)|1, length+1, out)
}

type priorityQueue []*node

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].freq != pq[j].freq {
		return pq[i].freq < pq[j].freq
	}
	return pq[i].id < pq[j].id
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)   { *pq = append(*pq, x.(*node)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
