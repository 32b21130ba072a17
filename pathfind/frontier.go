package pathfind

import (
	"container/heap"
	"fmt"
	"strings"

	"github.com/milk9111/gridnav/grid"
)

// Frontier selects how the open set picks the next cell to expand.
type Frontier int

const (
	// FrontierHeap orders by lowest f, then lowest heuristic, then earliest insertion.
	FrontierHeap Frontier = iota
	// FrontierLinear scans the open set and takes the first cell with the lowest f,
	// in insertion order.
	FrontierLinear
)

func (f Frontier) String() string {
	switch f {
	case FrontierHeap:
		return "heap"
	case FrontierLinear:
		return "linear"
	default:
		return fmt.Sprintf("Frontier(%d)", int(f))
	}
}

func (f Frontier) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Frontier) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "heap":
		*f = FrontierHeap
	case "linear":
		*f = FrontierLinear
	default:
		return fmt.Errorf("pathfind: unknown frontier %q", string(b))
	}
	return nil
}

// openSet is the search frontier. Every entry has a gScore in the caller.
type openSet interface {
	push(c grid.Cell, f, h int)
	// update lowers the scores of a cell already in the set.
	update(c grid.Cell, f, h int)
	pop() grid.Cell
	len() int
}

func newOpenSet(kind Frontier) openSet {
	if kind == FrontierLinear {
		return &linearOpen{byCell: make(map[grid.Cell]*linearEntry, 64)}
	}
	return &heapOpen{byCell: make(map[grid.Cell]*heapItem, 64)}
}

type linearEntry struct {
	cell grid.Cell
	f    int
}

type linearOpen struct {
	entries []*linearEntry
	byCell  map[grid.Cell]*linearEntry
}

func (o *linearOpen) push(c grid.Cell, f, _ int) {
	e := &linearEntry{cell: c, f: f}
	o.entries = append(o.entries, e)
	o.byCell[c] = e
}

func (o *linearOpen) update(c grid.Cell, f, _ int) {
	if e, ok := o.byCell[c]; ok {
		e.f = f
	}
}

func (o *linearOpen) pop() grid.Cell {
	best := 0
	for i, e := range o.entries {
		if e.f < o.entries[best].f {
			best = i
		}
	}
	e := o.entries[best]
	o.entries = append(o.entries[:best], o.entries[best+1:]...)
	delete(o.byCell, e.cell)
	return e.cell
}

func (o *linearOpen) len() int {
	return len(o.entries)
}

type heapItem struct {
	cell  grid.Cell
	f     int
	h     int
	seq   int
	index int
}

type heapQueue []*heapItem

func (q heapQueue) Len() int { return len(q) }
func (q heapQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].h != q[j].h {
		return q[i].h < q[j].h
	}
	return q[i].seq < q[j].seq
}
func (q heapQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *heapQueue) Push(x any) {
	item := x.(*heapItem)
	item.index = len(*q)
	*q = append(*q, item)
}
func (q *heapQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

type heapOpen struct {
	queue  heapQueue
	byCell map[grid.Cell]*heapItem
	seq    int
}

func (o *heapOpen) push(c grid.Cell, f, h int) {
	item := &heapItem{cell: c, f: f, h: h, seq: o.seq}
	o.seq++
	heap.Push(&o.queue, item)
	o.byCell[c] = item
}

func (o *heapOpen) update(c grid.Cell, f, h int) {
	item, ok := o.byCell[c]
	if !ok {
		return
	}
	item.f = f
	item.h = h
	heap.Fix(&o.queue, item.index)
}

func (o *heapOpen) pop() grid.Cell {
	item := heap.Pop(&o.queue).(*heapItem)
	delete(o.byCell, item.cell)
	return item.cell
}

func (o *heapOpen) len() int {
	return o.queue.Len()
}
