package roadgraph

import (
	"container/heap"
)

// frontierEntry is a tentative label of intersection: how it has been reached and at what cost
type frontierEntry struct {
	node    int
	parent  int
	segment int
	g       float64
	f       float64
	seq     uint64
}

// frontier is a min-heap ordered by f. Equal f values keep insertion order.
type frontier struct {
	entries []frontierEntry
	seq     uint64
}

func (fr *frontier) Len() int { return len(fr.entries) }

func (fr *frontier) Less(i, j int) bool {
	if fr.entries[i].f == fr.entries[j].f {
		return fr.entries[i].seq < fr.entries[j].seq
	}
	return fr.entries[i].f < fr.entries[j].f
}

func (fr *frontier) Swap(i, j int) {
	fr.entries[i], fr.entries[j] = fr.entries[j], fr.entries[i]
}

func (fr *frontier) Push(x interface{}) {
	fr.entries = append(fr.entries, x.(frontierEntry))
}

func (fr *frontier) Pop() interface{} {
	old := fr.entries
	n := len(old)
	entry := old[n-1]
	fr.entries = old[:n-1]
	return entry
}

func (fr *frontier) reset() {
	fr.entries = fr.entries[:0]
	fr.seq = 0
}

func (fr *frontier) push(entry frontierEntry) {
	entry.seq = fr.seq
	fr.seq++
	heap.Push(fr, entry)
}

func (fr *frontier) pop() frontierEntry {
	return heap.Pop(fr).(frontierEntry)
}
