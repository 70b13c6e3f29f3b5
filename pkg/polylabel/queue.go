package polylabel

import "container/heap"

// cellQueue is a max-priority frontier of unexpanded cells ordered by their
// upper bound. Ties between equal-max cells break by heap order, which is
// arbitrary; the precision-bounded pruning rule makes the final answer
// independent of expansion order.
type cellQueue struct {
	cells []*cell
}

func newCellQueue() *cellQueue {
	q := &cellQueue{}
	heap.Init(q)
	return q
}

func (q *cellQueue) push(c *cell) { heap.Push(q, c) }

func (q *cellQueue) pop() *cell { return heap.Pop(q).(*cell) }

// heap.Interface

func (q *cellQueue) Len() int           { return len(q.cells) }
func (q *cellQueue) Less(i, j int) bool { return q.cells[i].max > q.cells[j].max }
func (q *cellQueue) Swap(i, j int)      { q.cells[i], q.cells[j] = q.cells[j], q.cells[i] }

func (q *cellQueue) Push(x any) { q.cells = append(q.cells, x.(*cell)) }

func (q *cellQueue) Pop() any {
	old := q.cells
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	q.cells = old[:n-1]
	return c
}
