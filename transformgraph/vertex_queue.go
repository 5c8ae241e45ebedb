package transformgraph

import "container/heap"

// vertexItem is one tentative-distance entry in the Dijkstra frontier.
type vertexItem struct {
	name string
	dist float64
}

// vertexQueue orders the frontier by distance, breaking ties by entity name
// so equal-cost paths resolve the same way for a fixed graph state.
type vertexQueue []vertexItem

func (vq vertexQueue) Len() int { return len(vq) }

func (vq vertexQueue) Less(i, j int) bool {
	if vq[i].dist != vq[j].dist {
		return vq[i].dist < vq[j].dist
	}
	return vq[i].name < vq[j].name
}

func (vq vertexQueue) Swap(i, j int) { vq[i], vq[j] = vq[j], vq[i] }

func (vq *vertexQueue) Push(x interface{}) {
	*vq = append(*vq, x.(vertexItem))
}

func (vq *vertexQueue) Pop() interface{} {
	old := *vq
	n := len(old)
	item := old[n-1]
	*vq = old[:n-1]
	return item
}

func pushVertex(vq *vertexQueue, item vertexItem) {
	heap.Push(vq, item)
}

func popVertex(vq *vertexQueue) vertexItem {
	return heap.Pop(vq).(vertexItem)
}
