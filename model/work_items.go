package model

// NumWorkers is fixed: the demo is about two threads racing, not a pool.
const NumWorkers = 2

// WorkItem is handed to a worker by pointer. In is the sleep length in sleep
// units, Out is what the worker leaves behind.
type WorkItem struct {
	In  int
	Out int
}

// NewWorkItems builds one item per worker from the spec inputs.
func NewWorkItems(inputs []int) [NumWorkers]*WorkItem {
	var items [NumWorkers]*WorkItem
	for i := range items {
		items[i] = &WorkItem{In: inputs[i]}
	}
	return items
}
