package downloader

import "sync"

// Queue is a mutex-guarded FIFO of pending prefix groups for one batch.
//
// Pop never blocks: it either claims a group or reports the queue empty,
// so a worker pool drains itself and the pool size only bounds
// parallelism.
type Queue struct {
	mu     sync.Mutex
	groups []string
	head   int
}

// NewQueue seeds a queue with one group per value in [first, last), in
// ascending order.
func NewQueue(first, last uint32) *Queue {
	groups := make([]string, 0, last-first)
	for v := first; v < last; v++ {
		groups = append(groups, groupLabel(v))
	}
	return &Queue{groups: groups}
}

// Pop atomically claims the next group. The second return is false when
// the queue is empty.
func (q *Queue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head >= len(q.groups) {
		return "", false
	}
	group := q.groups[q.head]
	q.head++
	return group, true
}

// Len returns the number of groups not yet claimed.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.groups) - q.head
}
