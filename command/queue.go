// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package command

import "sync"

// Queue collects finished lists from recording goroutines for
// execution on the device thread.
type Queue struct {
	mu    sync.Mutex
	lists []*List
	draws int
}

// Submit appends list to the queue.
func (q *Queue) Submit(list *List) {
	if list == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.lists = append(q.lists, list)
	q.draws += list.DrawCallCount()
}

// TotalDrawCalls returns the number of draws in all queued lists.
func (q *Queue) TotalDrawCalls() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.draws
}

// Len returns the number of queued lists.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lists)
}

// Drain empties the queue and returns its lists in submission order.
func (q *Queue) Drain() []*List {
	q.mu.Lock()
	defer q.mu.Unlock()
	lists := q.lists
	q.lists = nil
	q.draws = 0
	return lists
}
