// Package view derives the display-ready task list from the cached
// collection and the selected filter. Projection is a pure function of
// its inputs; ordering is inherited from the cache and never re-sorted.
package view

import (
	"sync"

	"github.com/taskboard/client/domain"
)

// Projection memoizes the last projected result on its exact inputs.
// It never mutates the slice it reads.
type Projection struct {
	mu         sync.Mutex
	lastTasks  []domain.Task
	lastFilter domain.Filter
	lastUser   string
	lastResult []domain.Task
	valid      bool
}

// New returns an empty projection.
func New() *Projection {
	return &Projection{}
}

// Project returns the tasks passing the filter, in cache order. The
// returned slice is the caller's to keep; repeated calls with equal
// inputs reuse the memoized computation.
func (p *Projection) Project(tasks []domain.Task, filter domain.Filter, currentUserID string) []domain.Task {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.valid && p.lastFilter == filter && p.lastUser == currentUserID && equalTasks(p.lastTasks, tasks) {
		return append([]domain.Task(nil), p.lastResult...)
	}

	result := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Matches(t, currentUserID) {
			result = append(result, t)
		}
	}

	p.lastTasks = append([]domain.Task(nil), tasks...)
	p.lastFilter = filter
	p.lastUser = currentUserID
	p.lastResult = result
	p.valid = true

	return append([]domain.Task(nil), result...)
}

func equalTasks(a, b []domain.Task) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
