package services

import (
	"sort"
	"sync"
)

// subjectLocks serializes check-then-append sequences per subject
// profile. Two concurrent redemptions against the same consumer must
// not both pass the balance check; holding the subject's mutex across
// the read and the insert closes that window. Locks for distinct
// subjects do not contend.
type subjectLocks struct {
	locks sync.Map // profileID -> *sync.Mutex
}

// lock acquires the mutexes for the given subjects in sorted order (so
// crossing transfers cannot deadlock) and returns a release function.
func (l *subjectLocks) lock(profileIDs ...string) func() {
	ids := make([]string, len(profileIDs))
	copy(ids, profileIDs)
	sort.Strings(ids)

	held := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		v, _ := l.locks.LoadOrStore(id, &sync.Mutex{})
		mu := v.(*sync.Mutex)
		mu.Lock()
		held = append(held, mu)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
