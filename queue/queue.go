// queue/queue.go
package queue

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrAlreadyQueued    = errors.New("player already in queue")
	ErrNotAuthenticated = errors.New("connection is not authenticated")
)

// Entry is one waiting player, bound to the connection it queued from.
type Entry struct {
	SessionID string
	UserID    string
	JoinedAt  time.Time
}

// Queue holds players waiting for an opponent. Pairing is strictly FIFO:
// the two entries that have waited longest are matched first. A player id
// appears at most once regardless of how many connections it holds.
type Queue struct {
	entries []*Entry
	mutex   sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{}
}

// Join appends the player. Returns ErrAlreadyQueued when the player id is
// already waiting, on this or any other connection.
func (q *Queue) Join(sessionID, userID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	q.mutex.Lock()
	defer q.mutex.Unlock()

	for _, e := range q.entries {
		if e.UserID == userID {
			return ErrAlreadyQueued
		}
	}
	q.entries = append(q.entries, &Entry{
		SessionID: sessionID,
		UserID:    userID,
		JoinedAt:  time.Now(),
	})
	return nil
}

// Leave removes the player's entry if present; no-op otherwise.
func (q *Queue) Leave(userID string) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for i, e := range q.entries {
		if e.UserID == userID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveSession drops the entry queued from the given connection, if any.
// Called on disconnect.
func (q *Queue) RemoveSession(sessionID string) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for i, e := range q.entries {
		if e.SessionID == sessionID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// PopPair removes and returns the two longest-waiting entries, or nil when
// fewer than two players wait.
func (q *Queue) PopPair() (*Entry, *Entry) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if len(q.entries) < 2 {
		return nil, nil
	}
	first, second := q.entries[0], q.entries[1]
	q.entries = q.entries[2:]
	return first, second
}

// Contains reports whether the player is currently waiting.
func (q *Queue) Contains(userID string) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for _, e := range q.entries {
		if e.UserID == userID {
			return true
		}
	}
	return false
}

func (q *Queue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.entries)
}
