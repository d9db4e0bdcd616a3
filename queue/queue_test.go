package queue

import (
	"fmt"
	"testing"
)

func TestQueue_JoinAndPopPair_FIFO(t *testing.T) {
	q := NewQueue()

	for i, userID := range []string{"alice", "bob", "carol", "dave"} {
		if err := q.Join(fmt.Sprintf("sess%d", i+1), userID); err != nil {
			t.Fatalf("Join(%s) failed: %v", userID, err)
		}
	}

	if q.Len() != 4 {
		t.Fatalf("Expected queue length 4, got %d", q.Len())
	}

	first, second := q.PopPair()
	if first == nil || second == nil {
		t.Fatal("PopPair should return a pair with 4 players waiting")
	}
	if first.UserID != "alice" || second.UserID != "bob" {
		t.Errorf("Pairing should be FIFO, got %s and %s", first.UserID, second.UserID)
	}

	first, second = q.PopPair()
	if first.UserID != "carol" || second.UserID != "dave" {
		t.Errorf("Second pair should be carol and dave, got %s and %s", first.UserID, second.UserID)
	}

	if q.Len() != 0 {
		t.Errorf("Expected empty queue after popping both pairs, got %d", q.Len())
	}
}

func TestQueue_PopPair_NotEnoughPlayers(t *testing.T) {
	q := NewQueue()

	if first, second := q.PopPair(); first != nil || second != nil {
		t.Error("PopPair on an empty queue should return nil, nil")
	}

	q.Join("sess1", "alice")
	if first, second := q.PopPair(); first != nil || second != nil {
		t.Error("PopPair with a single player should return nil, nil")
	}
	if q.Len() != 1 {
		t.Errorf("A failed PopPair should not consume the waiting player, length is %d", q.Len())
	}
}

func TestQueue_Join_Duplicate(t *testing.T) {
	q := NewQueue()

	if err := q.Join("sess1", "alice"); err != nil {
		t.Fatalf("First Join failed: %v", err)
	}

	if err := q.Join("sess1", "alice"); err != ErrAlreadyQueued {
		t.Errorf("Expected ErrAlreadyQueued for a repeat join, got %v", err)
	}

	// Same player from a different connection is still a duplicate.
	if err := q.Join("sess2", "alice"); err != ErrAlreadyQueued {
		t.Errorf("Expected ErrAlreadyQueued from a second connection, got %v", err)
	}

	if q.Len() != 1 {
		t.Errorf("Duplicate joins must not grow the queue, length is %d", q.Len())
	}
}

func TestQueue_Join_Unauthenticated(t *testing.T) {
	q := NewQueue()
	if err := q.Join("sess1", ""); err != ErrNotAuthenticated {
		t.Errorf("Expected ErrNotAuthenticated for empty user id, got %v", err)
	}
}

func TestQueue_Leave(t *testing.T) {
	q := NewQueue()
	q.Join("sess1", "alice")
	q.Join("sess2", "bob")

	if !q.Leave("alice") {
		t.Error("Leave should report true for a waiting player")
	}
	if q.Contains("alice") {
		t.Error("Player should be gone after Leave")
	}
	if q.Leave("alice") {
		t.Error("Leave should report false when the player is not waiting")
	}
	if q.Len() != 1 {
		t.Errorf("Expected 1 remaining entry, got %d", q.Len())
	}
}

func TestQueue_RemoveSession(t *testing.T) {
	q := NewQueue()
	q.Join("sess1", "alice")
	q.Join("sess2", "bob")

	if !q.RemoveSession("sess1") {
		t.Error("RemoveSession should report true for a queued connection")
	}
	if q.Contains("alice") {
		t.Error("The disconnected player's entry should be gone")
	}
	if q.RemoveSession("sess1") {
		t.Error("RemoveSession should report false for an unknown connection")
	}
	if !q.Contains("bob") {
		t.Error("Other entries must survive RemoveSession")
	}
}
