package session

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestGetOrCreate(t *testing.T) {
	s := NewStore()

	sess, created := s.GetOrCreate("CA1", "schedule a meeting")
	if !created {
		t.Fatalf("expected created on first call")
	}
	if sess.CallID != "CA1" || sess.Purpose != "schedule a meeting" || !sess.Active {
		t.Fatalf("unexpected session: %+v", sess)
	}

	again, created := s.GetOrCreate("CA1", "different purpose")
	if created {
		t.Fatalf("expected created=false on second call")
	}
	if again != sess {
		t.Fatalf("expected same session instance")
	}
	if again.Purpose != "schedule a meeting" {
		t.Fatalf("purpose must not change on re-create: %q", again.Purpose)
	}
}

func TestAppendTurnUpdatesActivity(t *testing.T) {
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return clock }))

	s.GetOrCreate("CA1", "p")
	clock = clock.Add(time.Minute)
	s.AppendTurn("CA1", SpeakerUser, "hello")
	s.AppendTurn("CA1", SpeakerAgent, "hi there")

	sess := s.Get("CA1")
	if len(sess.History) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(sess.History))
	}
	if sess.History[0].Speaker != SpeakerUser || sess.History[1].Speaker != SpeakerAgent {
		t.Fatalf("unexpected turn order: %+v", sess.History)
	}
	if !sess.LastActivityAt.Equal(clock) {
		t.Fatalf("last activity not bumped: %v", sess.LastActivityAt)
	}
}

func TestAppendTurnMissingSessionIsNoop(t *testing.T) {
	s := NewStore()
	s.AppendTurn("missing", SpeakerUser, "hello")
	if s.Len() != 0 {
		t.Fatalf("no session should be created by AppendTurn")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := NewStore()
	s.GetOrCreate("CA1", "p")

	sess := s.Remove("CA1")
	if sess == nil {
		t.Fatalf("expected session from first remove")
	}
	if sess.Active {
		t.Fatalf("removed session must be inactive")
	}
	if s.Remove("CA1") != nil {
		t.Fatalf("second remove must return nil")
	}
	if s.Get("CA1") != nil {
		t.Fatalf("session still present after remove")
	}
}

func TestSetPurpose(t *testing.T) {
	s := NewStore()
	if s.SetPurpose("missing", "x") {
		t.Fatalf("expected false for absent session")
	}
	s.GetOrCreate("CA1", "old")
	if !s.SetPurpose("CA1", "new") {
		t.Fatalf("expected true for live session")
	}
	if got := s.Get("CA1").Purpose; got != "new" {
		t.Fatalf("purpose not updated: %q", got)
	}
}

func TestSnapshot(t *testing.T) {
	s := NewStore()
	s.GetOrCreate("CA1", "p")
	s.AppendTurn("CA1", SpeakerUser, "hello")

	snap, ok := s.Snapshot("CA1", false)
	if !ok {
		t.Fatalf("expected snapshot")
	}
	if snap.TurnCount != 1 || snap.History != nil {
		t.Fatalf("history must be omitted: %+v", snap)
	}

	snap, _ = s.Snapshot("CA1", true)
	if len(snap.History) != 1 {
		t.Fatalf("expected history copy, got %+v", snap.History)
	}

	// The copy must not alias live history.
	snap.History[0].Text = "mutated"
	if s.Get("CA1").History[0].Text != "hello" {
		t.Fatalf("snapshot aliases live history")
	}

	if _, ok := s.Snapshot("missing", false); ok {
		t.Fatalf("expected no snapshot for absent session")
	}
}

func TestEvictIdle(t *testing.T) {
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return clock }))

	s.GetOrCreate("stale", "p")
	clock = clock.Add(time.Hour)
	s.GetOrCreate("fresh", "p")

	evicted := s.EvictIdle(30 * time.Minute)
	if len(evicted) != 1 || evicted[0].CallID != "stale" {
		t.Fatalf("unexpected eviction set: %+v", evicted)
	}
	if s.Get("stale") != nil || s.Get("fresh") == nil {
		t.Fatalf("wrong sessions evicted")
	}

	if got := s.EvictIdle(0); got != nil {
		t.Fatalf("ttl<=0 must evict nothing, got %+v", got)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("CA%d", i%8)
			s.GetOrCreate(id, "p")
			s.AppendTurn(id, SpeakerUser, "hello")
			s.Touch(id)
			s.Snapshot(id, true)
			if i%4 == 0 {
				s.Remove(id)
			}
		}(i)
	}
	wg.Wait()

	if got := s.Len(); got != len(s.CallIDs()) {
		t.Fatalf("Len and CallIDs disagree: %d vs %d", got, len(s.CallIDs()))
	}
}
