package session

import (
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 16

// Store owns the lifecycle of all call sessions. It is sharded by call ID so
// operations on unrelated calls never contend on one lock.
//
// Rules:
// - Sessions are created lazily on the first webhook for a call ID.
// - Removal is idempotent; terminal-status and speech callbacks can race.
// - No network or disk access; every operation is map work only.
type Store struct {
	shards [shardCount]shard

	now func() time.Time
}

type shard struct {
	mu       sync.Mutex
	sessions map[string]*CallSession
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source. Tests use this for deterministic
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for i := range s.shards {
		s.shards[i].sessions = make(map[string]*CallSession)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) shardFor(callID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(callID))
	return &s.shards[h.Sum32()%shardCount]
}

// GetOrCreate returns the session for callID, creating it if absent.
// created is true for exactly one caller per call ID lifetime.
func (s *Store) GetOrCreate(callID, purpose string) (*CallSession, bool) {
	sh := s.shardFor(callID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if sess, ok := sh.sessions[callID]; ok {
		return sess, false
	}
	now := s.now()
	sess := &CallSession{
		CallID:         callID,
		Purpose:        purpose,
		History:        nil,
		Active:         true,
		StartedAt:      now,
		LastActivityAt: now,
	}
	sh.sessions[callID] = sess
	return sess, true
}

// Get returns the session for callID, or nil if absent.
func (s *Store) Get(callID string) *CallSession {
	sh := s.shardFor(callID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.sessions[callID]
}

// AppendTurn records one utterance. A missing session is a silent no-op:
// turns may arrive after a racing termination.
func (s *Store) AppendTurn(callID string, speaker Speaker, text string) {
	sh := s.shardFor(callID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[callID]
	if !ok {
		return
	}
	now := s.now()
	sess.History = append(sess.History, Turn{Speaker: speaker, Text: text, At: now})
	sess.LastActivityAt = now
}

// Touch bumps LastActivityAt without recording a turn.
func (s *Store) Touch(callID string) {
	sh := s.shardFor(callID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sess, ok := sh.sessions[callID]; ok {
		sess.LastActivityAt = s.now()
	}
}

// SetPurpose overrides a live session's purpose. Returns false if the
// session is absent.
func (s *Store) SetPurpose(callID, purpose string) bool {
	sh := s.shardFor(callID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sess, ok := sh.sessions[callID]
	if !ok {
		return false
	}
	sess.Purpose = purpose
	return true
}

// Remove deletes the session for callID and returns it, or nil if absent.
// Removing an absent key is a no-op, not an error.
func (s *Store) Remove(callID string) *CallSession {
	sh := s.shardFor(callID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sess, ok := sh.sessions[callID]
	if !ok {
		return nil
	}
	sess.Active = false
	delete(sh.sessions, callID)
	return sess
}

// Len reports the number of active sessions.
func (s *Store) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		n += len(sh.sessions)
		sh.mu.Unlock()
	}
	return n
}

// CallIDs lists the IDs of all active sessions.
func (s *Store) CallIDs() []string {
	out := make([]string, 0)
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for id := range sh.sessions {
			out = append(out, id)
		}
		sh.mu.Unlock()
	}
	return out
}

// Snapshot copies a session for read-only inspection. The second return is
// false if the session is absent.
func (s *Store) Snapshot(callID string, withHistory bool) (Snapshot, bool) {
	sh := s.shardFor(callID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[callID]
	if !ok {
		return Snapshot{}, false
	}
	snap := Snapshot{
		CallID:         sess.CallID,
		Purpose:        sess.Purpose,
		Active:         sess.Active,
		TurnCount:      len(sess.History),
		StartedAt:      sess.StartedAt,
		LastActivityAt: sess.LastActivityAt,
	}
	if withHistory {
		snap.History = append([]Turn(nil), sess.History...)
	}
	return snap, true
}

// EvictIdle removes sessions whose LastActivityAt is older than ttl and
// returns the evicted sessions. Guards against status callbacks lost by the
// network; callers decide what to do with the corpses (summary, call log).
func (s *Store) EvictIdle(ttl time.Duration) []*CallSession {
	if ttl <= 0 {
		return nil
	}
	cutoff := s.now().Add(-ttl)
	var evicted []*CallSession
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for id, sess := range sh.sessions {
			if sess.LastActivityAt.Before(cutoff) {
				sess.Active = false
				delete(sh.sessions, id)
				evicted = append(evicted, sess)
			}
		}
		sh.mu.Unlock()
	}
	return evicted
}
