package ws

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// DefaultDocument is the content of every freshly created room.
const DefaultDocument = "// start code here"

// room is the authoritative state for one editing session: the ordered
// set of display names present and the current document. Only the Store
// touches these fields.
type room struct {
	members    []string // insertion order, no duplicates
	document   string
	emptySince time.Time // zero while the room has members
}

// Store owns the roomID -> room map. Room IDs are client-chosen;
// identical IDs mean the same room, so there is no collision handling.
// Rooms that stay empty longer than ttl are evicted by Run.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*room
	ttl   time.Duration
	log   *slog.Logger
	now   func() time.Time
}

func NewStore(ttl time.Duration, log *slog.Logger) *Store {
	return &Store{
		rooms: map[string]*room{},
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

// GetOrCreate materializes the room if it does not exist. Two concurrent
// first-joiners end up with the same room.
func (s *Store) GetOrCreate(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rooms[roomID] == nil {
		s.rooms[roomID] = &room{document: DefaultDocument, emptySince: s.now()}
		s.log.Debug("room.created", "room", roomID)
	}
}

// Has reports whether the room exists. Events other than join must not
// materialize rooms, so they check here first.
func (s *Store) Has(roomID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[roomID] != nil
}

// AddMember inserts name into the room's member set. Adding a name that
// is already present is a no-op.
func (s *Store) AddMember(roomID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rm := s.rooms[roomID]
	if rm == nil {
		return
	}
	if !slices.Contains(rm.members, name) {
		rm.members = append(rm.members, name)
	}
	rm.emptySince = time.Time{}
}

// RemoveMember is idempotent: a missing room or name is a no-op.
func (s *Store) RemoveMember(roomID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rm := s.rooms[roomID]
	if rm == nil {
		return
	}
	if i := slices.Index(rm.members, name); i >= 0 {
		rm.members = slices.Delete(rm.members, i, i+1)
	}
	if len(rm.members) == 0 {
		rm.emptySince = s.now()
	}
}

// SetDocument replaces the document wholesale. Last write wins; there is
// no version check or merge.
func (s *Store) SetDocument(roomID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rm := s.rooms[roomID]; rm != nil {
		rm.document = text
	}
}

// Document returns the room's current content, or the default document
// for a room that was never written to (or never created).
func (s *Store) Document(roomID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rm := s.rooms[roomID]; rm != nil {
		return rm.document
	}
	return DefaultDocument
}

// Members returns the names present, in insertion order. The slice is a
// copy; callers may hold it across store mutations.
func (s *Store) Members(roomID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rm := s.rooms[roomID]
	if rm == nil {
		return nil
	}
	// Non-nil even when empty: this marshals as [] on the wire.
	out := make([]string, len(rm.members))
	copy(out, rm.members)
	return out
}

// Len reports how many rooms currently exist.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Run sweeps out long-empty rooms until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep()
		}
	}
}

// sweep evicts every room whose membership has been empty longer than
// the configured ttl. A later join to the same ID recreates it fresh.
func (s *Store) sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rm := range s.rooms {
		if !rm.emptySince.IsZero() && now.Sub(rm.emptySince) > s.ttl {
			delete(s.rooms, id)
			s.log.Info("room.evicted", "room", id, "empty_for", now.Sub(rm.emptySince))
		}
	}
}
