package content

import "sync"

// Snapshot is the parsed view of one content text. It is shared between
// requests and must not be modified.
type Snapshot struct {
	Document *Document
	Projects []Project
	Profile  *Profile
}

// Store holds the current raw content text and memoizes its parse. A new
// snapshot is built only when the text changes.
type Store struct {
	mu   sync.RWMutex
	text string
	snap *Snapshot
}

// NewStore returns a store seeded with text.
func NewStore(text string) *Store {
	return &Store{text: text}
}

// Set replaces the raw text and reports whether it differed from the
// previous one.
func (s *Store) Set(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text == s.text {
		return false
	}
	s.text = text
	s.snap = nil
	return true
}

// Text returns the raw text currently held.
func (s *Store) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// Snapshot returns the parse of the current text, building it on first use.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap != nil {
		return snap
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		doc := Parse(s.text)
		s.snap = &Snapshot{
			Document: doc,
			Projects: ExtractProjects(doc),
			Profile:  ExtractProfile(doc),
		}
	}
	return s.snap
}
