package handler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adsloty/adsloty/internal/wizard"
)

// wizardTTL bounds how long an abandoned wizard session lives.  The
// session context is cancelled at expiry, which freezes the wizard.
const wizardTTL = 30 * time.Minute

type wizardEntry struct {
	session   *wizard.Session
	cancel    context.CancelFunc
	sponsorID uint64
	expires   time.Time
}

// WizardStore keeps in-flight booking wizard sessions keyed by an opaque
// ID handed to the client.  Expired entries are reaped lazily on access.
type WizardStore struct {
	mu      sync.Mutex
	entries map[string]*wizardEntry
}

// NewWizardStore returns an empty store.
func NewWizardStore() *WizardStore {
	return &WizardStore{entries: make(map[string]*wizardEntry)}
}

// Open creates a session for the sponsor against the given writer and
// returns its ID.
func (s *WizardStore) Open(sponsorID, writerID uint64) (string, *wizard.Session) {
	ctx, cancel := context.WithCancel(context.Background())
	sess := wizard.NewSession(ctx, writerID)
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reapLocked()
	s.entries[id] = &wizardEntry{
		session:   sess,
		cancel:    cancel,
		sponsorID: sponsorID,
		expires:   time.Now().Add(wizardTTL),
	}
	return id, sess
}

// Get returns the session for id if it belongs to the sponsor and has
// not expired.
func (s *WizardStore) Get(id string, sponsorID uint64) (*wizard.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reapLocked()
	e, ok := s.entries[id]
	if !ok || e.sponsorID != sponsorID {
		return nil, false
	}
	return e.session, true
}

// Close cancels and removes a session.
func (s *WizardStore) Close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		e.cancel()
		delete(s.entries, id)
	}
}

func (s *WizardStore) reapLocked() {
	now := time.Now()
	for id, e := range s.entries {
		if now.After(e.expires) {
			e.cancel()
			delete(s.entries, id)
		}
	}
}
