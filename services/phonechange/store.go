package phonechange

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// The phone-change flow keeps its codes in process memory rather than in
// the otps table: the codes guard a profile mutation, not an account
// credential, and they die with the process. The map is guarded and swept
// explicitly.

// DefaultTTL matches the three-minute window quoted in the SMS text.
const DefaultTTL = 3 * time.Minute

// Entry is one pending phone-change code.
type Entry struct {
	Hash      string
	VendorID  uint
	ExpiresAt time.Time
}

func (e Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Store is a process-wide map of pending codes keyed by normalized phone.
type Store struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]Entry
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:     ttl,
		entries: map[string]Entry{},
	}
}

// Hash binds the code to the phone it was sent to, salted with the
// server secret.
func Hash(phone, code, salt string) string {
	sum := sha256.Sum256([]byte(code + phone + salt))
	return hex.EncodeToString(sum[:])
}

// Put records a pending code for the phone, replacing any earlier one.
func (s *Store) Put(phone, hash string, vendorID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[phone] = Entry{
		Hash:      hash,
		VendorID:  vendorID,
		ExpiresAt: time.Now().Add(s.ttl),
	}
}

// Get returns the pending entry without consuming it. Expiry is the
// caller's check so an expired entry can be reported distinctly from a
// missing one.
func (s *Store) Get(phone string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[phone]
	return e, ok
}

// Delete drops the entry once consumed or rejected.
func (s *Store) Delete(phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, phone)
}

// Sweep removes every expired entry and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for phone, e := range s.entries {
		if e.IsExpired() {
			delete(s.entries, phone)
			removed++
		}
	}
	return removed
}

// StartSweeping runs Sweep on the given interval until stop is closed.
func (s *Store) StartSweeping(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-stop:
				return
			}
		}
	}()
}
