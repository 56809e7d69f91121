package schedule

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Oslicek/Sazinka-sub005/planning"
)

// ErrNotFound is returned for unknown ids.
var ErrNotFound = errors.New("record not found")

// Device is the revision-relevant slice of a customer's installed
// device.
type Device struct {
	ID               int64             `json:"id"`
	CustomerID       int64             `json:"customer_id"`
	Type             string            `json:"type"`
	Location         planning.Location `json:"location"`
	IntervalMonths   int               `json:"interval_months"`
	LastCompleted    *time.Time        `json:"last_completed,omitempty"`
	InstalledAt      *time.Time        `json:"installed_at,omitempty"`
	DurationOverride int               `json:"duration_override"` // minutes, 0 = unset
}

// Store persists candidate scheduling state, snooze preferences and the
// planning reference data. The engine itself stays stateless; this is
// the external store the state machine leans on.
type Store interface {
	CreateCandidate(ctx context.Context, c Candidate) (Candidate, error)
	GetCandidate(ctx context.Context, id int64) (Candidate, error)
	UpdateCandidate(ctx context.Context, c Candidate) (Candidate, error)
	ListCandidates(ctx context.Context) ([]Candidate, error)
	ArchiveCandidate(ctx context.Context, id int64) error

	// Per-user memory of the last chosen snooze offset, a UX default
	// with no correctness implication.
	GetSnoozePreference(ctx context.Context, userID int64) (SnoozeOffset, error)
	SetSnoozePreference(ctx context.Context, userID int64, offset SnoozeOffset) error

	ListDevices(ctx context.Context) ([]Device, error)
	UpsertDevice(ctx context.Context, d Device) error

	ListCrews(ctx context.Context) ([]planning.CrewContext, error)
	UpsertCrew(ctx context.Context, c planning.CrewContext) error
}

// MemStore is the in-process Store implementation. Durable persistence
// lives outside this engine; the interface keeps the seam for it.
type MemStore struct {
	mu sync.RWMutex

	nextCandidateID int64
	candidates      map[int64]Candidate
	preferences     map[int64]SnoozeOffset
	devices         map[int64]Device
	crews           map[int64]planning.CrewContext
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		nextCandidateID: 1,
		candidates:      make(map[int64]Candidate),
		preferences:     make(map[int64]SnoozeOffset),
		devices:         make(map[int64]Device),
		crews:           make(map[int64]planning.CrewContext),
	}
}

func (s *MemStore) CreateCandidate(_ context.Context, c Candidate) (Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == 0 {
		c.ID = s.nextCandidateID
		s.nextCandidateID++
	} else if c.ID >= s.nextCandidateID {
		s.nextCandidateID = c.ID + 1
	}
	if c.State == "" {
		c.State = StateActive
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	s.candidates[c.ID] = c
	return c, nil
}

func (s *MemStore) GetCandidate(_ context.Context, id int64) (Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.candidates[id]
	if !ok {
		return Candidate{}, ErrNotFound
	}
	return c, nil
}

func (s *MemStore) UpdateCandidate(_ context.Context, c Candidate) (Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.candidates[c.ID]; !ok {
		return Candidate{}, ErrNotFound
	}
	s.candidates[c.ID] = c
	return c, nil
}

func (s *MemStore) ListCandidates(_ context.Context) ([]Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) ArchiveCandidate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.candidates[id]; !ok {
		return ErrNotFound
	}
	delete(s.candidates, id)
	return nil
}

func (s *MemStore) GetSnoozePreference(_ context.Context, userID int64) (SnoozeOffset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offset, ok := s.preferences[userID]
	if !ok {
		return OffsetWeek, nil // sensible default before the first snooze
	}
	return offset, nil
}

func (s *MemStore) SetSnoozePreference(_ context.Context, userID int64, offset SnoozeOffset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.preferences[userID] = offset
	return nil
}

func (s *MemStore) ListDevices(_ context.Context) ([]Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Device, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) UpsertDevice(_ context.Context, d Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.devices[d.ID] = d
	return nil
}

func (s *MemStore) ListCrews(_ context.Context) ([]planning.CrewContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]planning.CrewContext, 0, len(s.crews))
	for _, c := range s.crews {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CrewID < out[j].CrewID })
	return out, nil
}

func (s *MemStore) UpsertCrew(_ context.Context, c planning.CrewContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.crews[c.CrewID] = c
	return nil
}

var _ Store = (*MemStore)(nil)
