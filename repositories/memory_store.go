package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/Dosada05/tourney/models"
	"github.com/google/uuid"
)

type lockKind byte

const (
	lockMatch lockKind = iota + 1
	lockTournament
)

type lockKey struct {
	kind lockKind
	id   uuid.UUID
}

// keyedLocks hands out one context-aware mutex per key.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[lockKey]chan struct{}
}

func (k *keyedLocks) get(key lockKey) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = make(map[lockKey]chan struct{})
	}
	ch, ok := k.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		k.locks[key] = ch
	}
	return ch
}

func (k *keyedLocks) acquire(ctx context.Context, key lockKey) (chan struct{}, error) {
	ch := k.get(key)
	select {
	case ch <- struct{}{}:
		return ch, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// MemoryStore keeps tournaments and brackets in process memory. It is used for local
// runs (STORAGE_DRIVER=memory) and by service tests.
type MemoryStore struct {
	mu          sync.RWMutex
	tournaments map[uuid.UUID]*models.Tournament
	matches     map[uuid.UUID]*models.Match
	locks       keyedLocks
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tournaments: make(map[uuid.UUID]*models.Tournament),
		matches:     make(map[uuid.UUID]*models.Match),
	}
}

func (s *MemoryStore) GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return t.Clone(), nil
}

func (s *MemoryStore) SaveTournament(ctx context.Context, t *models.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putTournament(t)
	return nil
}

func (s *MemoryStore) putTournament(t *models.Tournament) {
	c := t.Clone()
	c.Matches = nil
	if prev, ok := s.tournaments[t.ID]; ok {
		c.AdminID = prev.AdminID
		c.Competitors = prev.Competitors
		c.CreatedAt = prev.CreatedAt
	}
	s.tournaments[t.ID] = c
}

func (s *MemoryStore) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return m.Clone(), nil
}

func (s *MemoryStore) ListMatchesByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listMatches(tournamentID, nil), nil
}

// listMatches returns clones of the tournament's matches, with staged versions taking
// precedence over stored ones.
func (s *MemoryStore) listMatches(tournamentID uuid.UUID, staged map[uuid.UUID]*models.Match) []*models.Match {
	out := make([]*models.Match, 0)
	for id, m := range s.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if st, ok := staged[id]; ok {
			m = st
		}
		out = append(out, m.Clone())
	}
	for id, m := range staged {
		if _, stored := s.matches[id]; !stored && m.TournamentID == tournamentID {
			out = append(out, m.Clone())
		}
	}
	sortMatches(out)
	return out
}

func sortMatches(matches []*models.Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Round != matches[j].Round {
			return matches[i].Round < matches[j].Round
		}
		return matches[i].Number < matches[j].Number
	})
}

func (s *MemoryStore) SaveMatches(ctx context.Context, matches ...*models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMatches(matches, nil, nil); err != nil {
		return err
	}
	s.putMatches(matches)
	return nil
}

// checkMatches enforces what the Postgres schema enforces with foreign and unique keys:
// the tournament must exist and a new match number must be unused across stored,
// staged and batch matches of the same tournament.
func (s *MemoryStore) checkMatches(matches []*models.Match, stagedTournaments map[uuid.UUID]*models.Tournament, stagedMatches map[uuid.UUID]*models.Match) error {
	type numberKey struct {
		tournamentID uuid.UUID
		number       int
	}
	taken := make(map[numberKey]uuid.UUID, len(matches))
	for _, m := range stagedMatches {
		taken[numberKey{m.TournamentID, m.Number}] = m.ID
	}

	for _, m := range matches {
		_, known := s.tournaments[m.TournamentID]
		if _, ok := stagedTournaments[m.TournamentID]; ok {
			known = true
		}
		if !known {
			return ErrMatchTournamentInvalid
		}
		if _, stored := s.matches[m.ID]; stored {
			continue
		}
		if _, ok := stagedMatches[m.ID]; ok {
			continue
		}
		key := numberKey{m.TournamentID, m.Number}
		if id, ok := taken[key]; ok && id != m.ID {
			return ErrMatchNumberConflict
		}
		for _, other := range s.matches {
			if other.TournamentID == m.TournamentID && other.Number == m.Number {
				return ErrMatchNumberConflict
			}
		}
		taken[key] = m.ID
	}
	return nil
}

func (s *MemoryStore) putMatches(matches []*models.Match) {
	for _, m := range matches {
		c := m.Clone()
		if prev, ok := s.matches[m.ID]; ok {
			c.TournamentID = prev.TournamentID
			c.Number = prev.Number
			c.Round = prev.Round
			c.NextMatchID = prev.NextMatchID
			c.CreatedAt = prev.CreatedAt
		}
		s.matches[m.ID] = c
	}
}

func (s *MemoryStore) ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Tournament, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.AdminID != nil && t.AdminID != *filter.AdminID {
			continue
		}
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*models.Tournament{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemoryStore) DeleteTournament(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tournaments[id]; !ok {
		return ErrTournamentNotFound
	}
	delete(s.tournaments, id)
	for matchID, m := range s.matches {
		if m.TournamentID == id {
			delete(s.matches, matchID)
		}
	}
	return nil
}

// WithTx stages writes in the transaction and applies them at once on success.
// Row locks are released only after the writes are visible.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	tx := &memoryTx{
		store:       s,
		tournaments: make(map[uuid.UUID]*models.Tournament),
		matches:     make(map[uuid.UUID]*models.Match),
		held:        make(map[lockKey]chan struct{}),
	}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memoryTx struct {
	store       *MemoryStore
	tournaments map[uuid.UUID]*models.Tournament
	matches     map[uuid.UUID]*models.Match
	order       []uuid.UUID
	held        map[lockKey]chan struct{}
}

var _ Tx = (*memoryTx)(nil)

func (tx *memoryTx) lock(ctx context.Context, key lockKey) error {
	if _, ok := tx.held[key]; ok {
		return nil
	}
	ch, err := tx.store.locks.acquire(ctx, key)
	if err != nil {
		return err
	}
	tx.held[key] = ch
	return nil
}

func (tx *memoryTx) release() {
	for key, ch := range tx.held {
		<-ch
		delete(tx.held, key)
	}
}

func (tx *memoryTx) commit() {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tx.tournaments {
		s.putTournament(t)
	}
	staged := make([]*models.Match, 0, len(tx.order))
	for _, id := range tx.order {
		staged = append(staged, tx.matches[id])
	}
	s.putMatches(staged)
}

func (tx *memoryTx) LockMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	if err := tx.lock(ctx, lockKey{kind: lockMatch, id: id}); err != nil {
		return nil, err
	}
	return tx.GetMatch(ctx, id)
}

func (tx *memoryTx) LockTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	if err := tx.lock(ctx, lockKey{kind: lockTournament, id: id}); err != nil {
		return nil, err
	}
	return tx.GetTournament(ctx, id)
}

func (tx *memoryTx) GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	if t, ok := tx.tournaments[id]; ok {
		return t.Clone(), nil
	}
	return tx.store.GetTournament(ctx, id)
}

func (tx *memoryTx) SaveTournament(ctx context.Context, t *models.Tournament) error {
	tx.tournaments[t.ID] = t.Clone()
	return nil
}

func (tx *memoryTx) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	if m, ok := tx.matches[id]; ok {
		return m.Clone(), nil
	}
	return tx.store.GetMatch(ctx, id)
}

func (tx *memoryTx) ListMatchesByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*models.Match, error) {
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	return tx.store.listMatches(tournamentID, tx.matches), nil
}

func (tx *memoryTx) SaveMatches(ctx context.Context, matches ...*models.Match) error {
	tx.store.mu.RLock()
	err := tx.store.checkMatches(matches, tx.tournaments, tx.matches)
	tx.store.mu.RUnlock()
	if err != nil {
		return err
	}
	for _, m := range matches {
		if _, ok := tx.matches[m.ID]; !ok {
			tx.order = append(tx.order, m.ID)
		}
		tx.matches[m.ID] = m.Clone()
	}
	return nil
}
