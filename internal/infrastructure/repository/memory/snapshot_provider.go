package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/fplkit/planner/internal/domain/fixture"
	"github.com/fplkit/planner/internal/usecase"
)

// SnapshotProvider serves fixed data through the usecase.DataProvider
// interface, for tests and offline development.
type SnapshotProvider struct {
	mu       sync.RWMutex
	snapshot usecase.Snapshot
	details  map[int]usecase.PlayerDetail
	fixtures []fixture.Fixture
	picks    map[int]usecase.Picks
}

func NewSnapshotProvider(snapshot usecase.Snapshot) *SnapshotProvider {
	return &SnapshotProvider{
		snapshot: snapshot,
		details:  make(map[int]usecase.PlayerDetail),
		picks:    make(map[int]usecase.Picks),
	}
}

func (p *SnapshotProvider) SetPlayerDetail(playerID int, detail usecase.PlayerDetail) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.details[playerID] = detail
}

func (p *SnapshotProvider) SetFixtures(fixtures []fixture.Fixture) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fixtures = fixtures
}

// SetPicks registers the squad fielded in one gameweek. Every entry id serves
// the same picks; the provider models a single user.
func (p *SnapshotProvider) SetPicks(gameweek int, picks usecase.Picks) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.picks[gameweek] = picks
}

func (p *SnapshotProvider) Bootstrap(_ context.Context) (usecase.Snapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot, nil
}

func (p *SnapshotProvider) PlayerDetail(_ context.Context, playerID int) (usecase.PlayerDetail, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	detail, ok := p.details[playerID]
	if !ok {
		return usecase.PlayerDetail{}, fmt.Errorf("%w: player detail %d", usecase.ErrNotFound, playerID)
	}
	return detail, nil
}

func (p *SnapshotProvider) Fixtures(_ context.Context) ([]fixture.Fixture, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]fixture.Fixture, len(p.fixtures))
	copy(out, p.fixtures)
	return out, nil
}

func (p *SnapshotProvider) EntryPicks(_ context.Context, _, gameweek int) (usecase.Picks, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	picks, ok := p.picks[gameweek]
	if !ok {
		return usecase.Picks{}, fmt.Errorf("%w: picks for gameweek %d", usecase.ErrNotFound, gameweek)
	}
	return picks, nil
}
