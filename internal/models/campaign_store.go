package models

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
)

// CampaignStore persists campaigns and their placements. Implementations
// return ErrNotFound for unknown IDs. Every placement write refreshes
// TotalCost and TotalInsertions of the owning campaign atomically with the
// write itself.
type CampaignStore interface {
	ListCampaigns(ctx context.Context) ([]Campaign, error)
	GetCampaign(ctx context.Context, id string) (*Campaign, error)
	CreateCampaign(ctx context.Context, c *Campaign) error
	UpdateCampaign(ctx context.Context, c *Campaign) error
	// DeleteCampaign removes the campaign and all of its placements.
	DeleteCampaign(ctx context.Context, id string) error

	ListPlacements(ctx context.Context, campaignID string) ([]Placement, error)
	GetPlacement(ctx context.Context, id string) (*Placement, error)
	CreatePlacement(ctx context.Context, p *Placement) error
	UpdatePlacement(ctx context.Context, p *Placement) error
	DeletePlacement(ctx context.Context, id string) error
}

// campaignSnapshot is an immutable view of the store contents.
type campaignSnapshot struct {
	campaigns  map[string]Campaign
	placements map[string]Placement
}

func (s *campaignSnapshot) clone() *campaignSnapshot {
	next := &campaignSnapshot{
		campaigns:  make(map[string]Campaign, len(s.campaigns)),
		placements: make(map[string]Placement, len(s.placements)),
	}
	for k, v := range s.campaigns {
		next.campaigns[k] = v
	}
	for k, v := range s.placements {
		next.placements[k] = v
	}
	return next
}

// InMemoryCampaignStore implements CampaignStore with copy-on-write
// snapshots. Reads never block; writers are serialized.
type InMemoryCampaignStore struct {
	mu   sync.Mutex
	data atomic.Pointer[campaignSnapshot]
}

// NewInMemoryCampaignStore creates an empty store.
func NewInMemoryCampaignStore() *InMemoryCampaignStore {
	s := &InMemoryCampaignStore{}
	s.data.Store(&campaignSnapshot{
		campaigns:  make(map[string]Campaign),
		placements: make(map[string]Placement),
	})
	return s
}

// update applies fn to a copy of the current snapshot and installs it when
// fn succeeds.
func (s *InMemoryCampaignStore) update(fn func(*campaignSnapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.data.Load().clone()
	if err := fn(next); err != nil {
		return err
	}
	s.data.Store(next)
	return nil
}

// ListCampaigns returns campaigns ordered by creation time, newest first.
func (s *InMemoryCampaignStore) ListCampaigns(_ context.Context) ([]Campaign, error) {
	snap := s.data.Load()
	out := make([]Campaign, 0, len(snap.campaigns))
	for _, c := range snap.campaigns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryCampaignStore) GetCampaign(_ context.Context, id string) (*Campaign, error) {
	c, ok := s.data.Load().campaigns[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *InMemoryCampaignStore) CreateCampaign(_ context.Context, c *Campaign) error {
	return s.update(func(snap *campaignSnapshot) error {
		stored := *c
		stored.Placements = nil
		snap.campaigns[c.ID] = stored
		return nil
	})
}

func (s *InMemoryCampaignStore) UpdateCampaign(_ context.Context, c *Campaign) error {
	return s.update(func(snap *campaignSnapshot) error {
		prev, ok := snap.campaigns[c.ID]
		if !ok {
			return ErrNotFound
		}
		stored := *c
		stored.Placements = nil
		stored.CreatedAt = prev.CreatedAt
		stored.TotalCost = prev.TotalCost
		stored.TotalInsertions = prev.TotalInsertions
		snap.campaigns[c.ID] = stored
		return nil
	})
}

func (s *InMemoryCampaignStore) DeleteCampaign(_ context.Context, id string) error {
	return s.update(func(snap *campaignSnapshot) error {
		if _, ok := snap.campaigns[id]; !ok {
			return ErrNotFound
		}
		delete(snap.campaigns, id)
		for pid, p := range snap.placements {
			if p.CampaignID == id {
				delete(snap.placements, pid)
			}
		}
		return nil
	})
}

// refreshTotals recomputes the totals of a campaign from the placements in
// the snapshot.
func (s *campaignSnapshot) refreshTotals(campaignID string) {
	c, ok := s.campaigns[campaignID]
	if !ok {
		return
	}
	c.TotalCost, c.TotalInsertions = 0, 0
	for _, p := range s.placements {
		if p.CampaignID == campaignID {
			c.TotalCost += p.FinalPrice
			c.TotalInsertions += p.Insertions()
		}
	}
	s.campaigns[campaignID] = c
}

// ListPlacements returns the placements of a campaign ordered by ID.
func (s *InMemoryCampaignStore) ListPlacements(_ context.Context, campaignID string) ([]Placement, error) {
	snap := s.data.Load()
	if _, ok := snap.campaigns[campaignID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]Placement, 0)
	for _, p := range snap.placements {
		if p.CampaignID == campaignID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryCampaignStore) GetPlacement(_ context.Context, id string) (*Placement, error) {
	p, ok := s.data.Load().placements[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *InMemoryCampaignStore) CreatePlacement(_ context.Context, p *Placement) error {
	return s.update(func(snap *campaignSnapshot) error {
		if _, ok := snap.campaigns[p.CampaignID]; !ok {
			return ErrNotFound
		}
		snap.placements[p.ID] = *p
		snap.refreshTotals(p.CampaignID)
		return nil
	})
}

func (s *InMemoryCampaignStore) UpdatePlacement(_ context.Context, p *Placement) error {
	return s.update(func(snap *campaignSnapshot) error {
		prev, ok := snap.placements[p.ID]
		if !ok {
			return ErrNotFound
		}
		stored := *p
		stored.CampaignID = prev.CampaignID
		snap.placements[p.ID] = stored
		snap.refreshTotals(prev.CampaignID)
		return nil
	})
}

func (s *InMemoryCampaignStore) DeletePlacement(_ context.Context, id string) error {
	return s.update(func(snap *campaignSnapshot) error {
		prev, ok := snap.placements[id]
		if !ok {
			return ErrNotFound
		}
		delete(snap.placements, id)
		snap.refreshTotals(prev.CampaignID)
		return nil
	})
}
