package models

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestInMemoryCampaignStore_CampaignLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryCampaignStore()

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	c := &Campaign{ID: "c1", Name: "Printemps", Client: "Acme", Status: StatusDraft, CreatedAt: now}
	if err := store.CreateCampaign(ctx, c); err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	older := &Campaign{ID: "c0", Name: "Hiver", Client: "Acme", CreatedAt: now.Add(-time.Hour)}
	if err := store.CreateCampaign(ctx, older); err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}

	list, err := store.ListCampaigns(ctx)
	if err != nil {
		t.Fatalf("ListCampaigns: %v", err)
	}
	if len(list) != 2 || list[0].ID != "c1" {
		t.Fatalf("expected newest first, got %+v", list)
	}

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	booked := &Placement{ID: "p1", CampaignID: "c1", Dates: []time.Time{day, day.AddDate(0, 0, 7)}, Quantity: 2, FinalPrice: 16200}
	if err := store.CreatePlacement(ctx, booked); err != nil {
		t.Fatalf("CreatePlacement: %v", err)
	}
	upd := &Campaign{ID: "c1", Name: "Printemps 2024", Client: "Acme", Status: StatusActive}
	if err := store.UpdateCampaign(ctx, upd); err != nil {
		t.Fatalf("UpdateCampaign: %v", err)
	}
	got, err := store.GetCampaign(ctx, "c1")
	if err != nil {
		t.Fatalf("GetCampaign: %v", err)
	}
	if got.Name != "Printemps 2024" || got.Status != StatusActive {
		t.Errorf("update not applied: %+v", got)
	}
	if got.TotalCost != 16200 || got.TotalInsertions != 4 || !got.CreatedAt.Equal(now) {
		t.Errorf("update must keep totals and creation time: %+v", got)
	}

	if err := store.UpdateCampaign(ctx, &Campaign{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryCampaignStore_Placements(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryCampaignStore()
	if err := store.CreateCampaign(ctx, &Campaign{ID: "c1", Name: "n", Client: "c"}); err != nil {
		t.Fatal(err)
	}

	if err := store.CreatePlacement(ctx, &Placement{ID: "p1", CampaignID: "unknown"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown campaign, got %v", err)
	}

	for _, id := range []string{"p2", "p1"} {
		if err := store.CreatePlacement(ctx, &Placement{ID: id, CampaignID: "c1", Quantity: 1}); err != nil {
			t.Fatalf("CreatePlacement: %v", err)
		}
	}
	list, err := store.ListPlacements(ctx, "c1")
	if err != nil {
		t.Fatalf("ListPlacements: %v", err)
	}
	if len(list) != 2 || list[0].ID != "p1" {
		t.Fatalf("unexpected placements %+v", list)
	}

	if err := store.UpdatePlacement(ctx, &Placement{ID: "p1", CampaignID: "other", Quantity: 3}); err != nil {
		t.Fatalf("UpdatePlacement: %v", err)
	}
	p, _ := store.GetPlacement(ctx, "p1")
	if p.Quantity != 3 || p.CampaignID != "c1" {
		t.Errorf("placement must keep its campaign: %+v", p)
	}

	if err := store.DeletePlacement(ctx, "p2"); err != nil {
		t.Fatalf("DeletePlacement: %v", err)
	}
	if _, err := store.GetPlacement(ctx, "p2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := store.DeleteCampaign(ctx, "c1"); err != nil {
		t.Fatalf("DeleteCampaign: %v", err)
	}
	if _, err := store.GetPlacement(ctx, "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("placements must be removed with their campaign")
	}
	if _, err := store.ListPlacements(ctx, "c1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound listing deleted campaign, got %v", err)
	}
}

func TestInMemoryCampaignStore_PlacementWritesRefreshTotals(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryCampaignStore()
	if err := store.CreateCampaign(ctx, &Campaign{ID: "c1", Name: "n", Client: "c"}); err != nil {
		t.Fatal(err)
	}
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	if err := store.CreatePlacement(ctx, &Placement{ID: "p1", CampaignID: "c1", Dates: []time.Time{day}, Quantity: 2, FinalPrice: 900}); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdatePlacement(ctx, &Placement{ID: "p1", Dates: []time.Time{day, day.AddDate(0, 0, 1)}, Quantity: 2, FinalPrice: 1800}); err != nil {
		t.Fatal(err)
	}
	c, _ := store.GetCampaign(ctx, "c1")
	if c.TotalCost != 1800 || c.TotalInsertions != 4 {
		t.Fatalf("totals after update = %v/%d, want 1800/4", c.TotalCost, c.TotalInsertions)
	}

	if err := store.DeletePlacement(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	c, _ = store.GetCampaign(ctx, "c1")
	if c.TotalCost != 0 || c.TotalInsertions != 0 {
		t.Fatalf("totals after delete = %v/%d, want 0/0", c.TotalCost, c.TotalInsertions)
	}
}

func TestInMemoryCampaignStore_ConcurrentPlacementsKeepTotals(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryCampaignStore()
	if err := store.CreateCampaign(ctx, &Campaign{ID: "c1", Name: "n", Client: "c"}); err != nil {
		t.Fatal(err)
	}
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := &Placement{ID: fmt.Sprintf("p%02d", i), CampaignID: "c1", Dates: []time.Time{day}, Quantity: 1, FinalPrice: 100}
			if err := store.CreatePlacement(ctx, p); err != nil {
				t.Errorf("CreatePlacement: %v", err)
			}
		}(i)
	}
	wg.Wait()

	c, err := store.GetCampaign(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if c.TotalCost != 100*writers || c.TotalInsertions != writers {
		t.Fatalf("totals = %v/%d, want %d/%d", c.TotalCost, c.TotalInsertions, 100*writers, writers)
	}
}
