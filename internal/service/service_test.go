package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"offer-catalog-api/internal/cache"
	"offer-catalog-api/internal/database"
	"offer-catalog-api/internal/models"
	"offer-catalog-api/internal/validation"
)

// fixedClock pins "now" so week derivation is deterministic.
type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

// 2025-09-01 is a Monday in ISO week 36 of 2025.
var testNow = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) (*database.DB, func()) {
	dbPath := "./test_" + time.Now().Format("20060102150405.000000000") + ".db"
	db, err := database.NewDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func newTestService(db *database.DB) *Service {
	return NewService(db, Options{
		Cache: cache.NewInMemoryCache(),
		Clock: fixedClock{t: testNow},
	})
}

func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func createTestOffer(t *testing.T, svc *Service, name string, sortOrder *int) models.Offer {
	t.Helper()

	offer, err := svc.CreateOffer(context.Background(), models.OfferCreate{
		ProductName: name,
		Category:    "Mejeri",
		OfferPrice:  19.90,
		SortOrder:   sortOrder,
	})
	if err != nil {
		t.Fatalf("Failed to create offer %q: %v", name, err)
	}
	return offer
}

func TestCreateOffer_Defaults(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)

	first := createTestOffer(t, svc, "Mellanmjölk", nil)

	if first.WeekNumber != 36 || first.Year != 2025 {
		t.Errorf("Expected week 36/2025, got %d/%d", first.WeekNumber, first.Year)
	}
	if !first.IsActive {
		t.Error("Expected new offer to be active by default")
	}
	if first.SortOrder != 0 {
		t.Errorf("Expected first offer at sort order 0, got %d", first.SortOrder)
	}
	if first.Unit != "st" {
		t.Errorf("Expected default unit 'st', got %q", first.Unit)
	}

	// A second offer without an explicit sort order appends to the end.
	second := createTestOffer(t, svc, "Filmjölk", nil)
	if second.SortOrder != 1 {
		t.Errorf("Expected second offer at sort order 1, got %d", second.SortOrder)
	}
}

func TestCreateOffer_ExplicitWeek(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)

	offer, err := svc.CreateOffer(context.Background(), models.OfferCreate{
		ProductName: "Julskinka",
		Category:    "Kött & chark",
		OfferPrice:  89,
		WeekNumber:  intPtr(51),
		Year:        intPtr(2025),
	})
	if err != nil {
		t.Fatalf("Failed to create offer: %v", err)
	}

	if offer.WeekNumber != 51 || offer.Year != 2025 {
		t.Errorf("Expected week 51/2025, got %d/%d", offer.WeekNumber, offer.Year)
	}
}

func TestCreateOffer_Invalid(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)

	cases := []struct {
		name string
		in   models.OfferCreate
	}{
		{"missing name", models.OfferCreate{Category: "Mejeri", OfferPrice: 10}},
		{"unknown category", models.OfferCreate{ProductName: "Ost", Category: "Leksaker", OfferPrice: 10}},
		{"zero price", models.OfferCreate{ProductName: "Ost", Category: "Mejeri", OfferPrice: 0}},
		{"negative price", models.OfferCreate{ProductName: "Ost", Category: "Mejeri", OfferPrice: -5}},
		{"week without year", models.OfferCreate{ProductName: "Ost", Category: "Mejeri", OfferPrice: 10, WeekNumber: intPtr(10)}},
		{"week out of range", models.OfferCreate{ProductName: "Ost", Category: "Mejeri", OfferPrice: 10, WeekNumber: intPtr(54), Year: intPtr(2025)}},
	}

	for _, tc := range cases {
		_, err := svc.CreateOffer(context.Background(), tc.in)
		var verr *validation.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestListCurrent_OnlyActiveCurrentWeek(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)
	ctx := context.Background()

	current := createTestOffer(t, svc, "Veckans mjölk", nil)

	// Inactive offer in the current week
	if _, err := svc.CreateOffer(ctx, models.OfferCreate{
		ProductName: "Pausad vara",
		Category:    "Mejeri",
		OfferPrice:  12,
		IsActive:    boolPtr(false),
	}); err != nil {
		t.Fatalf("Failed to create inactive offer: %v", err)
	}

	// Active offer scheduled for a different week
	if _, err := svc.CreateOffer(ctx, models.OfferCreate{
		ProductName: "Nästa veckas vara",
		Category:    "Mejeri",
		OfferPrice:  15,
		WeekNumber:  intPtr(37),
		Year:        intPtr(2025),
	}); err != nil {
		t.Fatalf("Failed to create off-week offer: %v", err)
	}

	offers, err := svc.ListCurrent(ctx)
	if err != nil {
		t.Fatalf("Failed to list current offers: %v", err)
	}

	if len(offers) != 1 {
		t.Fatalf("Expected 1 current offer, got %d", len(offers))
	}
	if offers[0].ID != current.ID {
		t.Errorf("Expected offer %s, got %s", current.ID, offers[0].ID)
	}
}

func TestSetActive_RemovesFromCurrentListing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)
	ctx := context.Background()

	offer := createTestOffer(t, svc, "Smör", nil)

	// Prime the cache, then toggle. The toggle must invalidate it.
	offers, err := svc.ListCurrent(ctx)
	if err != nil {
		t.Fatalf("Failed to list current offers: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("Expected 1 current offer before toggle, got %d", len(offers))
	}

	updated, err := svc.SetActive(ctx, offer.ID, false)
	if err != nil {
		t.Fatalf("Failed to deactivate offer: %v", err)
	}
	if updated.IsActive {
		t.Error("Expected offer to be inactive after toggle")
	}

	offers, err = svc.ListCurrent(ctx)
	if err != nil {
		t.Fatalf("Failed to list current offers: %v", err)
	}
	if len(offers) != 0 {
		t.Fatalf("Expected 0 current offers after toggle, got %d", len(offers))
	}

	// Toggling back restores visibility.
	if _, err := svc.SetActive(ctx, offer.ID, true); err != nil {
		t.Fatalf("Failed to reactivate offer: %v", err)
	}
	offers, err = svc.ListCurrent(ctx)
	if err != nil {
		t.Fatalf("Failed to list current offers: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("Expected 1 current offer after reactivation, got %d", len(offers))
	}
}

func TestUpdateOffer_PartialMerge(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)
	ctx := context.Background()

	offer := createTestOffer(t, svc, "Gräddfil", nil)

	updated, err := svc.UpdateOffer(ctx, offer.ID, models.OfferPatch{
		OfferPrice: floatPtr(14.90),
	})
	if err != nil {
		t.Fatalf("Failed to update offer: %v", err)
	}

	if updated.OfferPrice != 14.90 {
		t.Errorf("Expected price 14.90, got %v", updated.OfferPrice)
	}
	if updated.ProductName != "Gräddfil" {
		t.Errorf("Expected name to be untouched, got %q", updated.ProductName)
	}
	if updated.WeekNumber != offer.WeekNumber || updated.Year != offer.Year {
		t.Errorf("Expected week to be untouched, got %d/%d", updated.WeekNumber, updated.Year)
	}
}

func TestUpdateOffer_EmptyPatchRejected(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)

	offer := createTestOffer(t, svc, "Yoghurt", nil)

	_, err := svc.UpdateOffer(context.Background(), offer.ID, models.OfferPatch{})
	var verr *validation.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Expected validation error for empty patch, got %v", err)
	}
}

func TestUpdateOffer_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)

	_, err := svc.UpdateOffer(context.Background(), "no-such-id", models.OfferPatch{
		ProductName: strPtr("Spökvara"),
	})
	if !errors.Is(err, database.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteOffer(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)
	ctx := context.Background()

	offer := createTestOffer(t, svc, "Kvarg", nil)

	if err := svc.DeleteOffer(ctx, offer.ID); err != nil {
		t.Fatalf("Failed to delete offer: %v", err)
	}

	if _, err := svc.GetOffer(ctx, offer.ID); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	if err := svc.DeleteOffer(ctx, offer.ID); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on double delete, got %v", err)
	}
}

func TestReorder_SwapsAdjacent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)
	ctx := context.Background()

	a := createTestOffer(t, svc, "Äpplen", intPtr(0))
	b := createTestOffer(t, svc, "Bananer", intPtr(1))
	c := createTestOffer(t, svc, "Citroner", intPtr(2))

	if err := svc.Reorder(ctx, b.ID, c.ID); err != nil {
		t.Fatalf("Failed to reorder: %v", err)
	}

	offers, err := svc.ListAll(ctx, true)
	if err != nil {
		t.Fatalf("Failed to list offers: %v", err)
	}

	want := []string{a.ID, c.ID, b.ID}
	for i, id := range want {
		if offers[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, offers[i].ID)
		}
	}

	// The untouched offer keeps its sort order.
	if offers[0].SortOrder != 0 {
		t.Errorf("Expected untouched offer at sort order 0, got %d", offers[0].SortOrder)
	}
}

func TestReorder_DuplicateSortOrdersConverge(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)
	ctx := context.Background()

	// Historical data can carry duplicate sort orders. Both rows share
	// index 0; insertion order breaks the tie.
	first := createTestOffer(t, svc, "Potatis", intPtr(0))
	second := createTestOffer(t, svc, "Morötter", intPtr(0))

	if err := svc.Reorder(ctx, first.ID, second.ID); err != nil {
		t.Fatalf("Failed to reorder: %v", err)
	}

	offers, err := svc.ListAll(ctx, true)
	if err != nil {
		t.Fatalf("Failed to list offers: %v", err)
	}

	if offers[0].ID != second.ID || offers[1].ID != first.ID {
		t.Errorf("Expected [%s %s], got [%s %s]", second.ID, first.ID, offers[0].ID, offers[1].ID)
	}
	if offers[0].SortOrder != 0 || offers[1].SortOrder != 1 {
		t.Errorf("Expected sort orders [0 1], got [%d %d]", offers[0].SortOrder, offers[1].SortOrder)
	}
}

func TestReorder_DuplicateSortOrdersPinBystanders(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)
	ctx := context.Background()

	// Three rows sharing one historical sort order; insertion order breaks
	// the tie, listing [a b c]. Swapping b and c must leave a first.
	a := createTestOffer(t, svc, "Potatis", intPtr(5))
	b := createTestOffer(t, svc, "Morötter", intPtr(5))
	c := createTestOffer(t, svc, "Lök", intPtr(5))

	if err := svc.Reorder(ctx, b.ID, c.ID); err != nil {
		t.Fatalf("Failed to reorder: %v", err)
	}

	offers, err := svc.ListAll(ctx, true)
	if err != nil {
		t.Fatalf("Failed to list offers: %v", err)
	}

	wantIDs := []string{a.ID, c.ID, b.ID}
	for i, id := range wantIDs {
		if offers[i].ID != id {
			t.Fatalf("Expected offer %s at position %d, got %s", id, i, offers[i].ID)
		}
	}
	for i, o := range offers {
		if o.SortOrder != i {
			t.Errorf("Expected sort order %d for %s, got %d", i, o.ProductName, o.SortOrder)
		}
	}
}

func TestReorder_NonAdjacentRejected(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)

	a := createTestOffer(t, svc, "Äpplen", intPtr(0))
	createTestOffer(t, svc, "Bananer", intPtr(1))
	c := createTestOffer(t, svc, "Citroner", intPtr(2))

	err := svc.Reorder(context.Background(), a.ID, c.ID)
	var verr *validation.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Expected validation error for non-adjacent reorder, got %v", err)
	}
}

func TestReorder_UnknownOffer(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)

	a := createTestOffer(t, svc, "Äpplen", intPtr(0))

	if err := svc.Reorder(context.Background(), a.ID, "no-such-id"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
