package service

import (
	"context"
	"errors"
	"testing"

	"offer-catalog-api/internal/database"
	"offer-catalog-api/internal/models"
	"offer-catalog-api/internal/validation"
)

func TestSubscribeNewsletter_Lifecycle(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)
	ctx := context.Background()

	msg, err := svc.SubscribeNewsletter(ctx, "kund@example.com")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	if msg != msgSubscriptionAccepted {
		t.Errorf("Expected new-subscriber message, got %q", msg)
	}

	// Subscribing again is a friendly no-op.
	msg, err = svc.SubscribeNewsletter(ctx, "kund@example.com")
	if err != nil {
		t.Fatalf("Failed to re-subscribe: %v", err)
	}
	if msg != msgAlreadySubscribed {
		t.Errorf("Expected already-subscribed message, got %q", msg)
	}

	subs, err := svc.ListSubscribers(ctx)
	if err != nil {
		t.Fatalf("Failed to list subscribers: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("Expected 1 subscriber, got %d", len(subs))
	}
	if subs[0].Email != "kund@example.com" {
		t.Errorf("Expected kund@example.com, got %q", subs[0].Email)
	}
}

func TestSubscribeNewsletter_Reactivation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)
	ctx := context.Background()

	if _, err := svc.SubscribeNewsletter(ctx, "kund@example.com"); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	msg, err := svc.UnsubscribeNewsletter(ctx, "kund@example.com")
	if err != nil {
		t.Fatalf("Failed to unsubscribe: %v", err)
	}
	if msg != msgUnsubscribed {
		t.Errorf("Expected unsubscribe confirmation, got %q", msg)
	}

	msg, err = svc.SubscribeNewsletter(ctx, "kund@example.com")
	if err != nil {
		t.Fatalf("Failed to re-subscribe: %v", err)
	}
	if msg != msgSubscriptionRenewed {
		t.Errorf("Expected reactivation message, got %q", msg)
	}

	subs, err := svc.ListSubscribers(ctx)
	if err != nil {
		t.Fatalf("Failed to list subscribers: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("Expected 1 active subscriber after reactivation, got %d", len(subs))
	}
}

func TestSubscribeNewsletter_InvalidEmail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)

	for _, email := range []string{"", "inte-en-adress", "a@b", "a b@c.se"} {
		_, err := svc.SubscribeNewsletter(context.Background(), email)
		var verr *validation.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%q: expected validation error, got %v", email, err)
		}
	}
}

func TestSubmitContact(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)
	ctx := context.Background()

	msg, err := svc.SubmitContact(ctx, models.ContactMessageCreate{
		Name:    "Anna Andersson",
		Email:   "anna@example.com",
		Message: "Har ni glutenfritt bröd?",
	})
	if err != nil {
		t.Fatalf("Failed to submit contact message: %v", err)
	}
	if msg != msgContactReceived {
		t.Errorf("Expected confirmation message, got %q", msg)
	}

	messages, err := svc.ListContactMessages(ctx)
	if err != nil {
		t.Fatalf("Failed to list contact messages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	if messages[0].Name != "Anna Andersson" {
		t.Errorf("Expected name to round-trip, got %q", messages[0].Name)
	}
}

func TestSubmitContact_Invalid(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)

	_, err := svc.SubmitContact(context.Background(), models.ContactMessageCreate{
		Email:   "anna@example.com",
		Message: "Hej",
	})
	var verr *validation.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Expected validation error for missing name, got %v", err)
	}
}

func TestCreateProductsBulk_SkipsBlankNames(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)
	ctx := context.Background()

	inserted, err := svc.CreateProductsBulk(ctx, models.ProductBulkCreate{
		Products: []string{"Mjölk", "", "   ", "Bröd"},
		Category: "Dagligvaror",
	})
	if err != nil {
		t.Fatalf("Failed to bulk create products: %v", err)
	}
	if inserted != 2 {
		t.Errorf("Expected 2 inserted, got %d", inserted)
	}

	page, err := svc.ListProducts(ctx, database.ProductFilter{})
	if err != nil {
		t.Fatalf("Failed to list products: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("Expected total 2, got %d", page.Total)
	}
}

func TestListProducts_Search(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)
	ctx := context.Background()

	if _, err := svc.CreateProductsBulk(ctx, models.ProductBulkCreate{
		Products: []string{"Mellanmjölk", "Lättmjölk", "Bröd"},
		Category: "Dagligvaror",
	}); err != nil {
		t.Fatalf("Failed to bulk create products: %v", err)
	}

	page, err := svc.ListProducts(ctx, database.ProductFilter{Search: "mjölk"})
	if err != nil {
		t.Fatalf("Failed to search products: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("Expected 2 matches, got %d", page.Total)
	}
}

func TestDeleteAllProducts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)
	ctx := context.Background()

	if _, err := svc.CreateProductsBulk(ctx, models.ProductBulkCreate{
		Products: []string{"Mjölk", "Bröd", "Ägg"},
	}); err != nil {
		t.Fatalf("Failed to bulk create products: %v", err)
	}

	deleted, err := svc.DeleteAllProducts(ctx)
	if err != nil {
		t.Fatalf("Failed to delete products: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 deleted, got %d", deleted)
	}

	page, err := svc.ListProducts(ctx, database.ProductFilter{})
	if err != nil {
		t.Fatalf("Failed to list products: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("Expected empty inventory, got %d", page.Total)
	}
}

func TestCategories_Defaults(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newTestService(db)

	categories, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("Failed to list categories: %v", err)
	}
	if len(categories) != 5 {
		t.Fatalf("Expected 5 default categories, got %d", len(categories))
	}
	if categories[0].Name != "Färska frukter & grönsaker" {
		t.Errorf("Unexpected first category %q", categories[0].Name)
	}
}
