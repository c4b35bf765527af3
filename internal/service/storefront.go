package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"offer-catalog-api/internal/database"
	"offer-catalog-api/internal/events"
	"offer-catalog-api/internal/models"
	"offer-catalog-api/internal/validation"
)

// Visitor-facing confirmation copy, kept in the store's own voice.
const (
	msgContactReceived      = "Tack för ditt meddelande! Vi återkommer så snart vi kan."
	msgAlreadySubscribed    = "Du är redan prenumerant på vårt nyhetsbrev!"
	msgSubscriptionRenewed  = "Välkommen tillbaka! Din prenumeration är nu aktiv igen."
	msgSubscriptionAccepted = "Tack! Du kommer nu få våra veckokampanjer via e-post."
	msgUnsubscribed         = "Du har avregistrerats från vårt nyhetsbrev."
)

// SubmitContact stores a contact form submission and returns the visitor
// confirmation. Notification delivery (store email) hangs off the published
// event, not this call.
func (s *Service) SubmitContact(ctx context.Context, in models.ContactMessageCreate) (string, error) {
	in.Name = validation.SanitizeString(in.Name)
	in.Email = validation.SanitizeString(in.Email)
	in.Phone = validation.SanitizeString(in.Phone)
	in.Message = validation.SanitizeString(in.Message)

	if err := validation.ValidateContactMessage(in); err != nil {
		return "", err
	}

	msg := models.ContactMessage{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Message:   in.Message,
		CreatedAt: s.clock.Now(),
	}

	if err := s.db.InsertContactMessage(ctx, msg); err != nil {
		return "", err
	}

	s.publish(ctx, events.ContactReceived, msg)

	return msgContactReceived, nil
}

// ListContactMessages returns stored messages, newest first.
func (s *Service) ListContactMessages(ctx context.Context) ([]models.ContactMessage, error) {
	return s.db.ListContactMessages(ctx)
}

// SubscribeNewsletter signs an email up for the weekly campaign letter.
// Subscribing twice is a friendly no-op; a previously cancelled subscription
// is reactivated.
func (s *Service) SubscribeNewsletter(ctx context.Context, email string) (string, error) {
	email = validation.SanitizeString(email)
	if err := validation.ValidateEmail(email); err != nil {
		return "", err
	}

	existing, err := s.db.GetSubscriptionByEmail(ctx, email)
	switch {
	case err == nil && existing.IsActive:
		return msgAlreadySubscribed, nil

	case err == nil:
		if err := s.db.ReactivateSubscription(ctx, email, s.clock.Now()); err != nil {
			return "", err
		}
		s.publish(ctx, events.NewsletterSubscribed, email)
		return msgSubscriptionRenewed, nil

	case errors.Is(err, database.ErrNotFound):
		sub := models.NewsletterSubscription{
			ID:           uuid.New().String(),
			Email:        email,
			IsActive:     true,
			SubscribedAt: s.clock.Now(),
		}
		if err := s.db.InsertSubscription(ctx, sub); err != nil {
			return "", err
		}
		s.publish(ctx, events.NewsletterSubscribed, email)
		return msgSubscriptionAccepted, nil

	default:
		return "", fmt.Errorf("failed to look up subscription: %w", err)
	}
}

// UnsubscribeNewsletter disables a subscription. The row is kept so that a
// later signup gets the returning-subscriber greeting.
func (s *Service) UnsubscribeNewsletter(ctx context.Context, email string) (string, error) {
	email = validation.SanitizeString(email)
	if err := validation.ValidateEmail(email); err != nil {
		return "", err
	}

	if err := s.db.DeactivateSubscription(ctx, email); err != nil {
		return "", err
	}

	return msgUnsubscribed, nil
}

// ListSubscribers returns active newsletter subscriptions, newest first.
func (s *Service) ListSubscribers(ctx context.Context) ([]models.NewsletterSubscription, error) {
	return s.db.ListActiveSubscribers(ctx)
}

// CreateProduct adds one inventory product.
func (s *Service) CreateProduct(ctx context.Context, in models.ProductCreate) (models.Product, error) {
	in.Name = validation.SanitizeString(in.Name)
	in.Category = validation.SanitizeString(in.Category)

	if err := validation.ValidateProductCreate(in); err != nil {
		return models.Product{}, err
	}

	p := models.Product{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Category:  in.Category,
		CreatedAt: s.clock.Now(),
	}

	if err := s.db.InsertProduct(ctx, p); err != nil {
		return models.Product{}, err
	}

	return p, nil
}

// CreateProductsBulk adds many products from a list of names, skipping blank
// entries. Returns the number inserted.
func (s *Service) CreateProductsBulk(ctx context.Context, in models.ProductBulkCreate) (int, error) {
	category := validation.SanitizeString(in.Category)

	var products []models.Product
	for _, name := range in.Products {
		name = validation.SanitizeString(name)
		if name == "" {
			continue
		}
		products = append(products, models.Product{
			ID:        uuid.New().String(),
			Name:      name,
			Category:  category,
			CreatedAt: s.clock.Now(),
		})
	}

	return s.db.InsertProducts(ctx, products)
}

// DeleteProduct removes a product by id.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.db.DeleteProduct(ctx, id)
}

// DeleteAllProducts clears the inventory and returns how many were removed.
func (s *Service) DeleteAllProducts(ctx context.Context) (int, error) {
	return s.db.DeleteAllProducts(ctx)
}

// ListProducts returns a page of inventory products with optional search and
// category narrowing.
func (s *Service) ListProducts(ctx context.Context, filter database.ProductFilter) (models.ProductPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	products, total, err := s.db.ListProducts(ctx, filter)
	if err != nil {
		return models.ProductPage{}, err
	}

	return models.ProductPage{Products: products, Total: total}, nil
}

// ProductCategories returns the distinct inventory categories.
func (s *Service) ProductCategories(ctx context.Context) ([]string, error) {
	return s.db.ListProductCategories(ctx)
}

// Categories returns the storefront sections, falling back to the built-in
// defaults when none are stored.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.db.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if len(categories) > 0 {
		return categories, nil
	}
	return defaultCategories(), nil
}

func defaultCategories() []models.Category {
	return []models.Category{
		{ID: "1", Name: "Färska frukter & grönsaker", Description: "Handplockade frukter och grönsaker varje dag", Icon: "Apple"},
		{ID: "2", Name: "Dagligvaror", Description: "Allt du behöver för vardagen", Icon: "ShoppingBasket"},
		{ID: "3", Name: "Kött & chark", Description: "Färskt kött och kvalitetschark", Icon: "Beef"},
		{ID: "4", Name: "Mejeri", Description: "Mjölk, ost och andra mejeriprodukter", Icon: "Milk"},
		{ID: "5", Name: "Specialprodukter", Description: "Unika produkter från hela världen", Icon: "Sparkles"},
	}
}
